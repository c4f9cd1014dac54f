// Package pkg provides the libraries behind gritea, a client for the Gitea REST API.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [gitea] - API client (builder, credentials, endpoint methods, DTOs)
//  2. [gitea/oauth] - OAuth2 authorization URLs and token exchange
//  3. [gitea/webhook] - Webhook signatures, push payloads and an http.Handler
//  4. [session] - Stored credentials per host (file or Redis) and OAuth state tokens
//  5. [httputil] - Instrumented HTTP client and response decoding
//  6. [errors] - Coded errors shared by every package
//
// # Architecture
//
// A request flows through the packages like this:
//
//	Builder (host, scheme, credential)
//	         ↓
//	    [gitea] Client (base URL + Authorization header)
//	         ↓
//	    [httputil] Transport (observability hooks)
//	         ↓
//	    [httputil] DecodeJSON (status mapping + Validate)
//	         ↓
//	    typed result or [errors] code
//
// # Quick Start
//
//	client, err := gitea.NewBuilder("gitea.example.com").
//	    Token(os.Getenv("GITEA_TOKEN")).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	user, err := client.CurrentUser(ctx)
//
// Verify a webhook delivery:
//
//	h := &webhook.Handler{
//	    Secret: secret,
//	    OnPush: func(ctx context.Context, p *webhook.PushPayload) error {
//	        log.Info("push", "repo", p.Repository.FullName, "branch", p.Branch())
//	        return nil
//	    },
//	}
//	http.Handle("/hooks/gitea", h)
//
// # Errors
//
// Every failure carries an [errors.Code]: URL_PARSE, ENV_ERROR, UNAUTHORIZED,
// GITEA_ERROR, TRANSPORT_ERROR, DECODE_ERROR or INVALID_INPUT. Use
// [errors.Is] to branch on them.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -run Example ./pkg/gitea     # Examples only
//	go test -tags integration ./pkg/...  # Include Redis integration tests
//
// [gitea]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/gitea
// [gitea/oauth]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/gitea/oauth
// [gitea/webhook]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/gitea/webhook
// [session]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/errors
// [errors.Code]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/errors#Code
// [errors.Is]: https://pkg.go.dev/github.com/matzehuels/gritea/pkg/errors#Is
package pkg
