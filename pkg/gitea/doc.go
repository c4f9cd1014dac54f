// Package gitea provides a client for the Gitea REST API (v1).
//
// # Overview
//
// A [Client] is assembled once with a [Builder] and then shared freely
// between goroutines. Each method issues exactly one request/response round
// trip: there is no caching, no retrying and no automatic pagination.
//
// # Usage
//
//	client, err := gitea.NewBuilder("gitea.example.com").
//	    Token(os.Getenv("GITEA_TOKEN")).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user, err := client.CurrentUser(ctx)
//	repos, err := client.ListRepos(ctx, gitea.DefaultPagination())
//
// # Authentication
//
// A [Credential] is one of: none, a static access token (sent as
// "token <value>"), or an OAuth2 access token (sent as "<type> <value>").
// Requests made without a credential fail before touching the network with
// an UNAUTHORIZED error. Credentials can be rotated on a live client with
// [Client.SetCredential].
//
// # Paths
//
// The API prefix /api/v1/ is part of the base URL, so every endpoint is
// addressed relative to it ("user", "repos/{owner}/{repo}"). Path segments
// supplied by the caller are validated and percent-encoded.
//
// # Errors
//
// Failures carry a code from [github.com/matzehuels/gritea/pkg/errors]:
// URL_PARSE, UNAUTHORIZED, GITEA_ERROR (non-2xx; see errors.StatusError),
// TRANSPORT_ERROR, DECODE_ERROR and INVALID_INPUT.
package gitea
