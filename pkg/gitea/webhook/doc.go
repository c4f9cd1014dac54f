// Package webhook verifies and decodes Gitea webhook deliveries.
//
// Gitea signs each delivery with HMAC-SHA256 over the raw request body,
// keyed by the secret configured on the hook. [VerifySignature] checks a
// base64-encoded signature in constant time; [Handler] wraps verification
// and push decoding into an [net/http.Handler].
//
//	h := &webhook.Handler{
//	    Secret: os.Getenv("GITEA_WEBHOOK_SECRET"),
//	    OnPush: func(ctx context.Context, p *webhook.PushPayload) error {
//	        log.Printf("%s pushed %d commits to %s", p.Pusher.Login, len(p.Commits), p.Ref)
//	        return nil
//	    },
//	}
//	http.Handle("/hooks/gitea", h)
package webhook
