package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Header names set by Gitea on every delivery.
const (
	SignatureHeader = "X-Gitea-Signature"
	EventHeader     = "X-Gitea-Event"
	DeliveryHeader  = "X-Gitea-Delivery"
)

// MaxBodySize is the default payload size limit. Larger bodies get 413.
const MaxBodySize = 32 << 20

// Handler serves webhook deliveries. Requests without a signature are
// answered with 401, bad signatures with 403. Verified push events are
// decoded and passed to OnPush; other events are acknowledged unread.
type Handler struct {
	// Secret configured on the hook. An empty secret answers 503.
	Secret string
	// Header carrying the signature; defaults to SignatureHeader.
	Header string
	// OnPush receives verified push events. A returned error yields 500.
	OnPush func(ctx context.Context, p *PushPayload) error
	// MaxBytes overrides MaxBodySize when positive.
	MaxBytes int64
	// OnError, if set, observes rejected deliveries.
	OnError func(r *http.Request, err error)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	if h.Secret == "" {
		http.Error(w, "webhook secret not configured", http.StatusServiceUnavailable)
		return
	}

	header := h.Header
	if header == "" {
		header = SignatureHeader
	}
	sig := r.Header.Get(header)
	if sig == "" {
		http.Error(w, "missing webhook signature", http.StatusUnauthorized)
		return
	}

	limit := h.MaxBytes
	if limit <= 0 {
		limit = MaxBodySize
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		h.fail(r, err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !VerifySignature(h.Secret, body, sig) {
		http.Error(w, "invalid webhook signature", http.StatusForbidden)
		return
	}

	if event := r.Header.Get(EventHeader); event != "" && event != "push" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	p, err := ParsePush(body)
	if err != nil {
		h.fail(r, err)
		http.Error(w, "invalid push payload", http.StatusBadRequest)
		return
	}
	if h.OnPush != nil {
		if err := h.OnPush(r.Context(), p); err != nil {
			h.fail(r, err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(r *http.Request, err error) {
	if h.OnError != nil {
		h.OnError(r, err)
	}
}
