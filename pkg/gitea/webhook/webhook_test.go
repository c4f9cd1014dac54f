package webhook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/gritea/pkg/errors"
)

const pushBody = `{
  "ref": "refs/heads/main",
  "before": "0000000000000000000000000000000000000000",
  "after": "9f1e2d3c4b5a69788796a5b4c3d2e1f000112233",
  "compare_url": "https://git.example.com/alice/notes/compare/0000...9f1e",
  "commits": [{
    "id": "9f1e2d3c4b5a69788796a5b4c3d2e1f000112233",
    "message": "add readme\n",
    "url": "https://git.example.com/alice/notes/commit/9f1e",
    "author": {"name": "Alice", "email": "alice@example.com", "username": "alice"},
    "committer": {"name": "Alice", "email": "alice@example.com", "username": "alice"},
    "verification": null,
    "timestamp": "2026-01-02T03:04:05Z",
    "added": ["README.md"],
    "removed": [],
    "modified": []
  }],
  "head_commit": {
    "id": "9f1e2d3c4b5a69788796a5b4c3d2e1f000112233",
    "message": "add readme\n",
    "url": "https://git.example.com/alice/notes/commit/9f1e",
    "author": {"name": "Alice", "email": "alice@example.com", "username": "alice"},
    "committer": {"name": "Alice", "email": "alice@example.com", "username": "alice"},
    "timestamp": "2026-01-02T03:04:05Z"
  },
  "repository": {"id": 5, "name": "notes", "full_name": "alice/notes", "owner": {"id": 1, "login": "alice"}},
  "pusher": {"id": 1, "login": "alice"},
  "sender": {"id": 1, "login": "alice"}
}`

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	payload := []byte(`{"ref":"refs/heads/main"}`)
	sig := Sign(secret, payload)

	if !VerifySignature(secret, payload, sig) {
		t.Fatal("VerifySignature rejected its own signature")
	}
	if VerifySignature(secret, payload, "") {
		t.Error("VerifySignature accepted an empty signature")
	}
	if VerifySignature(secret, payload, strings.ToUpper(sig)) {
		t.Error("VerifySignature accepted a case-altered signature")
	}

	for i := range payload {
		flipped := append([]byte(nil), payload...)
		flipped[i] ^= 0x01
		if VerifySignature(secret, flipped, sig) {
			t.Errorf("payload byte %d flipped: signature still verified", i)
		}
	}
	for i := range secret {
		flipped := []byte(secret)
		flipped[i] ^= 0x01
		if VerifySignature(string(flipped), payload, sig) {
			t.Errorf("secret byte %d flipped: signature still verified", i)
		}
	}
}

func TestSignKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got := Sign("Jefe", []byte("what do ya want for nothing?"))
	want := "W9zBRr9gdU5qBCQmCJV1x1oAPwidJzmDnexYuWTsOEM="
	if got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestParsePush(t *testing.T) {
	p, err := ParsePush([]byte(pushBody))
	if err != nil {
		t.Fatalf("ParsePush() error: %v", err)
	}
	if p.Ref != "refs/heads/main" || p.Branch() != "main" {
		t.Errorf("Ref = %q, Branch() = %q", p.Ref, p.Branch())
	}
	if len(p.Commits) != 1 || p.Commits[0].Added[0] != "README.md" {
		t.Errorf("Commits = %+v", p.Commits)
	}
	if p.HeadCommit == nil || p.HeadCommit.Author.Username != "alice" {
		t.Errorf("HeadCommit = %+v", p.HeadCommit)
	}
	if p.Repository.FullName != "alice/notes" || p.Pusher.Login != "alice" {
		t.Errorf("Repository = %+v, Pusher = %+v", p.Repository, p.Pusher)
	}

	for _, body := range []string{`{`, `{"ref": "refs/heads/main"}`, `{"ref": 1}`} {
		if _, err := ParsePush([]byte(body)); !errors.Is(err, errors.ErrCodeDecode) {
			t.Errorf("ParsePush(%s) code = %v, want %v", body, errors.GetCode(err), errors.ErrCodeDecode)
		}
	}
}

func TestBranchNonHead(t *testing.T) {
	p := PushPayload{Ref: "refs/tags/v1.0.0"}
	if b := p.Branch(); b != "" {
		t.Errorf("Branch() = %q, want empty", b)
	}
}

func TestHandler(t *testing.T) {
	const secret = "s3cr3t"
	tests := []struct {
		name       string
		method     string
		event      string
		sig        string
		body       string
		secret     string
		onPushErr  error
		wantStatus int
		wantPush   bool
	}{
		{name: "ok", sig: Sign(secret, []byte(pushBody)), body: pushBody, wantStatus: http.StatusNoContent, wantPush: true},
		{name: "missing signature", body: pushBody, wantStatus: http.StatusUnauthorized},
		{name: "bad signature", sig: Sign("other", []byte(pushBody)), body: pushBody, wantStatus: http.StatusForbidden},
		{name: "other event", event: "issues", sig: Sign(secret, []byte(`{}`)), body: `{}`, wantStatus: http.StatusNoContent},
		{name: "bad payload", sig: Sign(secret, []byte(`{}`)), body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "callback error", sig: Sign(secret, []byte(pushBody)), body: pushBody, onPushErr: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantPush: true},
		{name: "get", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "no secret", secret: "-", sig: "x", body: pushBody, wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pushed := false
			var failures int
			h := &Handler{
				Secret: secret,
				OnPush: func(ctx context.Context, p *PushPayload) error {
					pushed = true
					return tt.onPushErr
				},
				OnError: func(r *http.Request, err error) { failures++ },
			}
			if tt.secret == "-" {
				h.Secret = ""
			}

			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/hooks/gitea", strings.NewReader(tt.body))
			if tt.sig != "" {
				req.Header.Set(SignatureHeader, tt.sig)
			}
			event := tt.event
			if event == "" {
				event = "push"
			}
			req.Header.Set(EventHeader, event)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if pushed != tt.wantPush {
				t.Errorf("OnPush called = %v, want %v", pushed, tt.wantPush)
			}
			if (tt.wantStatus == http.StatusBadRequest || tt.wantStatus == http.StatusInternalServerError) && failures != 1 {
				t.Errorf("OnError called %d times, want 1", failures)
			}
		})
	}
}

func TestHandlerCustomHeader(t *testing.T) {
	h := &Handler{Secret: "k", Header: "X-Signature"}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(pushBody))
	req.Header.Set("X-Signature", Sign("k", []byte(pushBody)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestHandlerBodyTooLarge(t *testing.T) {
	var failures int
	h := &Handler{
		Secret:   "k",
		MaxBytes: 64,
		OnPush: func(context.Context, *PushPayload) error {
			t.Error("OnPush called for an oversized body")
			return nil
		},
		OnError: func(r *http.Request, err error) { failures++ },
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(pushBody))
	req.Header.Set(SignatureHeader, Sign("k", []byte(pushBody)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	if failures != 1 {
		t.Errorf("OnError called %d times, want 1", failures)
	}
}

func TestHandlerBodyAtLimit(t *testing.T) {
	h := &Handler{Secret: "k", MaxBytes: int64(len(pushBody))}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(pushBody))
	req.Header.Set(SignatureHeader, Sign("k", []byte(pushBody)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
