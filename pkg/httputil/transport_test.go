package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/gritea/pkg/observability"
)

type recordingHooks struct {
	mu       sync.Mutex
	requests []string
	statuses []int
	errs     int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, _, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *recordingHooks) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs++
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5 * time.Second)
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
	if _, ok := c.Transport.(*Transport); !ok {
		t.Errorf("Transport = %T, want *Transport", c.Transport)
	}
}

func TestTransportReportsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: server.Client().Transport}}
	resp, err := client.Get(server.URL + "/api/v1/user")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	if len(hooks.requests) != 1 || hooks.requests[0] != "GET /api/v1/user" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusTeapot {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestTransportReportsErrors(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClient(time.Second)
	if _, err := client.Get(url); err == nil {
		t.Fatal("expected error from closed server")
	}
	if hooks.errs != 1 {
		t.Errorf("errors = %d, want 1", hooks.errs)
	}
}
