package gitea

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea/oauth"
)

// redirect sends every request to target while keeping the path and query,
// so clients built for a real hostname can be tested against httptest.
type redirect struct {
	target *url.URL
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = r.target.Scheme
	out.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func testClient(t *testing.T, h http.Handler, cred Credential) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewBuilder("example.com").
		Credential(cred).
		HTTPClient(&http.Client{Transport: redirect{target: target}}).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestCurrentUser(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "login": "alice", "email": "alice@example.com"})
	}), TokenCredential("abc123"))

	u, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/api/v1/user" {
		t.Errorf("request = %s %s, want GET /api/v1/user", gotMethod, gotPath)
	}
	if gotAuth != "token abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "token abc123")
	}
	if u.ID != 1 || u.Login != "alice" || u.Email != "alice@example.com" {
		t.Errorf("user = %+v", u)
	}
}

func TestCurrentUserOAuth2(t *testing.T) {
	var gotAuth string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "login": "alice"})
	}), OAuth2Credential(oauth.AccessToken{AccessToken: "xyz", TokenType: oauth.TokenTypeBearer}))

	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if gotAuth != "bearer xyz" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "bearer xyz")
	}
}

func TestNoCredentialSendsNothing(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), NoCredential())

	_, err := c.CurrentUser(context.Background())
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnauthorized)
	}
	if called {
		t.Error("request reached the server without a credential")
	}
}

func TestErrorStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
	}), TokenCredential("t"))

	_, err := c.GetRepo(context.Background(), "o", "missing")
	if !errors.Is(err, errors.ErrCodeRemote) {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeRemote)
	}
	var se *errors.StatusError
	if !stderrors.As(err, &se) {
		t.Fatalf("error %T is not a StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Label != "get repo failed" {
		t.Errorf("status error = %+v", se)
	}
	if !strings.Contains(se.Body, "not found") {
		t.Errorf("Body = %q", se.Body)
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing login", `{"id": 1}`},
		{"missing id", `{"login": "alice"}`},
		{"wrong type", `{"id": "one", "login": "alice"}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}), TokenCredential("t"))
			_, err := c.CurrentUser(context.Background())
			if !errors.Is(err, errors.ErrCodeDecode) {
				t.Errorf("error code = %v, want %v (err: %v)", errors.GetCode(err), errors.ErrCodeDecode, err)
			}
		})
	}
}

func TestListRepos(t *testing.T) {
	var gotQuery url.Values
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/repos" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "a", "full_name": "alice/a", "owner": map[string]any{"id": 1, "login": "alice"}},
			{"id": 2, "name": "b", "full_name": "alice/b", "fork": true,
				"parent": map[string]any{"id": 9, "name": "b", "full_name": "bob/b"}},
		})
	}), TokenCredential("t"))

	repos, err := c.ListRepos(context.Background(), Pagination{})
	if err != nil {
		t.Fatalf("ListRepos() error: %v", err)
	}
	if gotQuery.Get("page") != "1" || gotQuery.Get("limit") != "20" {
		t.Errorf("query = %v, want page=1 limit=20", gotQuery)
	}
	if len(repos) != 2 {
		t.Fatalf("got %d repos, want 2", len(repos))
	}
	if repos[0].Owner == nil || repos[0].Owner.Login != "alice" {
		t.Errorf("owner = %+v", repos[0].Owner)
	}
	if repos[1].Parent == nil || repos[1].Parent.FullName != "bob/b" {
		t.Errorf("parent = %+v", repos[1].Parent)
	}
}

func TestListReposInvalidItem(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 1, "name": "a"}, {"id": 2}]`)
	}), TokenCredential("t"))

	_, err := c.ListRepos(context.Background(), DefaultPagination())
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeDecode)
	}
}

func TestGetRepoEscapesSegments(t *testing.T) {
	var gotRawPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "x"})
	}), TokenCredential("t"))

	if _, err := c.GetRepo(context.Background(), "o", "a b?c"); err != nil {
		t.Fatalf("GetRepo() error: %v", err)
	}
	if gotRawPath != "/api/v1/repos/o/a%20b%3Fc" {
		t.Errorf("path = %q", gotRawPath)
	}
}

func TestInvalidSegmentsRejected(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}), TokenCredential("t"))
	ctx := context.Background()

	errs := []error{
		func() error { _, err := c.GetRepo(ctx, "", "r"); return err }(),
		func() error { _, err := c.CreateHook(ctx, "o", "", CreateHookOption{}); return err }(),
		func() error { _, err := c.CreateStatus(ctx, "o", "r", "", CreateStatusOption{State: StatusSuccess}); return err }(),
		func() error { _, err := c.ListHooks(ctx, "o", "r", Pagination{Page: -1}); return err }(),
		func() error { _, err := c.CreateStatus(ctx, "o", "r", "sha", CreateStatusOption{State: "bogus"}); return err }(),
		c.DeleteHook(ctx, "o\n", "r", 1),
		func() error { _, err := c.GetRepo(ctx, "..", ".."); return err }(),
		func() error { _, err := c.GetRepo(ctx, "o", "."); return err }(),
		func() error { _, err := c.CreateStatus(ctx, "o", "r", "..", CreateStatusOption{State: StatusSuccess}); return err }(),
		func() error { _, err := c.ListStatuses(ctx, "o", "r", ".", DefaultPagination()); return err }(),
		func() error { _, err := c.GetHook(ctx, "o", "..", 1); return err }(),
		c.DeleteHook(ctx, "..", "..", 1),
	}
	for i, err := range errs {
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("case %d: error code = %v, want %v", i, errors.GetCode(err), errors.ErrCodeInvalidInput)
		}
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	c, err := NewBuilder(host).Insecure().Token("t").Build()
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.CurrentUser(context.Background())
	if !errors.Is(err, errors.ErrCodeTransport) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeTransport)
	}
}

func TestSetCredentialConcurrent(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "token a" && auth != "token b" {
			t.Errorf("torn credential %q", auth)
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "login": "alice"})
	}), TokenCredential("a"))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				if (i+j)%2 == 0 {
					c.SetCredential(TokenCredential("b"))
				} else {
					c.SetCredential(TokenCredential("a"))
				}
				if _, err := c.CurrentUser(context.Background()); err != nil {
					t.Errorf("CurrentUser() error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	c.SetCredential(TokenCredential("final"))
	if _, v, _ := c.Credential().Header(); v != "token final" {
		t.Errorf("Credential().Header() = %q", v)
	}
}
