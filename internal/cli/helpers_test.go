package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/gritea/pkg/observability"
)

// envKeys are cleared so a developer's environment cannot leak into tests.
var envKeys = []string{
	"GITEA_HOST", "GITEA_TOKEN", "ACCESS_TOKEN", "GITEA_INSECURE", "GITEA_TIMEOUT",
	"GITEA_OUTPUT", "GITEA_CLIENT_ID", "GITEA_CLIENT_SECRET", "GITEA_REDIRECT_URI",
	"GITEA_WEBHOOK_SECRET", "GITEA_WEBHOOK_ADDR", "GITEA_REDIS_ADDR",
	"GITEA_REDIS_PASSWORD", "GITEA_REDIS_DB", "GITEA_ENV_FILE",
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

type testCLI struct {
	*CLI
	out  *bytes.Buffer
	host string
}

func newTestCLI(t *testing.T, h http.Handler) *testCLI {
	t.Helper()
	isolateEnv(t)

	var host string
	if h != nil {
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		host = strings.TrimPrefix(srv.URL, "http://")
	}

	prev := statusOut
	statusOut = io.Discard
	t.Cleanup(func() {
		statusOut = prev
		observability.Reset()
	})

	c := New(io.Discard, LogInfo)
	out := &bytes.Buffer{}
	c.Out = out
	c.SessionDir = t.TempDir()
	return &testCLI{CLI: c, out: out, host: host}
}

// run executes args on a fresh command tree sharing the CLI's state.
func (tc *testCLI) run(args ...string) error {
	return tc.runWithInput("", args...)
}

func (tc *testCLI) runWithInput(stdin string, args ...string) error {
	tc.out.Reset()
	tc.cfg = nil
	root := tc.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// server flags for the test server.
func (tc *testCLI) server(args ...string) []string {
	return append([]string{"--host", tc.host, "--insecure"}, args...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
