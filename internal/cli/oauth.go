package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea"
	"github.com/matzehuels/gritea/pkg/gitea/oauth"
	"github.com/matzehuels/gritea/pkg/httputil"
	"github.com/matzehuels/gritea/pkg/session"
)

// loginTimeout bounds the browser authorization flow.
const loginTimeout = 5 * time.Minute

// oauthCommand creates the oauth command with subcommands.
func (c *CLI) oauthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "OAuth2 authorization against a Gitea server",
		Long: `Work with an OAuth2 application registered on the server
(Settings > Applications > OAuth2 Applications).

The client ID and secret are read from GITEA_CLIENT_ID and
GITEA_CLIENT_SECRET or the [oauth] table of config.toml.`,
	}
	cmd.AddCommand(c.oauthURLCommand())
	cmd.AddCommand(c.oauthExchangeCommand())
	cmd.AddCommand(c.oauthLoginCommand())
	return cmd
}

func (c *CLI) requireOAuthClient(needSecret bool) error {
	cfg := c.config()
	if err := cfg.RequireHost(); err != nil {
		return err
	}
	if cfg.OAuth.ClientID == "" {
		return errors.New(errors.ErrCodeEnv, "GITEA_CLIENT_ID is not set")
	}
	if needSecret && cfg.OAuth.ClientSecret == "" {
		return errors.New(errors.ErrCodeEnv, "GITEA_CLIENT_SECRET is not set")
	}
	return nil
}

func (c *CLI) oauthURLCommand() *cobra.Command {
	var state, responseType string

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL to send a user to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireOAuthClient(false); err != nil {
				return err
			}
			cfg := c.config()
			if state == "" {
				var err error
				if state, err = session.GenerateState(); err != nil {
					return fmt.Errorf("generate state: %w", err)
				}
			}
			u, err := oauth.AuthorizationURL(cfg.ServerURL(), cfg.OAuth.ClientID, cfg.OAuth.RedirectURI, responseType, state)
			if err != nil {
				return err
			}

			out := struct {
				URL   string `json:"url"`
				State string `json:"state"`
			}{u.String(), state}
			return c.render(out, func(w io.Writer) {
				fmt.Fprintln(w, u.String())
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "CSRF state (random when empty)")
	cmd.Flags().StringVar(&responseType, "response-type", "code", "OAuth2 response type")
	return cmd
}

func (c *CLI) oauthExchangeCommand() *cobra.Command {
	var (
		code, refresh string
		save          bool
	)

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code or refresh token for an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireOAuthClient(true); err != nil {
				return err
			}
			if (code == "") == (refresh == "") {
				return errors.New(errors.ErrCodeInvalidInput, "pass exactly one of --code or --refresh-token")
			}

			ctx, cancel := callContext(cmd.Context())
			defer cancel()

			tok, err := c.exchange(ctx, code, refresh)
			if err != nil {
				return err
			}
			if save {
				if err := c.saveLogin(ctx, gitea.OAuth2Credential(*tok), 0); err != nil {
					return err
				}
			}
			return c.render(tok, func(w io.Writer) { printToken(w, tok) })
		},
	}

	f := cmd.Flags()
	f.StringVar(&code, "code", "", "authorization code from the redirect")
	f.StringVar(&refresh, "refresh-token", "", "refresh token from an earlier exchange")
	f.BoolVar(&save, "save", false, "store the token as the session for the host")
	return cmd
}

// exchange trades a code (or a refresh token when code is empty).
func (c *CLI) exchange(ctx context.Context, code, refresh string) (*oauth.AccessToken, error) {
	cfg := c.config()
	form := oauth.AccessTokenForm{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURI:  cfg.OAuth.RedirectURI,
	}
	if code != "" {
		form.GrantType = oauth.GrantAuthorizationCode
		form.Code = code
	} else {
		form.GrantType = oauth.GrantRefreshToken
		form.RefreshToken = refresh
	}
	return oauth.ExchangeToken(ctx, cfg.ServerURL(), form, httputil.NewHTTPClient(cfg.Timeout))
}

func printToken(w io.Writer, t *oauth.AccessToken) {
	printKeyValue(w, "Access token", t.AccessToken)
	printKeyValue(w, "Type", t.TokenType.String())
	if t.ExpiresIn > 0 {
		printKeyValue(w, "Expires in", (time.Duration(t.ExpiresIn) * time.Second).String())
	}
	if !t.Expiry.IsZero() {
		printKeyValue(w, "Expiry", t.Expiry.Format(time.RFC3339))
	}
	printKeyValue(w, "Refresh token", t.RefreshToken)
}

func (c *CLI) oauthLoginCommand() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through the browser and store the OAuth2 token",
		Long: `Open the server's authorization page and wait for the redirect on a
local callback server. The registered redirect URI must point at the
callback address (default http://127.0.0.1:8765/callback).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireOAuthClient(true); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()
			return c.runOAuthLogin(ctx, noBrowser)
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the URL instead of opening a browser")
	return cmd
}

// stateStore shares state through Redis when configured.
func (c *CLI) stateStore(ctx context.Context) (session.StateStore, func(), error) {
	cfg := c.config()
	if cfg.Redis.Addr == "" {
		return session.NewMemoryStateStore(), func() {}, nil
	}
	rs, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

func (c *CLI) runOAuthLogin(ctx context.Context, noBrowser bool) error {
	cfg := c.config()
	redirect, err := url.Parse(cfg.OAuth.RedirectURI)
	if err != nil {
		return errors.Wrap(errors.ErrCodeURLParse, err, "parse redirect uri")
	}

	states, closeStates, err := c.stateStore(ctx)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer closeStates()

	state, err := states.Generate(ctx, session.DefaultStateTTL)
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}
	authURL, err := oauth.AuthorizationURL(cfg.ServerURL(), cfg.OAuth.ClientID, cfg.OAuth.RedirectURI, "code", state)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.OAuth.CallbackAddr)
	if err != nil {
		return fmt.Errorf("listen for callback: %w", err)
	}
	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           newCallbackRouter(redirect.Path, states, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	c.Logger.Debug("callback server listening", "addr", ln.Addr().String(), "path", redirect.Path)

	printTitle(statusOut, "Gitea Authorization")
	printKeyValue(statusOut, "URL", StyleLink.Render(authURL.String()))
	switch {
	case noBrowser:
		printDetail("Open the URL above in your browser")
	case openBrowser(authURL.String()) != nil:
		printWarning("Could not open a browser")
		printDetail("Open the URL above in your browser")
	default:
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		fmt.Fprintln(statusOut)
		return fmt.Errorf("authorization: %w", ctx.Err())
	}
	fmt.Fprintln(statusOut)
	if res.err != nil {
		return fmt.Errorf("authorization failed: %w", res.err)
	}

	tok, err := c.exchange(ctx, res.code, "")
	if err != nil {
		return err
	}
	return c.saveLogin(ctx, gitea.OAuth2Credential(*tok), 0)
}

type callbackResult struct {
	code string
	err  error
}

// newCallbackRouter serves the OAuth redirect at path. The first request
// carrying a valid state is reported on results, with either its code or
// its error.
func newCallbackRouter(path string, states session.StateStore, results chan<- callbackResult) http.Handler {
	if path == "" {
		path = "/"
	}
	report := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		// Error redirects carry the state too; anything without a valid one is ignored.
		ok, err := states.Validate(req.Context(), q.Get("state"))
		if err != nil {
			http.Error(w, "state store unavailable", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, session.ErrInvalidState.Error(), http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			report(callbackResult{err: fmt.Errorf("%s: %s", e, q.Get("error_description"))})
			http.Error(w, "Authorization was denied. You can close this window.", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			report(callbackResult{err: errors.New(errors.ErrCodeInvalidInput, "callback without code")})
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		report(callbackResult{code: code})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "Logged in to gritea. You can close this window.\n")
	})
	return r
}
