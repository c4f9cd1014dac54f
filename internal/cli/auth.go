package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea"
	"github.com/matzehuels/gritea/pkg/httputil"
	"github.com/matzehuels/gritea/pkg/session"
)

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for a Gitea host",
		Long: `Verify an access token against the server and store it.

Create a token under Settings > Applications on your Gitea server, then run:

  gritea login --host gitea.example.com --token <token>

Sessions are stored per host in ~/.config/gritea/sessions/ (or in Redis
when GITEA_REDIS_ADDR is set). Use 'gritea oauth login' for the browser flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if err := cfg.RequireHost(); err != nil {
				return err
			}
			if cfg.Token == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no token given: pass --token or set GITEA_TOKEN")
			}
			return c.saveLogin(cmd.Context(), gitea.TokenCredential(cfg.Token), ttl)
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "forget the session after this duration (0 keeps it)")
	return cmd
}

// saveLogin verifies cred with the current user endpoint and stores it.
func (c *CLI) saveLogin(ctx context.Context, cred gitea.Credential, ttl time.Duration) error {
	cfg := c.config()
	ctx, cancel := callContext(ctx)
	defer cancel()

	client, err := gitea.NewBuilder(cfg.Host).
		Scheme(cfg.Scheme()).
		Credential(cred).
		HTTPClient(httputil.NewHTTPClient(cfg.Timeout)).
		Build()
	if err != nil {
		return err
	}

	spinner := c.spinner(ctx, "Verifying credential...")
	user, err := client.CurrentUser(ctx)
	if err != nil {
		spinner.StopWithError("Credential rejected")
		return fmt.Errorf("verify credential: %w", err)
	}
	spinner.Stop()

	store, closeStore, err := c.sessionStore(ctx)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeStore()

	sess := session.New(cfg.Host, cfg.Scheme(), cred, user.Login, ttl)
	if err := store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	printSuccess("Logged in to %s as @%s", cfg.Host, user.Login)
	return nil
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential for the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if err := cfg.RequireHost(); err != nil {
				return err
			}
			store, closeStore, err := c.sessionStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer closeStore()

			if err := store.Delete(cmd.Context(), session.Key(cfg.Host)); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out of %s", cfg.Host)
			return nil
		},
	}
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callContext(cmd.Context())
			defer cancel()

			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			spinner := c.spinner(ctx, "Fetching user...")
			user, err := client.CurrentUser(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}

			return c.render(user, func(w io.Writer) {
				printUser(w, client.BaseURL().Host, user)
			})
		},
	}
}

func printUser(w io.Writer, host string, u *gitea.User) {
	printTitle(w, "@"+u.Login)
	printKeyValue(w, "Host", host)
	printKeyValue(w, "Name", u.FullName)
	printKeyValue(w, "Email", u.Email)
	if u.IsAdmin {
		printKeyValue(w, "Role", "admin")
	}
	if !u.Created.IsZero() {
		printKeyValue(w, "Joined", u.Created.Format("Jan 2, 2006"))
	}
}

// sessionsCommand lists stored sessions.
func (c *CLI) sessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List hosts with a stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewFileStore(c.SessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.Cleanup(cmd.Context()); err != nil {
				c.Logger.Warn("cleanup sessions", "err", err)
			}
			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			type row struct {
				Host      string    `json:"host"`
				Login     string    `json:"login"`
				Kind      string    `json:"kind"`
				CreatedAt time.Time `json:"created_at"`
				ExpiresAt time.Time `json:"expires_at,omitzero"`
			}
			rows := make([]row, 0, len(list))
			for _, s := range list {
				rows = append(rows, row{s.Host, s.Login, s.Credential().Kind().String(), s.CreatedAt, s.ExpiresAt})
			}

			return c.render(rows, func(w io.Writer) {
				if len(rows) == 0 {
					printInfo("No stored sessions")
					printNextStep("Log in with", "gritea login --host <host> --token <token>")
					return
				}
				for _, r := range rows {
					expires := ""
					if !r.ExpiresAt.IsZero() {
						expires = "expires " + r.ExpiresAt.Format("Jan 2, 2006")
					}
					printItem(w, r.Host, "@"+r.Login, r.Kind, expires)
				}
			})
		},
	}
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
