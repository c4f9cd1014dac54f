package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gritea/pkg/buildinfo"
	"github.com/matzehuels/gritea/pkg/gitea"
	"github.com/matzehuels/gritea/pkg/httputil"
	"github.com/matzehuels/gritea/pkg/observability"
	"github.com/matzehuels/gritea/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gritea"

	// defaultCallTimeout bounds each command's API calls.
	defaultCallTimeout = 60 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command results; status lines go to stderr.
	Out io.Writer
	// SessionDir overrides the session directory (~/.config/gritea/sessions).
	SessionDir string

	flags globalFlags
	cfg   *Config
}

type globalFlags struct {
	config   string
	host     string
	token    string
	insecure bool
	output   string
	timeout  time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gritea talks to the Gitea REST API",
		Long: `gritea is a command-line client for Gitea servers.

It reads the server and credential from ~/.config/gritea/config.toml,
the environment (GITEA_HOST, GITEA_TOKEN, ...; a local .env is loaded)
and flags, in increasing order of precedence.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.config, "config", "", "config file (default ~/.config/gritea/config.toml)")
	pf.StringVar(&c.flags.host, "host", "", "Gitea host, e.g. gitea.example.com or localhost:3000")
	pf.StringVar(&c.flags.token, "token", "", "access token (overrides any stored session)")
	pf.BoolVar(&c.flags.insecure, "insecure", false, "use http instead of https")
	pf.StringVarP(&c.flags.output, "output", "o", formatText, "output format: text, json or yaml")
	pf.DurationVar(&c.flags.timeout, "timeout", httputil.DefaultTimeout, "HTTP request timeout")

	root.AddCommand(c.loginCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.whoamiCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.repoCommand())
	root.AddCommand(c.hookCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.oauthCommand())
	root.AddCommand(c.webhookCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.Out, buildinfo.String())
		},
	}
}

// setup resolves the configuration and installs HTTP debug hooks.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(c.flags.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = c.flags.host
	}
	if flags.Changed("token") {
		cfg.Token = c.flags.token
	}
	if flags.Changed("insecure") {
		cfg.Insecure = c.flags.insecure
	}
	if flags.Changed("output") {
		cfg.Output = c.flags.output
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.flags.timeout
	}
	if err := validateFormat(cfg.Output); err != nil {
		return err
	}
	c.cfg = cfg

	observability.SetHTTPHooks(logHooks{logger: c.Logger})
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// config returns the resolved configuration, defaults when setup did not run.
func (c *CLI) config() *Config {
	if c.cfg == nil {
		cfg := DefaultConfig()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Client & Session Factories
// =============================================================================

// sessionStore opens Redis when configured, the file store otherwise.
func (c *CLI) sessionStore(ctx context.Context) (session.Store, func(), error) {
	cfg := c.config()
	if cfg.Redis.Addr != "" {
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
	fs, err := session.NewFileStore(c.SessionDir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

// credential picks the configured token, then a stored session for the host.
func (c *CLI) credential(ctx context.Context) (gitea.Credential, error) {
	cfg := c.config()
	if cfg.Token != "" {
		return gitea.TokenCredential(cfg.Token), nil
	}
	store, closeStore, err := c.sessionStore(ctx)
	if err != nil {
		return gitea.NoCredential(), err
	}
	defer closeStore()

	sess, err := store.Get(ctx, session.Key(cfg.Host))
	if err != nil {
		return gitea.NoCredential(), err
	}
	if sess == nil {
		return gitea.NoCredential(), nil
	}
	loggerFromContext(ctx).Debug("using stored session", "host", sess.Host, "login", sess.Login)
	return sess.Credential(), nil
}

// newClient builds a client for the configured host. A missing credential
// is left to the library, which rejects the first request with UNAUTHORIZED.
func (c *CLI) newClient(ctx context.Context) (*gitea.Client, error) {
	cfg := c.config()
	if err := cfg.RequireHost(); err != nil {
		return nil, err
	}
	cred, err := c.credential(ctx)
	if err != nil {
		return nil, err
	}
	return gitea.NewBuilder(cfg.Host).
		Scheme(cfg.Scheme()).
		Credential(cred).
		HTTPClient(httputil.NewHTTPClient(cfg.Timeout)).
		Build()
}

// =============================================================================
// Output Helpers
// =============================================================================

// render writes v in the configured output format.
func (c *CLI) render(v any, text func(io.Writer)) error {
	return writeValue(c.Out, c.config().Output, v, text)
}

// spinner starts a spinner that stays silent for machine-readable output.
func (c *CLI) spinner(ctx context.Context, msg string) *Spinner {
	s := newSpinnerWithContext(ctx, msg)
	s.quiet = c.config().Output != formatText
	s.Start()
	return s
}

// callContext bounds a command's API calls.
func callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultCallTimeout)
}
