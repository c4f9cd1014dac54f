package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	gerrors "github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/httputil"
)

// Config is the resolved CLI configuration. Values are layered as
// defaults < config.toml < environment (.env included) < flags.
type Config struct {
	Host     string        `toml:"host"`
	Insecure bool          `toml:"insecure"`
	Token    string        `toml:"token"`
	Timeout  time.Duration `toml:"timeout"`
	Output   string        `toml:"output"`

	OAuth   OAuthConfig   `toml:"oauth"`
	Webhook WebhookConfig `toml:"webhook"`
	Redis   RedisConfig   `toml:"redis"`
}

// OAuthConfig holds the OAuth2 application registered on the server.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	// CallbackAddr is where "oauth login" listens for the redirect.
	CallbackAddr string `toml:"callback_addr"`
}

// WebhookConfig configures "webhook listen".
type WebhookConfig struct {
	Secret string `toml:"secret"`
	Addr   string `toml:"addr"`
	Path   string `toml:"path"`
}

// RedisConfig selects a shared session store. Empty Addr keeps sessions on disk.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: httputil.DefaultTimeout,
		Output:  formatText,
		OAuth: OAuthConfig{
			RedirectURI:  "http://127.0.0.1:8765/callback",
			CallbackAddr: "127.0.0.1:8765",
		},
		Webhook: WebhookConfig{
			Addr: ":8080",
			Path: "/hooks/gitea",
		},
	}
}

// configPath returns ~/.config/gritea/config.toml, honoring XDG_CONFIG_HOME.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig builds a Config from defaults, the TOML file at path (optional;
// empty path selects the default location) and the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	if err := loadTOML(&cfg, path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	loadDotenv()
	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// loadTOML decodes path over cfg. A missing file is not an error.
func loadTOML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// loadDotenv loads GITEA_ENV_FILE (comma-separated) or ./.env when present.
// Exported variables are never overridden.
func loadDotenv() {
	if v := strings.TrimSpace(os.Getenv("GITEA_ENV_FILE")); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		_ = godotenv.Load(parts...)
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty values override the current config.
func loadEnv(cfg *Config) error {
	setString(&cfg.Host, "GITEA_HOST")
	setString(&cfg.Token, "ACCESS_TOKEN")
	setString(&cfg.Token, "GITEA_TOKEN")
	setString(&cfg.Output, "GITEA_OUTPUT")
	setString(&cfg.OAuth.ClientID, "GITEA_CLIENT_ID")
	setString(&cfg.OAuth.ClientSecret, "GITEA_CLIENT_SECRET")
	setString(&cfg.OAuth.RedirectURI, "GITEA_REDIRECT_URI")
	setString(&cfg.Webhook.Secret, "GITEA_WEBHOOK_SECRET")
	setString(&cfg.Webhook.Addr, "GITEA_WEBHOOK_ADDR")
	setString(&cfg.Redis.Addr, "GITEA_REDIS_ADDR")
	setString(&cfg.Redis.Password, "GITEA_REDIS_PASSWORD")

	if err := setBool(&cfg.Insecure, "GITEA_INSECURE"); err != nil {
		return err
	}
	if err := setInt(&cfg.Redis.DB, "GITEA_REDIS_DB"); err != nil {
		return err
	}
	return setDuration(&cfg.Timeout, "GITEA_TIMEOUT")
}

// RequireHost fails with ENV_ERROR when no server is configured.
func (c *Config) RequireHost() error {
	if c.Host == "" {
		return gerrors.New(gerrors.ErrCodeEnv, "no Gitea host configured: set GITEA_HOST, host in config.toml or --host")
	}
	return nil
}

// Scheme returns "http" for insecure hosts and "https" otherwise.
func (c *Config) Scheme() string {
	if c.Insecure {
		return "http"
	}
	return "https"
}

// ServerURL returns scheme://host/, the base used by the OAuth endpoints.
func (c *Config) ServerURL() string {
	return c.Scheme() + "://" + strings.TrimSuffix(c.Host, "/") + "/"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeEnv, err, "invalid %s=%q", key, v)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeEnv, err, "invalid %s=%q", key, v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeEnv, err, "invalid %s=%q", key, v)
	}
	*dst = d
	return nil
}
