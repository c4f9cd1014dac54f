package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea/webhook"
)

// webhookCommand creates the webhook command with subcommands.
func (c *CLI) webhookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Sign, verify and receive webhook deliveries",
		Long: `Work with the HMAC-SHA256 signatures Gitea attaches to webhook deliveries.

The secret defaults to GITEA_WEBHOOK_SECRET or [webhook] secret in config.toml.`,
	}
	cmd.AddCommand(c.webhookSignCommand())
	cmd.AddCommand(c.webhookVerifyCommand())
	cmd.AddCommand(c.webhookListenCommand())
	return cmd
}

// readPayload reads the named file, or stdin for "-" or no argument.
func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

func (c *CLI) webhookSecret(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if s := c.config().Webhook.Secret; s != "" {
		return s, nil
	}
	return "", gerrors.New(gerrors.ErrCodeEnv, "no webhook secret: pass --secret or set GITEA_WEBHOOK_SECRET")
}

func (c *CLI) webhookSignCommand() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign [file|-]",
		Short: "Print the signature of a payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.webhookSecret(secret)
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			sig := webhook.Sign(key, payload)
			return c.render(map[string]string{"signature": sig}, func(w io.Writer) {
				fmt.Fprintln(w, sig)
			})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret")
	return cmd
}

func (c *CLI) webhookVerifyCommand() *cobra.Command {
	var secret, signature string

	cmd := &cobra.Command{
		Use:   "verify [file|-]",
		Short: "Check a payload against its signature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.webhookSecret(secret)
			if err != nil {
				return err
			}
			if signature == "" {
				return gerrors.New(gerrors.ErrCodeInvalidInput, "--signature is required")
			}
			payload, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			if !webhook.VerifySignature(key, payload, signature) {
				printError("Signature does not match")
				return gerrors.New(gerrors.ErrCodeInvalidInput, "signature mismatch")
			}
			printSuccess("Signature valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret")
	cmd.Flags().StringVar(&signature, "signature", "", "value of the X-Gitea-Signature header")
	return cmd
}

func (c *CLI) webhookListenCommand() *cobra.Command {
	var addr, path string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive webhook deliveries and log push events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.webhookSecret("")
			if err != nil {
				return err
			}
			cfg := c.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Webhook.Addr
			}
			if !cmd.Flags().Changed("path") {
				path = cfg.Webhook.Path
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newWebhookRouter(path, key, c.Logger),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
			}
			return serve(cmd.Context(), srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&path, "path", "/hooks/gitea", "delivery path")
	return cmd
}

// newWebhookRouter mounts a verifying webhook handler at path and a health check.
func newWebhookRouter(path, secret string, logger *log.Logger) http.Handler {
	h := &webhook.Handler{
		Secret: secret,
		OnPush: func(ctx context.Context, p *webhook.PushPayload) error {
			logger.Info("push",
				"repo", p.Repository.FullName,
				"ref", p.Ref,
				"after", shortSHA(p.After),
				"commits", len(p.Commits),
				"pusher", p.Pusher.Login,
			)
			return nil
		},
		OnError: func(r *http.Request, err error) {
			logger.Warn("delivery rejected", "delivery", r.Header.Get(webhook.DeliveryHeader), "err", err)
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodPost, path, h)
	return r
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}
