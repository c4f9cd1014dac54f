package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea"
)

// hookCommand creates the hook command with subcommands.
func (c *CLI) hookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage repository webhooks",
	}
	cmd.AddCommand(c.hookCreateCommand())
	cmd.AddCommand(c.hookListCommand())
	cmd.AddCommand(c.hookGetCommand())
	cmd.AddCommand(c.hookDeleteCommand())
	return cmd
}

func (c *CLI) hookCreateCommand() *cobra.Command {
	var (
		opt         gitea.CreateHookOption
		target      string
		contentType string
		secret      string
	)

	cmd := &cobra.Command{
		Use:   "create <owner/repo>",
		Short: "Create a webhook",
		Example: `  gritea hook create alice/notes --url https://ci.example.com/hook --secret s3cr3t
  gritea hook create alice/notes --url https://chat.example.com/x --type slack --events push,release`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := gitea.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			if target == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--url is required")
			}
			if secret == "" {
				secret = c.config().Webhook.Secret
			}
			opt.Config = map[string]string{"url": target, "content_type": contentType}
			if secret != "" {
				opt.Config["secret"] = secret
			}

			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			spinner := c.spinner(ctx, "Creating webhook...")
			hook, err := client.CreateHook(ctx, owner, repo, opt)
			spinner.Stop()
			if err != nil {
				return err
			}

			return c.render(hook, func(w io.Writer) {
				printSuccess("Created hook %d on %s/%s", hook.ID, owner, repo)
				printHook(w, hook)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&target, "url", "", "delivery URL")
	f.StringVar(&contentType, "content-type", "json", "payload content type: json or form")
	f.StringVar(&secret, "secret", "", "signing secret (default GITEA_WEBHOOK_SECRET)")
	f.StringVar(&opt.Type, "type", gitea.HookTypeGitea, "hook type: gitea, gogs, slack or discord")
	f.StringSliceVar(&opt.Events, "events", []string{"push"}, "events that trigger the hook")
	f.StringVar(&opt.BranchFilter, "branch-filter", "*", "branch glob that triggers push events")
	f.BoolVar(&opt.Active, "active", true, "deliver events")
	return cmd
}

func (c *CLI) hookListCommand() *cobra.Command {
	var page gitea.Pagination

	cmd := &cobra.Command{
		Use:   "list <owner/repo>",
		Short: "List webhooks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := gitea.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			spinner := c.spinner(ctx, "Listing webhooks...")
			hooks, err := client.ListHooks(ctx, owner, repo, page)
			spinner.Stop()
			if err != nil {
				return err
			}

			return c.render(hooks, func(w io.Writer) {
				if len(hooks) == 0 {
					printInfo("No webhooks on %s/%s", owner, repo)
					return
				}
				for _, h := range hooks {
					printItem(w, strconv.FormatInt(h.ID, 10), h.Type, h.Config["url"], strings.Join(h.Events, ","), activeLabel(h.Active))
				}
			})
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

func (c *CLI) hookGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <owner/repo> <id>",
		Short: "Show a webhook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, id, err := parseHookArgs(args)
			if err != nil {
				return err
			}
			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			hook, err := client.GetHook(ctx, owner, repo, id)
			if err != nil {
				return err
			}
			return c.render(hook, func(w io.Writer) { printHook(w, hook) })
		},
	}
}

func (c *CLI) hookDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <owner/repo> <id>",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, id, err := parseHookArgs(args)
			if err != nil {
				return err
			}
			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			spinner := c.spinner(ctx, "Deleting webhook...")
			if err := client.DeleteHook(ctx, owner, repo, id); err != nil {
				spinner.StopWithError("Delete failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Deleted hook %d from %s/%s", id, owner, repo))
			return nil
		},
	}
}

func parseHookArgs(args []string) (owner, repo string, id int64, err error) {
	owner, repo, err = gitea.ParseRepoRef(args[0])
	if err != nil {
		return "", "", 0, err
	}
	id, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", "", 0, errors.New(errors.ErrCodeInvalidInput, "invalid hook id %q", args[1])
	}
	return owner, repo, id, nil
}

func printHook(w io.Writer, h *gitea.Hook) {
	printTitle(w, fmt.Sprintf("Hook %d", h.ID))
	printKeyValue(w, "Type", h.Type)
	printKeyValue(w, "URL", h.Config["url"])
	printKeyValue(w, "Content type", h.Config["content_type"])
	printKeyValue(w, "Events", strings.Join(h.Events, ", "))
	printKeyValue(w, "Status", activeLabel(h.Active))
	if !h.CreatedAt.IsZero() {
		printKeyValue(w, "Created", h.CreatedAt.Format("Jan 2, 2006 15:04"))
	}
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
