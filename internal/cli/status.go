package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gritea/pkg/gitea"
)

// statusCommand creates the status command with subcommands.
func (c *CLI) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report and inspect commit statuses",
	}
	cmd.AddCommand(c.statusCreateCommand())
	cmd.AddCommand(c.statusListCommand())
	return cmd
}

func (c *CLI) statusCreateCommand() *cobra.Command {
	var (
		state string
		opt   gitea.CreateStatusOption
	)

	cmd := &cobra.Command{
		Use:     "create <owner/repo> <sha>",
		Short:   "Attach a status to a commit",
		Example: `  gritea status create alice/notes c0a03f7 --state success --context ci/build --target-url https://ci.example.com/1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := gitea.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			opt.State, err = gitea.ParseCommitStatusState(state)
			if err != nil {
				return err
			}

			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			st, err := client.CreateStatus(ctx, owner, repo, args[1], opt)
			if err != nil {
				return err
			}
			return c.render(st, func(w io.Writer) {
				printSuccess("Set %s on %s", stateStyle(string(st.State)).Render(string(st.State)), args[1])
				printStatus(w, st)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&state, "state", string(gitea.StatusPending), "pending, success, error, failure or warning")
	f.StringVar(&opt.TargetURL, "target-url", "", "link shown next to the status")
	f.StringVar(&opt.Description, "description", "", "short description")
	f.StringVar(&opt.Context, "context", "default", "status context, e.g. ci/build")
	return cmd
}

func (c *CLI) statusListCommand() *cobra.Command {
	var page gitea.Pagination

	cmd := &cobra.Command{
		Use:   "list <owner/repo> <ref>",
		Short: "List statuses of a commit, branch or tag",
		Args:  cobra.ExactArgs(2),
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

			statuses, err := client.ListStatuses(ctx, owner, repo, args[1], page)
			if err != nil {
				return err
			}
			return c.render(statuses, func(w io.Writer) {
				if len(statuses) == 0 {
					printInfo("No statuses for %s", args[1])
					return
				}
				for _, s := range statuses {
					printItem(w, s.Context, stateStyle(string(s.State)).Render(string(s.State)), s.Description, s.TargetURL)
				}
			})
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

func printStatus(w io.Writer, s *gitea.CommitStatus) {
	printKeyValue(w, "ID", strconv.FormatInt(s.ID, 10))
	printKeyValue(w, "Context", s.Context)
	printKeyValue(w, "Description", s.Description)
	printKeyValue(w, "Target", s.TargetURL)
	if s.Creator != nil {
		printKeyValue(w, "Creator", "@"+s.Creator.Login)
	}
}
