package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gritea/pkg/gitea"
)

// maxConcurrentFetches bounds parallel requests in "repo get".
const maxConcurrentFetches = 4

// repoCommand creates the repo command with subcommands.
func (c *CLI) repoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Inspect repositories",
	}
	cmd.AddCommand(c.repoGetCommand())
	cmd.AddCommand(c.repoListCommand())
	return cmd
}

func (c *CLI) repoGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <owner/repo>...",
		Short: "Show one or more repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type ref struct{ owner, name string }
			refs := make([]ref, len(args))
			for i, arg := range args {
				owner, name, err := gitea.ParseRepoRef(arg)
				if err != nil {
					return err
				}
				refs[i] = ref{owner, name}
			}

			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spinner := c.spinner(ctx, "Fetching repositories...")
			repos := make([]*gitea.Repository, len(refs))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(maxConcurrentFetches)
			for i, r := range refs {
				g.Go(func() error {
					repo, err := client.GetRepo(gctx, r.owner, r.name)
					if err != nil {
						return fmt.Errorf("%s/%s: %w", r.owner, r.name, err)
					}
					repos[i] = repo
					return nil
				})
			}
			err = g.Wait()
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Fetched %d repositories", len(repos)))

			var out any = repos
			if len(repos) == 1 {
				out = repos[0]
			}
			return c.render(out, func(w io.Writer) {
				for i, r := range repos {
					if i > 0 {
						fmt.Fprintln(w)
					}
					printRepo(w, r)
				}
			})
		},
	}
}

func printRepo(w io.Writer, r *gitea.Repository) {
	printTitle(w, r.FullName)
	printKeyValue(w, "Description", r.Description)
	printKeyValue(w, "URL", StyleLink.Render(r.HTMLURL))
	printKeyValue(w, "Clone", r.CloneURL)
	printKeyValue(w, "Branch", r.DefaultBranch)
	printKeyValue(w, "Visibility", visibility(r))
	printKeyValue(w, "Stars", strconv.Itoa(r.StarsCount))
	printKeyValue(w, "Forks", strconv.Itoa(r.ForksCount))
	printKeyValue(w, "Open issues", strconv.Itoa(r.OpenIssuesCount))
	if r.Parent != nil {
		printKeyValue(w, "Fork of", r.Parent.FullName)
	}
	if r.Permissions != nil {
		printKeyValue(w, "Access", permissionLabel(r.Permissions))
	}
	if !r.UpdatedAt.IsZero() {
		printKeyValue(w, "Updated", r.UpdatedAt.Format("Jan 2, 2006"))
	}
}

func visibility(r *gitea.Repository) string {
	switch {
	case r.Private:
		return "private"
	case r.Internal:
		return "internal"
	default:
		return "public"
	}
}

func permissionLabel(p *gitea.Permission) string {
	switch {
	case p.Admin:
		return "admin"
	case p.Push:
		return "write"
	case p.Pull:
		return "read"
	default:
		return "none"
	}
}

func (c *CLI) repoListCommand() *cobra.Command {
	var page gitea.Pagination

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repositories of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callContext(cmd.Context())
			defer cancel()
			client, err := c.newClient(ctx)
			if err != nil {
				return err
			}

			spinner := c.spinner(ctx, "Listing repositories...")
			repos, err := client.ListRepos(ctx, page)
			spinner.Stop()
			if err != nil {
				return err
			}

			return c.render(repos, func(w io.Writer) {
				if len(repos) == 0 {
					printInfo("No repositories on this page")
					return
				}
				for _, r := range repos {
					printItem(w, r.FullName, visibility(&r), r.Description)
				}
			})
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

// addPageFlags binds --page and --limit.
func addPageFlags(cmd *cobra.Command, p *gitea.Pagination) {
	*p = gitea.DefaultPagination()
	cmd.Flags().IntVar(&p.Page, "page", p.Page, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", p.Limit, "page size")
}
