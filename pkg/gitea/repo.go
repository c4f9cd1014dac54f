package gitea

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/gritea/pkg/errors"
)

// Permission is the authenticated user's access to a repository.
type Permission struct {
	Admin bool `json:"admin"`
	Push  bool `json:"push"`
	Pull  bool `json:"pull"`
}

// InternalTracker holds the settings of the built-in issue tracker.
type InternalTracker struct {
	EnableTimeTracker                bool `json:"enable_time_tracker"`
	AllowOnlyContributorsToTrackTime bool `json:"allow_only_contributors_to_track_time"`
	EnableIssueDependencies          bool `json:"enable_issue_dependencies"`
}

// Repository represents a Gitea repository. Parent is set for forks and
// holds the upstream repository.
type Repository struct {
	ID                        int64            `json:"id"`
	Owner                     *User            `json:"owner"`
	Name                      string           `json:"name"`
	FullName                  string           `json:"full_name"`
	Description               string           `json:"description"`
	Empty                     bool             `json:"empty"`
	Private                   bool             `json:"private"`
	Fork                      bool             `json:"fork"`
	Template                  bool             `json:"template"`
	Parent                    *Repository      `json:"parent,omitempty"`
	Mirror                    bool             `json:"mirror"`
	Size                      int64            `json:"size"`
	HTMLURL                   string           `json:"html_url"`
	SSHURL                    string           `json:"ssh_url"`
	CloneURL                  string           `json:"clone_url"`
	OriginalURL               string           `json:"original_url"`
	Website                   string           `json:"website"`
	StarsCount                int              `json:"stars_count"`
	ForksCount                int              `json:"forks_count"`
	WatchersCount             int              `json:"watchers_count"`
	OpenIssuesCount           int              `json:"open_issues_count"`
	OpenPRCounter             int              `json:"open_pr_counter"`
	ReleaseCounter            int              `json:"release_counter"`
	DefaultBranch             string           `json:"default_branch"`
	Archived                  bool             `json:"archived"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
	Permissions               *Permission      `json:"permissions,omitempty"`
	HasIssues                 bool             `json:"has_issues"`
	InternalTracker           *InternalTracker `json:"internal_tracker,omitempty"`
	HasWiki                   bool             `json:"has_wiki"`
	HasPullRequests           bool             `json:"has_pull_requests"`
	HasProjects               bool             `json:"has_projects"`
	IgnoreWhitespaceConflicts bool             `json:"ignore_whitespace_conflicts"`
	AllowMergeCommits         bool             `json:"allow_merge_commits"`
	AllowRebase               bool             `json:"allow_rebase"`
	AllowRebaseExplicit       bool             `json:"allow_rebase_explicit"`
	AllowSquashMerge          bool             `json:"allow_squash_merge"`
	DefaultMergeStyle         string           `json:"default_merge_style"`
	AvatarURL                 string           `json:"avatar_url"`
	Internal                  bool             `json:"internal"`
	MirrorInterval            string           `json:"mirror_interval"`
}

// Validate checks the fields every repository payload carries.
func (r *Repository) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("repository: missing required field %q", "id")
	}
	if r.Name == "" {
		return fmt.Errorf("repository: missing required field %q", "name")
	}
	return nil
}

// ListRepos returns one page of the authenticated user's repositories.
func (c *Client) ListRepos(ctx context.Context, p Pagination) ([]Repository, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	repos, err := call[[]Repository](ctx, c, http.MethodGet, withQuery("user/repos", p.Values()), nil, "list repos failed")
	if err != nil {
		return nil, err
	}
	if err := validateAll(repos, "list repos failed"); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepo returns the repository owner/name.
func (c *Client) GetRepo(ctx context.Context, owner, name string) (*Repository, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", name); err != nil {
		return nil, err
	}
	r, err := call[Repository](ctx, c, http.MethodGet, relPath("repos", owner, name), nil, "get repo failed")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// validateAll applies Validate to each decoded list element.
func validateAll[T any, PT interface {
	*T
	Validate() error
}](items []T, label string) error {
	for i := range items {
		if err := PT(&items[i]).Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeDecode, err, "%s: invalid item %d", label, i)
		}
	}
	return nil
}
