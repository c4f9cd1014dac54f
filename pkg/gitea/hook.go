package gitea

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/gritea/pkg/errors"
)

// Hook types accepted by CreateHookOption.Type.
const (
	HookTypeGitea   = "gitea"
	HookTypeGogs    = "gogs"
	HookTypeSlack   = "slack"
	HookTypeDiscord = "discord"
)

// CreateHookOption describes a new webhook. Config must contain "url" and
// "content_type"; "secret" enables signed deliveries.
type CreateHookOption struct {
	Type         string            `json:"type"`
	Config       map[string]string `json:"config"`
	Events       []string          `json:"events"`
	BranchFilter string            `json:"branch_filter"`
	Active       bool              `json:"active"`
}

// Hook is a webhook configured on a repository.
type Hook struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Config    map[string]string `json:"config"`
	Events    []string          `json:"events"`
	Active    bool              `json:"active"`
	UpdatedAt time.Time         `json:"updated_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// Validate checks the fields every hook payload carries.
func (h *Hook) Validate() error {
	if h.ID == 0 {
		return fmt.Errorf("hook: missing required field %q", "id")
	}
	return nil
}

// CreateHook creates a webhook on owner/repo.
func (c *Client) CreateHook(ctx context.Context, owner, repo string, opt CreateHookOption) (*Hook, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", repo); err != nil {
		return nil, err
	}
	h, err := call[Hook](ctx, c, http.MethodPost, relPath("repos", owner, repo, "hooks"), opt, "create hook failed")
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHooks returns one page of the webhooks configured on owner/repo.
func (c *Client) ListHooks(ctx context.Context, owner, repo string, p Pagination) ([]Hook, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", repo); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rel := withQuery(relPath("repos", owner, repo, "hooks"), p.Values())
	hooks, err := call[[]Hook](ctx, c, http.MethodGet, rel, nil, "list hooks failed")
	if err != nil {
		return nil, err
	}
	if err := validateAll(hooks, "list hooks failed"); err != nil {
		return nil, err
	}
	return hooks, nil
}

// GetHook returns the webhook id on owner/repo.
func (c *Client) GetHook(ctx context.Context, owner, repo string, id int64) (*Hook, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", repo); err != nil {
		return nil, err
	}
	rel := relPath("repos", owner, repo, "hooks", strconv.FormatInt(id, 10))
	h, err := call[Hook](ctx, c, http.MethodGet, rel, nil, "get hook failed")
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHook removes the webhook id from owner/repo.
func (c *Client) DeleteHook(ctx context.Context, owner, repo string, id int64) error {
	if err := errors.ValidateSegments("owner", owner, "repo", repo); err != nil {
		return err
	}
	rel := relPath("repos", owner, repo, "hooks", strconv.FormatInt(id, 10))
	return c.send(ctx, http.MethodDelete, rel, nil, "delete hook failed")
}
