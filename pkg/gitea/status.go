package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/gritea/pkg/errors"
)

// CommitStatusState is the state of a commit status.
type CommitStatusState string

const (
	StatusPending CommitStatusState = "pending"
	StatusSuccess CommitStatusState = "success"
	StatusError   CommitStatusState = "error"
	StatusFailure CommitStatusState = "failure"
	StatusWarning CommitStatusState = "warning"
)

// ParseCommitStatusState parses one of pending, success, error, failure or warning.
func ParseCommitStatusState(s string) (CommitStatusState, error) {
	switch st := CommitStatusState(s); st {
	case StatusPending, StatusSuccess, StatusError, StatusFailure, StatusWarning:
		return st, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown commit status state %q", s)
	}
}

// UnmarshalJSON rejects unknown states.
func (s *CommitStatusState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseCommitStatusState(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// CommitStatus is a status reported against a commit, e.g. by CI.
type CommitStatus struct {
	ID          int64             `json:"id"`
	State       CommitStatusState `json:"state"`
	TargetURL   string            `json:"target_url"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Context     string            `json:"context"`
	Creator     *User             `json:"creator,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Validate checks the fields every status payload carries.
func (s *CommitStatus) Validate() error {
	if s.ID == 0 {
		return fmt.Errorf("commit status: missing required field %q", "id")
	}
	if s.State == "" {
		return fmt.Errorf("commit status: missing required field %q", "state")
	}
	return nil
}

// CreateStatusOption holds the fields of a new commit status.
type CreateStatusOption struct {
	State       CommitStatusState `json:"state"`
	TargetURL   string            `json:"target_url"`
	Description string            `json:"description"`
	Context     string            `json:"context"`
}

// CreateStatus attaches a status to the commit sha in owner/repo.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, sha string, opt CreateStatusOption) (*CommitStatus, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", repo, "commit sha", sha); err != nil {
		return nil, err
	}
	if _, err := ParseCommitStatusState(string(opt.State)); err != nil {
		return nil, err
	}
	s, err := call[CommitStatus](ctx, c, http.MethodPost, relPath("repos", owner, repo, "statuses", sha), opt, "create status failed")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStatuses returns one page of statuses reported for ref (a SHA, branch or tag).
func (c *Client) ListStatuses(ctx context.Context, owner, repo, ref string, p Pagination) ([]CommitStatus, error) {
	if err := errors.ValidateSegments("owner", owner, "repo", repo, "ref", ref); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rel := withQuery(relPath("repos", owner, repo, "statuses", ref), p.Values())
	statuses, err := call[[]CommitStatus](ctx, c, http.MethodGet, rel, nil, "list statuses failed")
	if err != nil {
		return nil, err
	}
	if err := validateAll(statuses, "list statuses failed"); err != nil {
		return nil, err
	}
	return statuses, nil
}
