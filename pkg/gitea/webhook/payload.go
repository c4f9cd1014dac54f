package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea"
)

// PayloadUser identifies a commit author, committer or signer.
type PayloadUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// PayloadCommitVerification is the GPG verification state of a commit.
type PayloadCommitVerification struct {
	Verified  bool        `json:"verified"`
	Reason    string      `json:"reason"`
	Signature string      `json:"signature"`
	Signer    PayloadUser `json:"signer"`
	Payload   string      `json:"payload"`
}

// PayloadCommit is a commit included in a push.
type PayloadCommit struct {
	ID           string                     `json:"id"`
	Message      string                     `json:"message"`
	URL          string                     `json:"url"`
	Author       PayloadUser                `json:"author"`
	Committer    PayloadUser                `json:"committer"`
	Verification *PayloadCommitVerification `json:"verification,omitempty"`
	Timestamp    time.Time                  `json:"timestamp"`
	Added        []string                   `json:"added,omitempty"`
	Removed      []string                   `json:"removed,omitempty"`
	Modified     []string                   `json:"modified,omitempty"`
}

// PushPayload is the body of a push event delivery.
type PushPayload struct {
	Ref        string           `json:"ref"`
	Before     string           `json:"before"`
	After      string           `json:"after"`
	CompareURL string           `json:"compare_url"`
	Commits    []PayloadCommit  `json:"commits"`
	HeadCommit *PayloadCommit   `json:"head_commit"`
	Repository gitea.Repository `json:"repository"`
	Pusher     gitea.User       `json:"pusher"`
	Sender     gitea.User       `json:"sender"`
}

// Validate checks the fields every push delivery carries.
func (p *PushPayload) Validate() error {
	switch {
	case p.Ref == "":
		return fmt.Errorf("push payload: missing required field %q", "ref")
	case p.After == "":
		return fmt.Errorf("push payload: missing required field %q", "after")
	}
	if err := p.Repository.Validate(); err != nil {
		return fmt.Errorf("push payload: %w", err)
	}
	return nil
}

// Branch returns the branch name for refs/heads/ refs, or "" otherwise.
func (p *PushPayload) Branch() string {
	branch, ok := strings.CutPrefix(p.Ref, "refs/heads/")
	if !ok {
		return ""
	}
	return branch
}

// ParsePush decodes a push event body.
func ParsePush(body []byte) (*PushPayload, error) {
	var p PushPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode push payload")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "invalid push payload")
	}
	return &p, nil
}
