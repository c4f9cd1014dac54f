package gitea

import (
	"regexp"
	"strings"

	"github.com/matzehuels/gritea/pkg/errors"
)

var (
	// Gitea user and org names: 1-40 alphanumeric, dash, underscore or dot,
	// starting and ending with an alphanumeric character.
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9._-]{0,38}[a-zA-Z0-9])?$`)
	// Gitea repo names: 1-100 alphanumeric, dash, underscore or dot.
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a Gitea user or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidInput, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid owner %q: must be 1-40 alphanumeric characters, dashes, underscores or dots", owner)
	}
	return nil
}

// ValidateRepo validates a Gitea repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New(errors.ErrCodeInvalidInput, "repo is required")
	}
	if repo == "." || repo == ".." || !validRepo.MatchString(repo) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid repo %q: must be 1-100 alphanumeric characters, dashes, underscores or dots", repo)
	}
	return nil
}

// ParseRepoRef splits "owner/repo" and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(ref, "/")
	if !ok {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "invalid repository %q: use owner/repo", ref)
	}
	if err := ValidateOwner(owner); err != nil {
		return "", "", err
	}
	if err := ValidateRepo(repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
