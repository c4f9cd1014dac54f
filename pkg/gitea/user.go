package gitea

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// User represents a Gitea user account.
type User struct {
	ID                int64     `json:"id"`
	Login             string    `json:"login"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	AvatarURL         string    `json:"avatar_url"`
	Language          string    `json:"language"`
	IsAdmin           bool      `json:"is_admin"`
	LastLogin         time.Time `json:"last_login"`
	Created           time.Time `json:"created"`
	Restricted        bool      `json:"restricted"`
	Active            bool      `json:"active"`
	ProhibitLogin     bool      `json:"prohibit_login"`
	Location          string    `json:"location"`
	Website           string    `json:"website"`
	Description       string    `json:"description"`
	Visibility        string    `json:"visibility"`
	FollowersCount    int64     `json:"followers_count"`
	FollowingCount    int64     `json:"following_count"`
	StarredReposCount int64     `json:"starred_repos_count"`
}

// Validate checks the fields every user payload carries.
func (u *User) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("user: missing required field %q", "id")
	}
	if u.Login == "" {
		return fmt.Errorf("user: missing required field %q", "login")
	}
	return nil
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	u, err := call[User](ctx, c, http.MethodGet, "user", nil, "get user failed")
	if err != nil {
		return nil, err
	}
	return &u, nil
}
