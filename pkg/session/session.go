// Package session persists Gitea credentials and OAuth state tokens.
//
// A [Session] records which server a user authenticated against and with
// which credential (a personal access token or an OAuth2 token). Sessions
// are keyed by host, so one user may hold logins for several servers.
//
// Backends:
//   - [FileStore]: JSON files under ~/.config/gritea/sessions/ for the CLI
//   - [RedisStore]: Redis-backed sessions and state for shared deployments
//   - [MemoryStateStore]: in-process OAuth state for a single callback server
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/gritea/sessions/
//	if err != nil {
//	    return err
//	}
//	sess := session.New("git.example.com", "https", gitea.TokenCredential(tok), "alice", 0)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err = store.Get(ctx, session.Key("git.example.com"))
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // not logged in, or the session expired
//	}
//	client, err := sess.Builder().Build()
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gritea/pkg/gitea"
	"github.com/matzehuels/gritea/pkg/gitea/oauth"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an OAuth state token is invalid or already used.
	ErrInvalidState = errors.New("invalid or expired state token")
)

// Session stores the credential used for one Gitea server.
type Session struct {
	ID        string             `json:"id"`
	Host      string             `json:"host"`
	Scheme    string             `json:"scheme"`
	Token     string             `json:"token,omitempty"`
	OAuth2    *oauth.AccessToken `json:"oauth2,omitempty"`
	Login     string             `json:"login,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at,omitzero"`
}

// IsExpired reports whether the session has passed its expiry. Sessions
// without an expiry never expire.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Credential returns the stored credential, preferring OAuth2 over a
// static token.
func (s *Session) Credential() gitea.Credential {
	switch {
	case s.OAuth2 != nil:
		return gitea.OAuth2Credential(*s.OAuth2)
	case s.Token != "":
		return gitea.TokenCredential(s.Token)
	default:
		return gitea.NoCredential()
	}
}

// Builder returns a client builder for the session's server and credential.
func (s *Session) Builder() *gitea.Builder {
	b := gitea.NewBuilder(s.Host).Credential(s.Credential())
	if s.Scheme != "" {
		b.Scheme(s.Scheme)
	}
	return b
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// StateStore manages OAuth state tokens for CSRF protection.
// State tokens are short-lived (typically 10 minutes) and single-use.
type StateStore interface {
	// Generate creates a new state token and stores it with the given TTL.
	Generate(ctx context.Context, ttl time.Duration) (string, error)

	// Validate checks if a state token is valid and removes it (single-use).
	Validate(ctx context.Context, state string) (bool, error)

	// Cleanup removes expired state tokens (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// DefaultStateTTL is the default OAuth state token duration.
const DefaultStateTTL = 10 * time.Minute

// GenerateState creates a random state token.
func GenerateState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var keyReplacer = strings.NewReplacer("/", "_", ":", "_", "\\", "_")

// Key returns the session ID used for host. It is safe to use as a file name.
func Key(host string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSuffix(host, "/")))
}

// New creates a session for host. ttl of zero means the session does not
// expire; OAuth2 credentials with an expiry bound the session to it.
func New(host, scheme string, cred gitea.Credential, login string, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        Key(host),
		Host:      host,
		Scheme:    scheme,
		Login:     login,
		CreatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	switch cred.Kind() {
	case gitea.CredentialToken:
		s.Token, _ = cred.Token()
	case gitea.CredentialOAuth2:
		tok, _ := cred.OAuth2Token()
		s.OAuth2 = &tok
		if !tok.Expiry.IsZero() && (s.ExpiresAt.IsZero() || tok.Expiry.Before(s.ExpiresAt)) {
			s.ExpiresAt = tok.Expiry
		}
	}
	return s
}
