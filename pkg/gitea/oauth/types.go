package oauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TokenType is the scheme of an OAuth2 access token.
type TokenType string

const (
	TokenTypeBearer TokenType = "bearer"
	TokenTypeMac    TokenType = "mac"
)

// String returns the lowercase tag used in the Authorization header.
func (t TokenType) String() string {
	return strings.ToLower(string(t))
}

// UnmarshalJSON accepts the tag in any case and rejects unknown schemes.
func (t *TokenType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch tt := TokenType(strings.ToLower(s)); tt {
	case TokenTypeBearer, TokenTypeMac:
		*t = tt
		return nil
	default:
		return fmt.Errorf("unknown token type %q", s)
	}
}

// Grant types for [AccessTokenForm].
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// AccessTokenForm requests an access token from an authorization code or a
// refresh token.
type AccessTokenForm struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	Code         string `json:"code"`
	RefreshToken string `json:"refresh_token"`
}

// AccessToken is a successful token response.
// Expiry is not sent by the server; [ExchangeToken] derives it from ExpiresIn.
type AccessToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    TokenType `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// Validate checks the fields a usable token must carry.
func (t *AccessToken) Validate() error {
	if t.AccessToken == "" {
		return fmt.Errorf("missing required field %q", "access_token")
	}
	if t.TokenType == "" {
		return fmt.Errorf("missing required field %q", "token_type")
	}
	return nil
}

// Expired reports whether the token is past its expiry at now.
// Tokens without a known expiry never report expired.
func (t *AccessToken) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}
