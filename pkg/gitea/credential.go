package gitea

import (
	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea/oauth"
)

// CredentialKind identifies the active variant of a [Credential].
type CredentialKind int

const (
	CredentialNone CredentialKind = iota
	CredentialToken
	CredentialOAuth2
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialToken:
		return "token"
	case CredentialOAuth2:
		return "oauth2"
	default:
		return "none"
	}
}

// Credential is the authentication material attached to every request.
// Exactly one variant is active; the zero value is [NoCredential].
type Credential struct {
	kind   CredentialKind
	token  string
	oauth2 oauth.AccessToken
}

// NoCredential returns the empty credential. Requests made with it fail.
func NoCredential() Credential {
	return Credential{kind: CredentialNone}
}

// TokenCredential returns a static access token credential.
func TokenCredential(token string) Credential {
	return Credential{kind: CredentialToken, token: token}
}

// OAuth2Credential returns a credential for an OAuth2 access token.
func OAuth2Credential(tok oauth.AccessToken) Credential {
	return Credential{kind: CredentialOAuth2, oauth2: tok}
}

// Kind returns the active variant.
func (c Credential) Kind() CredentialKind { return c.kind }

// Token returns the static token and whether that variant is active.
func (c Credential) Token() (string, bool) {
	return c.token, c.kind == CredentialToken
}

// OAuth2Token returns the OAuth2 token and whether that variant is active.
func (c Credential) OAuth2Token() (oauth.AccessToken, bool) {
	return c.oauth2, c.kind == CredentialOAuth2
}

// Header renders the HTTP header that authenticates a request. An OAuth2
// token without a type is sent as a bearer token.
func (c Credential) Header() (name, value string, err error) {
	switch c.kind {
	case CredentialToken:
		return "Authorization", "token " + c.token, nil
	case CredentialOAuth2:
		if c.oauth2.AccessToken == "" {
			return "", "", errors.New(errors.ErrCodeUnauthorized, "oauth2 access token not set")
		}
		scheme := c.oauth2.TokenType
		if scheme == "" {
			scheme = oauth.TokenTypeBearer
		}
		return "Authorization", scheme.String() + " " + c.oauth2.AccessToken, nil
	default:
		return "", "", errors.New(errors.ErrCodeUnauthorized, "client token not set")
	}
}
