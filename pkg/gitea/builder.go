package gitea

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/gitea/oauth"
	"github.com/matzehuels/gritea/pkg/httputil"
)

// apiPrefix is appended to scheme://host to form the base URL.
const apiPrefix = "/api/v1/"

// Builder assembles a [Client]. Methods return the builder for chaining.
type Builder struct {
	scheme string
	host   string
	cred   Credential
	http   *http.Client
}

// NewBuilder starts a builder for the server at host (e.g. "gitea.example.com"
// or "localhost:3000"). The scheme defaults to https.
func NewBuilder(host string) *Builder {
	return &Builder{
		scheme: "https",
		host:   host,
		cred:   NoCredential(),
	}
}

// Insecure switches the scheme to plain http.
func (b *Builder) Insecure() *Builder {
	b.scheme = "http"
	return b
}

// Scheme sets the URL scheme.
func (b *Builder) Scheme(scheme string) *Builder {
	b.scheme = scheme
	return b
}

// Token selects a static access token credential.
func (b *Builder) Token(token string) *Builder {
	b.cred = TokenCredential(token)
	return b
}

// OAuth2Token selects an OAuth2 access token credential.
func (b *Builder) OAuth2Token(tok oauth.AccessToken) *Builder {
	b.cred = OAuth2Credential(tok)
	return b
}

// Credential selects any credential, including [NoCredential].
func (b *Builder) Credential(c Credential) *Builder {
	b.cred = c
	return b
}

// HTTPClient reuses an existing HTTP client, sharing its connection pool
// with other clients built from it.
func (b *Builder) HTTPClient(hc *http.Client) *Builder {
	b.http = hc
	return b
}

// Build composes the base URL <scheme>://<host>/api/v1/ and returns a new
// Client. Calling Build again yields an independent client.
func (b *Builder) Build() (*Client, error) {
	raw := fmt.Sprintf("%s://%s%s", b.scheme, b.host, apiPrefix)
	base, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeURLParse, err, "parse base url %q", raw)
	}
	if !base.IsAbs() || base.Host == "" || base.RawQuery != "" || base.Fragment != "" || !strings.HasSuffix(base.Path, apiPrefix) {
		return nil, errors.New(errors.ErrCodeURLParse, "invalid base url %q", raw)
	}

	hc := b.http
	if hc == nil {
		hc = httputil.NewHTTPClient(httputil.DefaultTimeout)
	}

	return &Client{
		ep:   endpoint{baseURL: base, cred: b.cred},
		http: hc,
	}, nil
}
