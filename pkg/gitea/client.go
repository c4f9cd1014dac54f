package gitea

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/httputil"
)

// endpoint is the configuration every request is derived from.
type endpoint struct {
	baseURL *url.URL
	cred    Credential
}

// Client is a Gitea API client. It is safe for concurrent use; build one
// with [NewBuilder].
type Client struct {
	mu   sync.RWMutex
	ep   endpoint
	http *http.Client
}

// snapshot returns a copy of the endpoint taken under the read lock.
func (c *Client) snapshot() endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u := *c.ep.baseURL
	return endpoint{baseURL: &u, cred: c.ep.cred}
}

// SetCredential atomically replaces the credential used by subsequent requests.
func (c *Client) SetCredential(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ep.cred = cred
}

// Credential returns the credential currently in use.
func (c *Client) Credential() Credential {
	return c.snapshot().cred
}

// BaseURL returns a copy of the base URL (<scheme>://<host>/api/v1/).
func (c *Client) BaseURL() *url.URL {
	return c.snapshot().baseURL
}

// HTTPClient returns the underlying HTTP client, e.g. to share it with
// [oauth.ExchangeToken].
//
// [oauth.ExchangeToken]: github.com/matzehuels/gritea/pkg/gitea/oauth.ExchangeToken
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// URL resolves rel against the base URL. rel must not start with "/".
func (c *Client) URL(rel string) (*url.URL, error) {
	return resolve(c.snapshot().baseURL, rel)
}

func resolve(base *url.URL, rel string) (*url.URL, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeURLParse, err, "join %q onto %s", rel, base)
	}
	return base.ResolveReference(ref), nil
}

// newRequest prepares an authenticated request for rel. A non-nil body is
// sent as JSON.
func (c *Client) newRequest(ctx context.Context, method, rel string, body any) (*http.Request, error) {
	ep := c.snapshot()

	u, err := resolve(ep.baseURL, rel)
	if err != nil {
		return nil, err
	}
	name, value, err := ep.cred.Header()
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request body")
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "create request")
	}
	req.Header.Set(name, value)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "send request")
	}
	return resp, nil
}

// call performs one round trip and decodes the response into T.
func call[T any](ctx context.Context, c *Client, method, rel string, body any, label string) (T, error) {
	var zero T
	req, err := c.newRequest(ctx, method, rel, body)
	if err != nil {
		return zero, err
	}
	resp, err := c.do(req)
	if err != nil {
		return zero, err
	}
	return httputil.DecodeJSON[T](resp, label)
}

// send performs one round trip and only checks the status.
func (c *Client) send(ctx context.Context, method, rel string, body any, label string) error {
	req, err := c.newRequest(ctx, method, rel, body)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	return httputil.ExpectSuccess(resp, label)
}

// relPath joins percent-encoded segments into a path relative to the base URL.
func relPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// withQuery appends q to rel.
func withQuery(rel string, q url.Values) string {
	if len(q) == 0 {
		return rel
	}
	return rel + "?" + q.Encode()
}
