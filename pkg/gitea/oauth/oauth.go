package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/gritea/pkg/errors"
	"github.com/matzehuels/gritea/pkg/httputil"
)

const (
	authorizePath   = "login/oauth/authorize"
	accessTokenPath = "login/oauth/access_token"
)

// now is replaced in tests.
var now = time.Now

// AuthorizationURL returns the authorize endpoint under base with the
// client_id, redirect_uri, response_type and state query parameters set.
func AuthorizationURL(base, clientID, redirectURI, responseType, state string) (*url.URL, error) {
	u, err := join(base, authorizePath)
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"response_type": {responseType},
		"state":         {state},
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// ExchangeToken posts form as JSON to the access token endpoint under base.
// A nil hc uses a client from [httputil.NewHTTPClient].
func ExchangeToken(ctx context.Context, base string, form AccessTokenForm, hc *http.Client) (*AccessToken, error) {
	u, err := join(base, accessTokenPath)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = httputil.NewHTTPClient(httputil.DefaultTimeout)
	}

	payload, err := json.Marshal(form)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode access token form")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeURLParse, err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	issued := now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "send %s %s", req.Method, u.Redacted())
	}

	tok, err := httputil.DecodeJSON[AccessToken](resp, "get access_token failed")
	if err != nil {
		return nil, err
	}
	if tok.ExpiresIn > 0 {
		tok.Expiry = issued.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return &tok, nil
}

func join(base, rel string) (*url.URL, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeURLParse, err, "parse base url %q", base)
	}
	if !b.IsAbs() || b.Host == "" {
		return nil, errors.New(errors.ErrCodeURLParse, "base url %q is not absolute", base)
	}
	return b.ResolveReference(&url.URL{Path: rel}), nil
}
