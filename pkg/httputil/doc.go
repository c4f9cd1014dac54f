// Package httputil provides the HTTP plumbing shared by the Gitea clients.
//
// # Overview
//
// This package provides the infrastructure used by every API call:
//
//   - [NewHTTPClient]: an *http.Client with a timeout and an instrumented transport
//   - [Transport]: a RoundTripper that reports round trips to observability hooks
//   - [DecodeJSON]: maps a response to a typed value or a typed error
//   - [ExpectSuccess]: maps a response with no interesting body to an error
//
// # Response Mapping
//
// Non-success statuses never reach the JSON decoder. The body text is read
// and returned inside an [errors.StatusError] together with the operation
// label and the status code:
//
//	user, err := httputil.DecodeJSON[gitea.User](resp, "get user failed")
//	if errors.Is(err, errors.ErrCodeRemote) {
//	    // 4xx/5xx from the server
//	}
//
// A success status whose body does not decode (or whose decoded value fails
// its Validate method) yields an ErrCodeDecode error instead.
//
// # Configuration
//
// Default settings:
//
//   - Timeout: 30 seconds ([DefaultTimeout])
//   - No retries and no caching; every call is a single round trip
//
// [errors.StatusError]: github.com/matzehuels/gritea/pkg/errors.StatusError
package httputil
