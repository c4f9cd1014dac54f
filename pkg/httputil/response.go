package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/gritea/pkg/errors"
)

// validator is implemented by decoded values that enforce required fields.
type validator interface {
	Validate() error
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// DecodeJSON maps resp to a value of type T, closing the body.
//
// A non-success status yields an [errors.StatusError] carrying label, the
// status code and the raw body text; the body is not decoded. A success
// status whose body does not decode into T, or whose decoded value fails
// Validate, yields an ErrCodeDecode error.
func DecodeJSON[T any](resp *http.Response, label string) (T, error) {
	defer resp.Body.Close()

	var v T
	if err := checkStatus(resp, label); err != nil {
		return v, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, errors.Wrap(errors.ErrCodeDecode, err, "%s: decode response", label)
	}
	if val, ok := any(&v).(validator); ok {
		if err := val.Validate(); err != nil {
			return v, errors.Wrap(errors.ErrCodeDecode, err, "%s: invalid response", label)
		}
	}
	return v, nil
}

// ExpectSuccess checks resp for a success status and discards the body.
// Failures are reported exactly as in [DecodeJSON].
func ExpectSuccess(resp *http.Response, label string) error {
	defer resp.Body.Close()

	if err := checkStatus(resp, label); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response, label string) error {
	if IsSuccess(resp.StatusCode) {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransport, err, "%s: read error body", label)
	}
	return &errors.StatusError{
		Label:      label,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
