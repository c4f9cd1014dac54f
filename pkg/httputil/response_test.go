package httputil

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/matzehuels/gritea/pkg/errors"
)

type account struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

func (a *account) Validate() error {
	if a.ID == 0 {
		return fmt.Errorf("missing required field %q", "id")
	}
	return nil
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func response(status int, body string) (*http.Response, *trackingBody) {
	b := &trackingBody{Reader: strings.NewReader(body)}
	return &http.Response{StatusCode: status, Body: b}, b
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, stderrors.New("connection reset") }

func TestDecodeJSON(t *testing.T) {
	resp, body := response(http.StatusOK, `{"id": 7, "login": "octo"}`)

	got, err := DecodeJSON[account](resp, "get user failed")
	if err != nil {
		t.Fatalf("DecodeJSON() error: %v", err)
	}
	if got.ID != 7 || got.Login != "octo" {
		t.Errorf("DecodeJSON() = %+v", got)
	}
	if !body.closed {
		t.Error("DecodeJSON() did not close the body")
	}
}

func TestDecodeJSONSlice(t *testing.T) {
	resp, _ := response(http.StatusOK, `[{"id": 1}, {"id": 2}]`)

	got, err := DecodeJSON[[]account](resp, "list failed")
	if err != nil {
		t.Fatalf("DecodeJSON() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestDecodeJSONStatusError(t *testing.T) {
	resp, body := response(http.StatusNotFound, "not found")

	_, err := DecodeJSON[account](resp, "get repo failed")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeRemote) {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeRemote)
	}

	var se *errors.StatusError
	if !stderrors.As(err, &se) {
		t.Fatalf("error %T is not a StatusError", err)
	}
	if se.StatusCode != 404 || se.Body != "not found" || se.Label != "get repo failed" {
		t.Errorf("StatusError = %+v", se)
	}
	for _, want := range []string{"get repo failed", "404", "not found"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("message %q missing %q", err.Error(), want)
		}
	}
	if !body.closed {
		t.Error("body not closed on error")
	}
}

func TestDecodeJSONStatusErrorWithJSONBody(t *testing.T) {
	// A well-formed JSON error body is still a remote error, never decoded.
	resp, _ := response(http.StatusForbidden, `{"id": 1, "login": "x"}`)

	_, err := DecodeJSON[account](resp, "get user failed")
	if !errors.Is(err, errors.ErrCodeRemote) {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeRemote)
	}
}

func TestDecodeJSONDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"wrong type", `{"id": "seven"}`},
		{"missing required field", `{"login": "octo"}`},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := response(http.StatusOK, tt.body)
			_, err := DecodeJSON[account](resp, "get user failed")
			if !errors.Is(err, errors.ErrCodeDecode) {
				t.Errorf("code = %v, want %v (err: %v)", errors.GetCode(err), errors.ErrCodeDecode, err)
			}
		})
	}
}

func TestDecodeJSONBodyReadFailure(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(failingReader{})}

	_, err := DecodeJSON[account](resp, "get user failed")
	if !errors.Is(err, errors.ErrCodeTransport) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeTransport)
	}
}

func TestExpectSuccess(t *testing.T) {
	resp, body := response(http.StatusNoContent, "")
	if err := ExpectSuccess(resp, "delete hook failed"); err != nil {
		t.Fatalf("ExpectSuccess() error: %v", err)
	}
	if !body.closed {
		t.Error("body not closed")
	}

	resp, _ = response(http.StatusInternalServerError, "boom")
	err := ExpectSuccess(resp, "delete hook failed")
	if !errors.Is(err, errors.ErrCodeRemote) {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeRemote)
	}
	if !strings.Contains(err.Error(), "delete hook failed") || !strings.Contains(err.Error(), "500") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{301, false},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		if got := IsSuccess(tt.status); got != tt.want {
			t.Errorf("IsSuccess(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
