package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated means no bearer credential is available for the
	// session. Callers should send the user to the login flow instead of
	// attempting (or retrying) the call.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNetwork wraps transport-level failures ("check your connection").
	ErrNetwork = errors.New("network error")
)

// RemoteError is a non-2xx reply from an external service. Message carries
// the service-provided error text when the body had one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote service returned status %d", e.StatusCode)
}

// checkResponse turns a non-2xx response into a RemoteError, pulling the
// message out of the conventional {"error": "..."} payload when present.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &RemoteError{StatusCode: resp.StatusCode, Message: payload.Error}
}
