package synapse

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned when the remote service answers with a
// non-success status. Body holds the response text for diagnostics.
type TransportError struct {
	Operation  string `json:"operation"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Body       string `json:"body,omitempty"`
}

// Error implements the error interface
func (e *TransportError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	msg := fmt.Sprintf("synapse: %s %s %s: %s", e.Operation, e.Method, e.URL, status)
	if e.Body != "" {
		msg += ": " + truncate(e.Body, 512)
	}
	return msg
}

// StatusCode extracts the HTTP status from a TransportError anywhere in err's chain
func StatusCode(err error) (int, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode, true
	}
	return 0, false
}

// IsStatus reports whether err is a TransportError with the given status code
func IsStatus(err error, code int) bool {
	got, ok := StatusCode(err)
	return ok && got == code
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
