package httpclient

import "fmt"

// UnexpectedStatusError reports a non-2xx HTTP response. Message carries
// the server's error message when the body had one.
type UnexpectedStatusError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected response %d for %s: %s", e.StatusCode, e.Path, e.Message)
	}
	return fmt.Sprintf("unexpected response %d for %s", e.StatusCode, e.Path)
}
