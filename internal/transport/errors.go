package transport

import (
	"fmt"
	"net/http"
)

// Response is what the provider answered. Data holds the decoded JSON
// body, or the body as a plain string when it is not JSON.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Data       any
	Body       []byte
}

// Error is returned by Poster implementations. Exactly one of the
// following holds: Response is set (the provider answered with a non-2xx
// status), RequestSent is true (no response arrived), or neither (the
// request never left).
type Error struct {
	Response    *Response
	RequestSent bool
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Response != nil:
		return fmt.Sprintf("request failed with status code %d", e.Response.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *Error) Unwrap() error { return e.Err }
