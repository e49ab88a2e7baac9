package core

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var ErrLoginFailed = errors.New("failed to log in to gradescope")

// ErrTokenNotFound means the fetched document no longer carries the
// expected token-bearing element, usually markup drift on the remote end.
var ErrTokenNotFound = errors.New("authenticity token not found")

// StatusError is any response outside the accepted success range,
// annotated with what the caller was trying to do.
type StatusError struct {
	Context    string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Context, e.Status)
}

// CheckResponse validates a response immediately after the call that
// produced it. 2xx after redirects is success, everything else fails with
// the given context string. There are no retries at this layer.
func CheckResponse(res *resty.Response, context string) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		Context:    context,
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
	}
}
