package transfer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransferUnknown is returned when the asset service has no record of
	// the request
	ErrTransferUnknown = errors.New("transfer unknown to the asset service")

	// ErrMalformedResponse is returned when the asset service answers with a
	// body that cannot be decoded
	ErrMalformedResponse = errors.New("malformed asset service response")
)

// statusError is a non-2xx answer of the asset service
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("asset service returned %d: %s", e.code, e.body)
}

// isRetryable reports whether another attempt of the same call can succeed.
// Client errors are final, server errors and transport errors are not.
func isRetryable(err error) bool {
	if errors.Is(err, ErrTransferUnknown) || errors.Is(err, ErrMalformedResponse) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests
	}

	return true
}
