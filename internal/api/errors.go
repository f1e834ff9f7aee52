package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrSimulated is the failure produced on purpose by /error.
var ErrSimulated = errors.New("simulated error")

const internalErrorMessage = "Internal Server Error"

// Client Closed Request, as logged by nginx.
const statusClientClosedRequest = 499

// InputError reports a request that cannot be processed as sent.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// fail translates a route error into its response. Server-side failures are
// attached to the gin context so otelgin records them on the server span.
func (a *API) fail(c *gin.Context, err error) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody(inputErr.Error()))

	case errors.Is(err, context.Canceled):
		_ = c.Error(err)
		c.AbortWithStatus(statusClientClosedRequest)

	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(internalErrorMessage))
	}
}
