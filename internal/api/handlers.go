package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) slow(c *gin.Context) {
	err := a.run(c, RouteSlow, func(ctx context.Context, _ trace.Span) (string, error) {
		if err := sleep(ctx, a.slowDelay()); err != nil {
			return "", err
		}
		c.JSON(http.StatusOK, gin.H{"message": "This endpoint is slow"})
		return "slow endpoint", nil
	})
	if err != nil {
		a.fail(c, err)
	}
}

// slowDelay draws a delay uniformly from [Min, Max).
func (a *API) slowDelay() time.Duration {
	lo, hi := a.endpoints.Slow.Min, a.endpoints.Slow.Max
	return lo + time.Duration(a.randFloat()*float64(hi-lo))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *API) simulatedError(c *gin.Context) {
	err := a.run(c, RouteError, func(ctx context.Context, _ trace.Span) (string, error) {
		a.logger.ErrorContext(ctx, "error endpoint")
		return "error endpoint", ErrSimulated
	})
	a.fail(c, err)
}

type computeQuery struct {
	N *int64 `form:"n"`
}

var errEmptyValue = errors.New("empty value")

func (a *API) compute(c *gin.Context) {
	// gin binds "n=" as 0
	if v, ok := c.GetQuery("n"); ok && strings.TrimSpace(v) == "" {
		a.fail(c, &InputError{Field: "n", Err: errEmptyValue})
		return
	}

	var q computeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		a.fail(c, &InputError{Field: "n", Err: err})
		return
	}
	n := int64(a.endpoints.Compute.DefaultN)
	if q.N != nil {
		n = *q.N
	}

	err := a.run(c, RouteCompute, func(ctx context.Context, span trace.Span) (string, error) {
		result := SumOfSquares(n)

		resultAttr := attribute.String("result", result.String())
		if result.IsInt64() {
			resultAttr = attribute.Int64("result", result.Int64())
		}
		span.SetAttributes(attribute.Int64("parameter.n", n), resultAttr)
		span.AddEvent("Completed computation")

		c.JSON(http.StatusOK, gin.H{"result": result})
		return "result: " + result.String(), nil
	})
	if err != nil {
		a.fail(c, err)
	}
}

func (a *API) serverRequest(c *gin.Context) {
	err := a.run(c, RouteServerRequest, func(ctx context.Context, _ trace.Span) (string, error) {
		resp, err := readEcho(c)
		if err != nil {
			return "", err
		}
		c.JSON(http.StatusOK, resp)
		return "The server requests has been processed successfully", nil
	})
	if err != nil {
		a.fail(c, err)
	}
}
