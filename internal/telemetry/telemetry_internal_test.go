package telemetry

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestAbort_ClosesLogFileBeforeProvidersExist(t *testing.T) {
	c := &closeCounter{}
	tel := &Telemetry{closers: []io.Closer{c}}

	tel.abort(context.Background())

	assert.Equal(t, 1, c.closed)
	assert.Empty(t, tel.closers)
}

func TestAbort_ShutsDownPartialProviders(t *testing.T) {
	spans := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans))
	lp := sdklog.NewLoggerProvider()
	c := &closeCounter{}

	tel := &Telemetry{
		TracerProvider: tp,
		LoggerProvider: lp,
		closers:        []io.Closer{c},
	}
	tel.abort(context.Background())

	assert.Equal(t, 1, c.closed)

	_, span := tp.Tracer("test").Start(context.Background(), "after abort")
	span.End()
	assert.Empty(t, spans.GetSpans())
}
