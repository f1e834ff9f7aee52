package metric

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// ErrDuplicateRoute is returned when a route is registered twice.
var ErrDuplicateRoute = errors.New("duplicate route")

// Instruments are the per-route request counter and duration histogram.
type Instruments struct {
	Requests otelmetric.Int64Counter
	Duration otelmetric.Float64Histogram
}

// Registry holds the instruments of every instrumented route. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	routes      map[string]*Instruments
	descriptors []Descriptor
}

// New creates the counter and histogram of each route on meter.
func New(meter otelmetric.Meter, routes ...string) (*Registry, error) {
	r := &Registry{
		routes: make(map[string]*Instruments, len(routes)),
	}

	for _, route := range routes {
		if _, exists := r.routes[route]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoute, route)
		}

		reqDesc, durDesc := RouteDescriptors(route)

		requests, err := meter.Int64Counter(
			reqDesc.Name,
			otelmetric.WithDescription(reqDesc.Description),
			otelmetric.WithUnit(reqDesc.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %q: %w", reqDesc.Name, err)
		}

		duration, err := meter.Float64Histogram(
			durDesc.Name,
			otelmetric.WithDescription(durDesc.Description),
			otelmetric.WithUnit(durDesc.Unit),
			otelmetric.WithExplicitBucketBoundaries(prometheus.DefBuckets...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create histogram %q: %w", durDesc.Name, err)
		}

		r.routes[route] = &Instruments{Requests: requests, Duration: duration}
		r.descriptors = append(r.descriptors, reqDesc, durDesc)

		slog.Debug("registered route metrics",
			"route", route,
			"counter", reqDesc.Name,
			"histogram", durDesc.Name)
	}

	return r, nil
}

// Route returns the instruments of route.
func (r *Registry) Route(route string) (*Instruments, bool) {
	inst, ok := r.routes[route]
	return inst, ok
}

// Metrics returns the descriptors of all registered instruments, in
// registration order.
func (r *Registry) Metrics() []Descriptor {
	return r.descriptors
}

// Names returns the metric names of all registered instruments.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	return names
}
