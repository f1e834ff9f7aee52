package telemetry

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// createResource builds the resource shared by all three signal pipelines.
// Service name and version take precedence over identically named extras.
func createResource(ctx context.Context, name, version string, extra map[string]string) (*resource.Resource, error) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(extra)+2)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, extra[k]))
	}
	attrs = append(attrs,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	)

	res, err := resource.New(
		ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}
