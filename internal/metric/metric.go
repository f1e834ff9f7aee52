package metric

import "fmt"

// Descriptor holds the metadata an instrument is created from.
type Descriptor struct {
	Name        string
	Description string
	Unit        string
}

// RouteDescriptors returns the request counter and duration histogram
// descriptors of a route.
func RouteDescriptors(route string) (requests, duration Descriptor) {
	requests = Descriptor{
		Name:        route + "_requests_total",
		Description: fmt.Sprintf("Total number of requests to the %s endpoint", route),
		Unit:        "1",
	}
	duration = Descriptor{
		Name:        route + "_request_duration_seconds",
		Description: fmt.Sprintf("Duration of %s endpoint requests", route),
		Unit:        "s",
	}
	return requests, duration
}
