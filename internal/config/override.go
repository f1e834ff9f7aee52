package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// SetMode overrides the service mode.
func (r *RawConfig) SetMode(mode string) {
	r.Service.Mode = &mode
}

// SetServiceName overrides the service name.
func (r *RawConfig) SetServiceName(name string) {
	r.Service.Name = &name
}

// SetHost overrides the listen host.
func (r *RawConfig) SetHost(host string) {
	r.Server.Host = &host
}

// SetPort overrides the listen port.
func (r *RawConfig) SetPort(port int) {
	r.Server.Port = &port
}

// SetOTLPEndpoint points the OTLP exporters at endpoint, given either as
// host[:port] or as an http(s) URL. The scheme decides whether TLS is used.
func (r *RawConfig) SetOTLPEndpoint(endpoint string) error {
	if r.Export.OTEL == nil {
		r.Export.OTEL = &RawOTELExportConfig{}
	}
	o := r.Export.OTEL

	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("%w: otlp endpoint %q: %v", ErrInvalid, endpoint, err)
		}
		switch u.Scheme {
		case "http":
			insecure := true
			o.Insecure = &insecure
		case "https":
			insecure := false
			o.Insecure = &insecure
		default:
			return fmt.Errorf("%w: otlp endpoint scheme %q (must be http or https)", ErrInvalid, u.Scheme)
		}
		o.Host = u.Hostname()
		o.Port = 0
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%w: otlp endpoint port %q", ErrInvalid, p)
			}
			o.Port = port
		}
		return nil
	}

	host, p, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		o.Host = endpoint
		o.Port = 0
		return nil
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Errorf("%w: otlp endpoint port %q", ErrInvalid, p)
	}
	o.Host = host
	o.Port = port
	return nil
}
