// Package monitor answers one question about a service endpoint:
// is it currently answering?
package monitor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/servefab/servefab/pkg/domain"
	xe "github.com/servefab/servefab/pkg/errors"
)

const DefaultTimeout = 5 * time.Second

// Monitor checks the health of a service endpoint.
//
// # Returns
//
// - domain.ServiceState: Running when the endpoint answers healthily,
// Inactive when it does not answer, Errored when it answers unhealthily.
//
// - string: a message describing the observation.
//
// - error: the check itself could not be performed (misconfiguration).
// Not answering is an observation, not an error.
type Monitor interface {
	Check(ctx context.Context, ep domain.ServiceEndpoint) (domain.ServiceState, string, error)
}

// ForSpec builds the Monitor selected by an endpoint's MonitorSpec.
// Nil when the spec selects no monitoring.
func ForSpec(spec domain.MonitorSpec) Monitor {
	switch spec.Kind {
	case domain.MonitorHTTP:
		return &HTTPChecker{
			HealthyStatus: spec.HealthyStatus,
			Timeout:       spec.Timeout,
		}
	case domain.MonitorTCP:
		return &TCPChecker{Timeout: spec.Timeout}
	default:
		return nil
	}
}

// HTTPChecker probes the endpoint's health URL with GET.
type HTTPChecker struct {
	// HTTP client to probe with. http.DefaultClient when nil.
	Client *http.Client

	// status code treated as healthy. Zero means any 2xx.
	HealthyStatus int

	// per-probe timeout. DefaultTimeout when zero.
	Timeout time.Duration
}

var _ Monitor = &HTTPChecker{}

func (c *HTTPChecker) Check(
	ctx context.Context, ep domain.ServiceEndpoint,
) (domain.ServiceState, string, error) {
	url := ep.HealthURL()
	if url == "" {
		return domain.Errored, "", xe.New("endpoint has no HTTP health URL")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Errored, "", xe.Wrap(err)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		// not answering at all
		return domain.Inactive, fmt.Sprintf("health check at %s: %v", url, err), nil
	}
	defer resp.Body.Close()

	if c.healthy(resp.StatusCode) {
		return domain.Running, fmt.Sprintf("health check at %s: HTTP %d", url, resp.StatusCode), nil
	}
	return domain.Errored, fmt.Sprintf(
		"health check at %s: unhealthy HTTP status %d", url, resp.StatusCode,
	), nil
}

func (c *HTTPChecker) healthy(status int) bool {
	if c.HealthyStatus != 0 {
		return status == c.HealthyStatus
	}
	return 200 <= status && status < 300
}

// TCPChecker probes the endpoint by opening (and closing) a connection.
type TCPChecker struct {
	// per-probe timeout. DefaultTimeout when zero.
	Timeout time.Duration
}

var _ Monitor = &TCPChecker{}

func (c *TCPChecker) Check(
	ctx context.Context, ep domain.ServiceEndpoint,
) (domain.ServiceState, string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr := fmt.Sprintf("%s:%d", ep.Host, ep.Port)
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return domain.Inactive, fmt.Sprintf("tcp check at %s: %v", addr, err), nil
	}
	conn.Close()
	return domain.Running, fmt.Sprintf("tcp check at %s: connected", addr), nil
}
