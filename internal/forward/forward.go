// Package forward sends a best-effort copy of each install event to a
// secondary analytics endpoint.
package forward

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/oklog/ulid/v2"

	"github.com/quickinstall/installstats/internal/model"
)

// Header names for forwarded requests.
const (
	HeaderEventID = "X-Event-Id"
	userAgent     = "installstats-forwarder/1.0"
)

// ErrNoEndpoint is returned by NewHTTPForwarder when the endpoint is empty.
var ErrNoEndpoint = errors.New("forward endpoint not configured")

// Forwarder delivers an install event to the secondary sink.
type Forwarder interface {
	Forward(ctx context.Context, event model.InstallEvent) error
}

// StatusError is returned when the sink answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("secondary sink returned status %d", e.StatusCode)
}

// HTTPForwarder forwards events as query parameters of a GET request.
type HTTPForwarder struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPForwarder creates a forwarder for the given endpoint.
func NewHTTPForwarder(endpoint string, client *http.Client) (*HTTPForwarder, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid forward endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid forward endpoint scheme %q", u.Scheme)
	}

	if client == nil {
		client = NewHTTPClient(0)
	}

	return &HTTPForwarder{endpoint: u, client: client}, nil
}

// Forward sends event to the sink. The response body is discarded.
func (f *HTTPForwarder) Forward(ctx context.Context, event model.InstallEvent) error {
	u := *f.endpoint
	q := u.Query()
	q.Set("crate", event.Package)
	q.Set("version", event.Version)
	q.Set("target", event.Architecture)
	q.Set("agent", event.AgentOrDefault())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderEventID, ulid.Make().String())

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	return nil
}

// Noop discards events.
type Noop struct{}

// Forward does nothing.
func (Noop) Forward(ctx context.Context, event model.InstallEvent) error {
	return nil
}
