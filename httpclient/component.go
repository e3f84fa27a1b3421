package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/restclient/component"
	"github.com/kbukum/restclient/resilience"
)

// Component wraps a Client with lifecycle management for use with a
// component.Registry. The client is created in Start and closed in Stop.
type Component struct {
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new client component.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	name := c.config.Name
	if name == "" {
		name = defaultName
	}
	return name
}

// Start creates the client.
func (c *Component) Start(_ context.Context) error {
	client, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Stop drains in-flight requests and closes the client.
func (c *Component) Stop(ctx context.Context) error {
	if c.client != nil {
		return c.client.Close(ctx)
	}
	return nil
}

// Health reports unhealthy before Start or after Stop, degraded while the
// circuit is not closed.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.client == nil || c.client.IsClosed():
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	default:
		if cb, ok := c.client.Guard().(*resilience.CircuitBreaker); ok {
			if state := cb.State(); state != resilience.StateClosed {
				h.Status = component.StatusDegraded
				h.Message = fmt.Sprintf("circuit %s", state)
			}
		}
	}
	return h
}

// Describe returns component description for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "http-client",
		Details: c.config.BaseURL,
	}
}

// Client returns the underlying client. Must be called after Start().
func (c *Component) Client() *Client {
	return c.client
}
