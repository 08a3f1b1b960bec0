package rbclient

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/kv"
)

// Option configures a Client during construction in New. Options must be
// deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// This is a coarse safety net around a whole HTTP exchange (connection, TLS
// handshake, reading the response). Per-attempt deadlines are governed by
// the request options instead, so keep this above the per-attempt timeout.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client entirely. Useful for
// custom transports and proxies.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		if h == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = h
		return nil
	}
}

// WithLogger sets the zerolog logger used across the SDK. The default is a
// no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithStateStore injects the key-value store backing credentials and the
// guest cart snapshot. Tests typically pass kv.NewMemStore() here via
// WithInMemoryState.
func WithStateStore(s kv.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("state store must not be nil")
		}
		c.state = s
		return nil
	}
}

// WithInMemoryState keeps all state in memory: nothing survives the process.
func WithInMemoryState() Option {
	return func(c *Client) error {
		c.state = kv.NewMemStore()
		return nil
	}
}

// WithStatePath persists state to the given JSON file instead of the user
// config directory default.
func WithStatePath(path string) Option {
	return func(c *Client) error {
		fs, err := kv.NewFileStore(path)
		if err != nil {
			return err
		}
		c.state = fs
		return nil
	}
}

// WithMaxRetries sets the default retry budget for requests. Zero disables
// retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("max retries must be >= 0")
		}
		c.maxRetries = n
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// dumped to the log when enabled is true.
//
// Do not enable this option in production environments: dumps include
// headers and bodies, which may carry tokens and user data.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}
