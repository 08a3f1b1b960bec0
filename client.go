package rbclient

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/gateway"
	"github.com/royalburger/client-go/internal/kv"
	"github.com/royalburger/client-go/internal/store"
	"github.com/royalburger/client-go/internal/validator"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the ordering SDK entry point. One Client per process is the
// intended usage; all cart and session state lives in its stores, and every
// operation re-derives guest-versus-authenticated from the credential store
// at call time.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	state      kv.Store
	creds      *store.Credentials
	guest      *store.GuestCart
	gw         *gateway.Gateway
	validator  *validator.Validator
	maxRetries int
}

// New constructs a Client for the given backend origin. Additional options
// can be provided via functional arguments.
//
// Without WithStateStore or WithStatePath, state persists to a JSON file
// under the user config directory; if that directory is unavailable the
// client degrades to in-memory state and logs a warning.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("rbclient: baseURL cannot be empty")
	}

	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 35 * time.Second},
		log:        zerolog.Nop(),
		maxRetries: -1, // gateway default unless WithMaxRetries is given
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.state == nil {
		c.state = defaultStateStore(c.log)
	}

	c.creds = store.NewCredentials(c.state, c.log)
	c.guest = store.NewGuestCart(c.state, c.log)
	c.gw = gateway.New(c.baseURL, c.http, c.creds, c.log)
	if c.maxRetries >= 0 {
		c.gw.SetMaxRetries(c.maxRetries)
	}
	c.validator = validator.New(c.gw, c.guest, c.log)
	return c, nil
}

// NewFromEnv constructs a Client from RB_-prefixed environment variables.
// Explicit options override the environment.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	base := []Option{WithHTTPTimeout(cfg.HTTPTimeout + 5*time.Second), WithMaxRetries(cfg.MaxRetries)}
	if cfg.StatePath != "" {
		base = append(base, WithStatePath(cfg.StatePath))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// defaultStateStore opens the file-backed store in the user config dir,
// falling back to memory when the filesystem is not available.
func defaultStateStore(log zerolog.Logger) kv.Store {
	dir, err := os.UserConfigDir()
	if err == nil {
		fs, ferr := kv.NewFileStore(filepath.Join(dir, "royalburger", "state.json"))
		if ferr == nil {
			return fs
		}
		err = ferr
	}
	log.Warn().Err(err).Msg("state file unavailable, using in-memory store")
	return kv.NewMemStore()
}
