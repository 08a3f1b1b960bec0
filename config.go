package rbclient

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups the environment-driven tunables. Values are taken from
// variables with the prefix "RB_". Example: RB_BASE_URL=https://api.example
// RB_MAX_RETRIES=2 .
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" required:"true"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`

	// StatePath overrides where credential and guest-cart state is
	// persisted. Empty selects the user config directory.
	StatePath string `envconfig:"STATE_PATH"`
}

// LoadConfig populates Config from environment variables (prefix RB_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("RB", &c)
}
