package fatsecret

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envPrefix is prepended to every Settings field's env tag.
const envPrefix = "FATSECRET_"

// Settings holds process-wide configuration. Values come from FATSECRET_*
// environment variables; a local .env file is honored when present but never
// overrides the explicit environment.
type Settings struct {
	// OAuth1 consumer credentials issued by the FatSecret platform.
	ConsumerKey    string `env:"CONSUMER_KEY"`
	ConsumerSecret string `env:"CONSUMER_SECRET"`

	// APIBaseURL is the JSON REST endpoint all API methods are posted to.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://platform.fatsecret.com/rest/server.api"`

	// Three-legged OAuth 1.0a handshake endpoints.
	RequestTokenURL string `env:"OAUTH_REQUEST_TOKEN_URL" envDefault:"https://authentication.fatsecret.com/oauth/request_token"`
	AuthorizeURL    string `env:"OAUTH_AUTHORIZE_URL" envDefault:"https://authentication.fatsecret.com/oauth/authorize"`
	AccessTokenURL  string `env:"OAUTH_ACCESS_TOKEN_URL" envDefault:"https://authentication.fatsecret.com/oauth/access_token"`

	// TokenStoragePath locates the token file; "~" expands to the home dir.
	TokenStoragePath string `env:"TOKEN_STORAGE_PATH" envDefault:"~/.config/fatsecret-mcp/tokens.json"`
}

// LoadSettings reads configuration from the environment and a .env file.
func LoadSettings() (*Settings, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that required credentials are present.
func (s *Settings) Validate() error {
	if s.ConsumerKey == "" || s.ConsumerSecret == "" {
		return fmt.Errorf("missing credentials: set FATSECRET_CONSUMER_KEY and FATSECRET_CONSUMER_SECRET")
	}
	return nil
}

// IsCloudDeployment reports whether the process runs on a managed platform
// where a local token file would not survive restarts. Railway sets
// RAILWAY_ENVIRONMENT, Render sets RENDER.
func IsCloudDeployment() bool {
	return os.Getenv("RAILWAY_ENVIRONMENT") != "" || os.Getenv("RENDER") != ""
}
