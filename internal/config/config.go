package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultCommentsURL is the comment feed of the designated auth project.
const DefaultCommentsURL = "https://api.scratch.mit.edu/users/furrycat-auth/projects/534514916/comments"

// Config holds the full service configuration. Values come from the
// environment, optionally seeded from a YAML file.
type Config struct {
	HTTPAddr    string `yaml:"http_addr" env:"MAGNIFIER_HTTP_ADDR" env-default:":8080"`
	DatabaseDSN string `yaml:"database_dsn" env:"MAGNIFIER_DATABASE_DSN" env-default:"file:magnifier.db?cache=shared"`

	SigningKey           string   `yaml:"signing_key" env:"MAGNIFIER_SIGNING_KEY"`
	TokenIssuer          string   `yaml:"token_issuer" env:"MAGNIFIER_TOKEN_ISSUER" env-default:"magnifier"`
	TokenAudience        []string `yaml:"token_audience" env:"MAGNIFIER_TOKEN_AUDIENCE" env-separator:","`
	TokenExpirationHours int      `yaml:"token_expiration_hours" env:"MAGNIFIER_TOKEN_EXPIRATION_HOURS" env-default:"72"`

	CommentsURL  string        `yaml:"comments_url" env:"MAGNIFIER_COMMENTS_URL" env-default:"https://api.scratch.mit.edu/users/furrycat-auth/projects/534514916/comments"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"MAGNIFIER_FETCH_TIMEOUT" env-default:"10s"`

	CodeLength         int      `yaml:"code_length" env:"MAGNIFIER_CODE_LENGTH" env-default:"36"`
	PrivilegedUsername string   `yaml:"privileged_username" env:"MAGNIFIER_PRIVILEGED_USERNAME" env-default:"potatophant"`
	BannedUsernames    []string `yaml:"banned_usernames" env:"MAGNIFIER_BANNED_USERNAMES" env-separator:","`
}

// Load reads configuration from the given YAML file when path is non-empty,
// then overlays environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the values the service cannot run without.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.CommentsURL, validation.Required),
		validation.Field(&c.CodeLength, validation.Required, validation.Min(8)),
		validation.Field(&c.TokenExpirationHours, validation.Required, validation.Min(1)),
		validation.Field(&c.PrivilegedUsername, validation.Required),
	)
}

// IsBannedUsername reports whether username is on the configured ban list.
func (c Config) IsBannedUsername(username string) bool {
	for _, banned := range c.BannedUsernames {
		if banned == username {
			return true
		}
	}
	return false
}
