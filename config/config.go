package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultPort           = "3000"
	DefaultAllowedOrigins = "http://localhost:3001,https://eyymi.site"

	// DevelopmentOrigins is forced in development regardless of ALLOWED_ORIGINS.
	DevelopmentOrigins = "*"
)

// Config is the set of values handed to the child process. It is built once
// and not modified afterwards.
type Config struct {
	Port           string `json:"port" env:"PORT" envDefault:"3000"`
	CertFile       string `json:"certFile" env:"CERT_FILE"`
	KeyFile        string `json:"keyFile" env:"KEY_FILE"`
	AllowedOrigins string `json:"allowedOrigins" env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3001,https://eyymi.site"`

	Mode Mode `json:"mode"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig(mode Mode) Config {
	config := Config{
		Port:           DefaultPort,
		AllowedOrigins: DefaultAllowedOrigins,
		Mode:           mode,
	}
	if mode == Development {
		config.AllowedOrigins = DevelopmentOrigins
	}
	return config
}

// LoadConfig resolves the child configuration from environ. Unset and empty
// variables fall back to their defaults; it never fails.
func LoadConfig(environ map[string]string, mode Mode) Config {
	config, err := env.ParseAsWithOptions[Config](env.Options{
		Environment: nonEmpty(environ),
	})
	if err != nil {
		return DefaultConfig(mode)
	}

	config.Mode = mode
	if mode == Development {
		config.AllowedOrigins = DevelopmentOrigins
	}

	return config
}

// Environ returns the variables the child receives on top of the parent environment.
func (c Config) Environ() map[string]string {
	return map[string]string{
		"PORT":            c.Port,
		"CERT_FILE":       c.CertFile,
		"KEY_FILE":        c.KeyFile,
		"ALLOWED_ORIGINS": c.AllowedOrigins,
	}
}

// Origins splits AllowedOrigins into its entries.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func nonEmpty(environ map[string]string) map[string]string {
	filtered := make(map[string]string, len(environ))
	for key, value := range environ {
		if value != "" {
			filtered[key] = value
		}
	}
	return filtered
}
