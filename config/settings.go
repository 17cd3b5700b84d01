package config

import (
	"github.com/caarlos0/env/v11"
)

// Settings configures the launcher itself. None of it reaches the child.
type Settings struct {
	LogLevel     string `json:"logLevel" env:"LAUNCHER_LOG_LEVEL" envDefault:"info"`
	AdminAddress string `json:"adminAddress" env:"LAUNCHER_ADMIN_ADDRESS"`

	// ServiceName is attached to every collector as the "service" label.
	ServiceName string `json:"serviceName" env:"LAUNCHER_SERVICE_NAME" envDefault:"launcher"`
}

// DefaultSettings returns the envDefault values. Parsing an empty
// environment cannot fail for these fields.
func DefaultSettings() Settings {
	settings, _ := env.ParseAsWithOptions[Settings](env.Options{
		Environment: map[string]string{},
	})
	return settings
}

func LoadSettings(environ map[string]string) (Settings, error) {
	return env.ParseAsWithOptions[Settings](env.Options{
		Environment: nonEmpty(environ),
	})
}
