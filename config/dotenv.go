package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

const (
	DevelopmentDotenv = "./.env.development"
	ProductionDotenv  = "./.env"
)

func DotenvPath(mode Mode) string {
	if mode == Development {
		return DevelopmentDotenv
	}
	return ProductionDotenv
}

// OverlayDotenv returns a copy of environ with the values from the dotenv file
// at path added for keys environ does not already have. A missing file leaves
// environ as is.
func OverlayDotenv(environ map[string]string, path string) (map[string]string, error) {
	merged := make(map[string]string, len(environ))
	for key, value := range environ {
		merged[key] = value
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return merged, nil
	}
	if err != nil {
		return merged, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for key, value := range values {
		if _, exists := merged[key]; !exists {
			merged[key] = value
		}
	}

	return merged, nil
}
