package config

import "strings"

// EnvironMap converts KEY=value entries, as returned by os.Environ, into a map.
// Later entries win and entries without '=' are skipped.
func EnvironMap(entries []string) map[string]string {
	environ := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		environ[key] = value
	}
	return environ
}
