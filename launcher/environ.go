package launcher

import "sort"

// MergeEnviron overlays overrides on the parent environment and returns
// KEY=value entries sorted by key. Keys in overrides replace parent values;
// everything else passes through.
func MergeEnviron(parent, overrides map[string]string) []string {
	merged := make(map[string]string, len(parent)+len(overrides))
	for key, value := range parent {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	environ := make([]string, 0, len(keys))
	for _, key := range keys {
		environ = append(environ, key+"="+merged[key])
	}
	return environ
}
