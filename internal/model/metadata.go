package model

import (
	"sort"
	"strings"
)

var (
	metadataKeys = []string{
		"accept",
		"badge",
		"confirmMessage",
		"cssClass",
		"helpText",
		"hideLabel",
		"section",
		"truncate",
		"unit",
		"widget",
	}

	metadataKeySet = func(keys []string) map[string]string {
		result := make(map[string]string, len(keys))
		for _, key := range keys {
			result[strings.ToLower(key)] = key
		}
		return result
	}(metadataKeys)
)

// AllowedMetadataKeys returns a sorted copy of the recognised extra keys.
func AllowedMetadataKeys() []string {
	keys := append([]string(nil), metadataKeys...)
	sort.Strings(keys)
	return keys
}

// CanonicalMetadataKey resolves key case-insensitively against the allowlist.
func CanonicalMetadataKey(key string) (string, bool) {
	canonical, ok := metadataKeySet[strings.ToLower(strings.TrimSpace(key))]
	return canonical, ok
}

// filterMetadata keeps allowlisted keys with non-empty values. Unknown keys
// are dropped so renderers only see directives they understand.
func filterMetadata(extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]string)
	for key, value := range extra {
		canonical, ok := CanonicalMetadataKey(key)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out[canonical] = trimmed
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
