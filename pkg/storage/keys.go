package storage

import (
	"sort"
	"strings"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// joinList stores a string list in one TEXT column.
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
