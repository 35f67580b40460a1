package httpmetrics

import "strings"

// NormalizePath collapses per-record path segments so metric label
// cardinality stays bounded: /posts/42/ and /posts/7/comment/ report as
// /posts/{id}/ and /posts/{id}/comment/.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "posts":
			if parts[i] != "" {
				parts[i] = "{id}"
			}
		case "group":
			if parts[i] != "" {
				parts[i] = "{slug}"
			}
		case "profile":
			if parts[i] != "" {
				parts[i] = "{username}"
			}
		}
	}

	result := strings.Join(parts, "/")
	if result == "" {
		return "/"
	}

	return result
}
