// Package stacktrace trims panic stacks down to this repository's own
// frames so recovery logs stay readable.
package stacktrace

import "strings"

// InternalPaths extracts the file:line references under /internal/ from a
// raw debug.Stack dump, relative to the module root.
func InternalPaths(stack []byte) []string {
	var paths []string

	for _, raw := range strings.Split(string(stack), "\n") {
		line := strings.TrimSpace(raw)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}
		root := strings.Index(line, "/internal/")
		if root == -1 || root > idx {
			continue
		}

		end := strings.IndexByte(line[idx:], ' ')
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}
		paths = append(paths, line[root+1:end])
	}

	return paths
}
