// Package stacktrace trims raw goroutine stacks down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/...go:line" frames of a raw stack as
// produced by runtime/debug.Stack, innermost first.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if p, ok := internalFrame(line); ok {
			paths = append(paths, p)
		}
	}

	return paths
}

// internalFrame extracts "internal/pkg/file.go:12" from a frame location line
// such as "/src/otpgate/internal/pkg/file.go:12 +0x1d".
func internalFrame(line string) (string, bool) {
	idx := strings.Index(line, "/internal/")
	if idx == -1 || !strings.Contains(line, ".go:") {
		return "", false
	}

	loc := line[idx+1:]
	if sp := strings.IndexByte(loc, ' '); sp != -1 {
		loc = loc[:sp]
	}

	return loc, true
}
