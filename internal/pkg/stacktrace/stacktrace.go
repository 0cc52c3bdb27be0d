// Package stacktrace trims goroutine dumps down to this module's frames.
package stacktrace

import (
	"strings"

	"github.com/samber/lo"
)

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame in
// stack that belongs to an internal package, outermost call last.
func InternalPaths(stack []byte) []string {
	return lo.FilterMap(strings.Split(string(stack), "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)

		at := strings.Index(line, "/internal/")
		if at == -1 || !strings.Contains(line[at:], ".go:") {
			return "", false
		}

		frame, _, _ := strings.Cut(line[at+1:], " ")
		return frame, true
	})
}
