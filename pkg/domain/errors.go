package domain

import (
	"fmt"
	"strings"
)

// CycleError reports dependency cycles that make a story set unplannable.
// Each cycle is a closed id path (first id repeated at the end).
type CycleError struct {
	Cycles [][]string
}

// Error implements the error interface
func (e *CycleError) Error() string {
	paths := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		paths = append(paths, strings.Join(c, " -> "))
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(paths, "; "))
}
