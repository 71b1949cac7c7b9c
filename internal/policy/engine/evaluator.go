package engine

import (
	"context"
	"strings"
)

// Input describes one HTTP request for access evaluation.
type Input struct {
	Method        string
	Path          string
	Authenticated bool
	Subject       string
}

// Evaluator decides whether a request may reach its handler.
type Evaluator interface {
	Authorize(ctx context.Context, in Input) (bool, error)
}

// segments splits a URL path into its non-empty parts.
func segments(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
