// Package slug allocates short unique identifiers for posts and series.
package slug

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

const (
	// Alphabet is digits plus lowercase ASCII letters.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// Length of generated slugs.
	Length = 12
	// DefaultMaxAttempts bounds existence checks per allocation.
	DefaultMaxAttempts = 5
)

// 252 is the largest multiple of 36 that fits in a byte; bytes at or above it are redrawn.
const rejectAbove = 256 - 256%len(Alphabet)

// ErrAllocationExhausted is returned when every generated candidate was already taken.
var ErrAllocationExhausted = apierror.New(apierror.ErrConflict, "Could not allocate a unique slug")

// Checker reports whether a slug is already used by the owning table.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, slug string) (bool, error)

func (f CheckerFunc) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f(ctx, slug)
}

// Allocator hands out slugs that are unused at the time of the check.
type Allocator struct {
	checker     Checker
	maxAttempts int
	random      io.Reader
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRandom replaces crypto/rand as the randomness source.
func WithRandom(r io.Reader) Option {
	return func(a *Allocator) {
		if r != nil {
			a.random = r
		}
	}
}

func NewAllocator(checker Checker, opts ...Option) *Allocator {
	a := &Allocator{checker: checker, maxAttempts: DefaultMaxAttempts, random: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns explicit (NFC-normalized and trimmed) when it is non-blank; the table's unique
// constraint decides whether it is free. Otherwise it generates candidates until one is unused,
// giving up with ErrAllocationExhausted after the attempt budget.
func (a *Allocator) Allocate(ctx context.Context, explicit string) (string, error) {
	if s := Normalize(explicit); s != "" {
		return s, nil
	}
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate, err := Generate(a.random)
		if err != nil {
			return "", fmt.Errorf("slug: generate: %w", err)
		}
		exists, err := a.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrAllocationExhausted
}

// Normalize applies Unicode canonical composition and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Generate draws Length characters from Alphabet without modulo bias.
func Generate(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("slug: nil random source")
	}
	out := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(out) < Length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}
