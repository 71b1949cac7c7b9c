package repository

import (
	"context"
	"time"

	"github.com/jaehkim-quant/research-platform/internal/otp/domain"
)

// Repository defines persistence for login codes.
type Repository interface {
	// Issue marks every unused code used and inserts c, atomically.
	Issue(ctx context.Context, c *domain.Code) error
	// Consume marks the most recently created live code with codeHash used and returns it.
	// Returns nil, nil when no live code matches.
	Consume(ctx context.Context, codeHash string, now time.Time) (*domain.Code, error)
}
