package repository

import (
	"context"

	"github.com/jaehkim-quant/research-platform/internal/contact/domain"
)

// Repository persists contact inquiries.
type Repository interface {
	Create(ctx context.Context, inq *domain.Inquiry) error
	// List returns every inquiry, newest first.
	List(ctx context.Context) ([]*domain.Inquiry, error)
	// MarkRead sets the read flag and returns the updated inquiry, or nil if id does not exist.
	MarkRead(ctx context.Context, id string, read bool) (*domain.Inquiry, error)
	// Delete removes the inquiry and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}
