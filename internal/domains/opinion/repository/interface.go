package repository

import (
	"context"

	"what-to-watch/internal/domains/opinion/model"
)

// RepositoryInterface defines data access for opinions.
// The store exclusively owns all opinion records.
type RepositoryInterface interface {
	// Count returns the number of stored opinions
	Count(ctx context.Context) (int64, error)

	// GetByID retrieves an opinion
	// Errors: ErrOpinionNotFound
	GetByID(ctx context.Context, id int64) (*model.Opinion, error)

	// GetByText returns nil, nil when no opinion has exactly this text
	GetByText(ctx context.Context, text string) (*model.Opinion, error)

	// ListAll returns every opinion ordered by id (insertion order)
	ListAll(ctx context.Context) ([]model.Opinion, error)

	// Create inserts a new opinion; ID and Timestamp are assigned by the store
	// Errors: ErrDuplicateText
	Create(ctx context.Context, opinion *model.Opinion) (*model.Opinion, error)

	// Update applies the non-nil fields of patch
	// Errors: ErrOpinionNotFound, ErrDuplicateText
	Update(ctx context.Context, id int64, patch model.OpinionPatch) (*model.Opinion, error)

	// Delete removes an opinion
	// Errors: ErrOpinionNotFound
	Delete(ctx context.Context, id int64) error

	// RandomOne returns an opinion chosen uniformly at random
	// Errors: ErrEmptyStore
	RandomOne(ctx context.Context) (*model.Opinion, error)
}
