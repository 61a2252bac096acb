package service

import (
	"context"
	"io"

	"what-to-watch/internal/domains/opinion/model"
)

// Channel names the surface an opinion was created from.
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelAPI    Channel = "api"
	ChannelImport Channel = "import"
)

// ServiceInterface defines business operations on opinions
type ServiceInterface interface {
	// Create validates the request and persists a new opinion
	// Errors: *model.ValidationError, ErrDuplicateText
	Create(ctx context.Context, req *model.CreateOpinionRequest, channel Channel) (*model.Opinion, error)

	// GetByID errors: ErrOpinionNotFound
	GetByID(ctx context.Context, id int64) (*model.Opinion, error)

	// GetByText returns nil when no opinion has this text
	GetByText(ctx context.Context, text string) (*model.Opinion, error)

	ListAll(ctx context.Context) ([]model.Opinion, error)

	Count(ctx context.Context) (int64, error)

	// Update applies a partial update
	// Errors: *model.ValidationError, ErrOpinionNotFound, ErrDuplicateText
	Update(ctx context.Context, id int64, req *model.UpdateOpinionRequest) (*model.Opinion, error)

	// Delete errors: ErrOpinionNotFound
	Delete(ctx context.Context, id int64) error

	// Random errors: ErrEmptyStore
	Random(ctx context.Context) (*model.Opinion, error)
}

// BulkImportServiceInterface loads opinions from CSV
type BulkImportServiceInterface interface {
	// Import returns ErrInvalidCSVHeader when the header does not map onto
	// the opinion fields; row level problems are reported in the result.
	Import(ctx context.Context, r io.Reader) (*model.BulkImportResult, error)
}
