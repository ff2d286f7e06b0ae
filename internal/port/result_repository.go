package port

import (
	"context"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
)

type ResultRepository interface {
	// Save persists a classification result keyed by filename,
	// overwriting any previous record for the same filename.
	Save(ctx context.Context, result domain.ClassificationResult) error

	// Get fetches one result by filename, returning ErrNotFound if absent.
	Get(ctx context.Context, filename string) (domain.ClassificationResult, error)

	// List returns every persisted result. Full prefix scan; the result
	// space is expected to stay small.
	List(ctx context.Context) ([]domain.ClassificationResult, error)
}

type ArchiveRepository interface {
	// CreateRecord inserts one archive row.
	CreateRecord(ctx context.Context, record domain.ArchiveRecord) error
}
