package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
)

// MySQLArchive keeps a best-effort copy of classification results for
// offline inspection. Failures here never fail an upload.
type MySQLArchive struct {
	db *sql.DB
}

func NewMySQLArchive(db *sql.DB) *MySQLArchive {
	return &MySQLArchive{db: db}
}

func (m *MySQLArchive) CreateRecord(ctx context.Context, record domain.ArchiveRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO classification_archive (id, filename, document_type, confidence_score, archived_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Filename, record.DocumentType, record.ConfidenceScore, record.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archive record: %w", err)
	}
	return nil
}
