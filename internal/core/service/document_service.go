package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/classify"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

const pdfContentType = "application/pdf"

var ErrUnsupportedMediaType = errors.New("file must be a PDF")

// DocumentService runs the upload pipeline: persist the file, extract
// its text, classify it, store the result, and hand a copy to the
// archive queue.
type DocumentService struct {
	extractor  port.Extractor
	classifier *classify.Classifier
	results    port.ResultRepository
	uploadDir  string
	archive    chan domain.ArchiveRecord
	logger     zerolog.Logger
}

// NewDocumentService creates the service. queueSize <= 0 disables
// archiving entirely.
func NewDocumentService(
	extractor port.Extractor,
	classifier *classify.Classifier,
	results port.ResultRepository,
	uploadDir string,
	queueSize int,
	logger zerolog.Logger,
) *DocumentService {
	var archive chan domain.ArchiveRecord
	if queueSize > 0 {
		archive = make(chan domain.ArchiveRecord, queueSize)
	}
	return &DocumentService{
		extractor:  extractor,
		classifier: classifier,
		results:    results,
		uploadDir:  uploadDir,
		archive:    archive,
		logger:     logger,
	}
}

// ProcessUpload validates and stores the uploaded file, then extracts,
// classifies, and persists the result. Uploading the same filename again
// overwrites both the stored file and the result record.
func (s *DocumentService) ProcessUpload(ctx context.Context, filename, contentType string, file io.Reader) (domain.ClassificationResult, error) {
	if contentType != pdfContentType {
		return domain.ClassificationResult{}, ErrUnsupportedMediaType
	}

	path, err := s.saveUpload(filename, file)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("save upload: %w", err)
	}

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("extract %s: %w", filename, err)
	}

	docType, confidence, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classify %s: %w", filename, err)
	}

	result := domain.ClassificationResult{
		Filename:        filename,
		Text:            text,
		DocumentType:    docType,
		ConfidenceScore: confidence,
	}

	if err := s.results.Save(ctx, result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("save result: %w", err)
	}

	s.enqueueArchive(result)

	return result, nil
}

func (s *DocumentService) GetResult(ctx context.Context, filename string) (domain.ClassificationResult, error) {
	return s.results.Get(ctx, filename)
}

func (s *DocumentService) ListResults(ctx context.Context) ([]domain.ClassificationResult, error) {
	return s.results.List(ctx)
}

// ArchiveQueue exposes the queue drained by the archive workers.
func (s *DocumentService) ArchiveQueue() <-chan domain.ArchiveRecord {
	return s.archive
}

// Close closes the archive queue so workers can drain and exit.
func (s *DocumentService) Close() {
	if s.archive != nil {
		close(s.archive)
	}
}

func (s *DocumentService) saveUpload(filename string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	// filepath.Base strips any path components a client smuggles in.
	path := filepath.Join(s.uploadDir, filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path, nil
}

// enqueueArchive never blocks the upload path: archiving is best effort,
// a full queue drops the record with a warning.
func (s *DocumentService) enqueueArchive(result domain.ClassificationResult) {
	if s.archive == nil {
		return
	}

	record := domain.ArchiveRecord{
		ID:              uuid.NewString(),
		Filename:        result.Filename,
		DocumentType:    result.DocumentType,
		ConfidenceScore: result.ConfidenceScore,
		ArchivedAt:      time.Now(),
	}

	select {
	case s.archive <- record:
	default:
		s.logger.Warn().Str("filename", result.Filename).Msg("archive queue full, dropping record")
	}
}
