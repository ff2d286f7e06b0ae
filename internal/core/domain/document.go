package domain

import "time"

// ClassificationResult is the record produced for one uploaded PDF.
// It is persisted keyed by filename; re-uploading the same filename
// overwrites the previous record.
type ClassificationResult struct {
	Filename        string `json:"filename"`
	Text            string `json:"text"`
	DocumentType    string `json:"document_type"`
	ConfidenceScore string `json:"confidence_score"`
}

// DocumentExample is one labeled reference text. The fixed example set is
// embedded once at startup and never changes for the process lifetime.
type DocumentExample struct {
	Label string
	Text  string
}

// ArchiveRecord is the best-effort MySQL copy of a classification result.
type ArchiveRecord struct {
	ID              string
	Filename        string
	DocumentType    string
	ConfidenceScore string
	ArchivedAt      time.Time
}
