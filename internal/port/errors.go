package port

import "errors"

var (
	// ErrNotFound is returned when no record exists for the requested key.
	ErrNotFound = errors.New("not found")

	// ErrExtraction wraps any failure to parse, rasterize, or OCR a
	// document. Distinct causes are collapsed into this one kind.
	ErrExtraction = errors.New("cannot extract document")
)
