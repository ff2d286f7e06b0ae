package port

import "context"

type Extractor interface {
	// Extract returns the recognized text of the PDF at path, pages
	// concatenated in order. Failures wrap ErrExtraction.
	Extract(ctx context.Context, path string) (string, error)
}
