// Package extractor recognizes text in PDF files by rasterizing each
// page and running it through tesseract.
package extractor

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

type Config struct {
	Tesseract string  // binary name or absolute path; if empty -> "tesseract"
	Lang      string  // default "eng"
	DPI       float64 // rasterization DPI, default 300
	MaxPages  int     // 0 = no limit
}

type PDFExtractor struct {
	cfg    Config
	runner Runner
	logger zerolog.Logger
}

func NewPDFExtractor(cfg Config, runner Runner, logger zerolog.Logger) *PDFExtractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI == 0 {
		cfg.DPI = 300
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &PDFExtractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract rasterizes every page of the PDF at path and concatenates the
// per-page OCR output in page order. Any failure to open or render the
// document wraps port.ErrExtraction.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", port.ErrExtraction, filepath.Base(path), err)
	}
	defer doc.Close()

	tmpDir, err := os.MkdirTemp("", "ntd-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pages := doc.NumPage()
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}

	var b strings.Builder
	for i := 0; i < pages; i++ {
		imgPath, err := e.renderPage(doc, i, tmpDir)
		if err != nil {
			return "", fmt.Errorf("%w: render page %d of %s: %v", port.ErrExtraction, i+1, filepath.Base(path), err)
		}

		text, err := e.ocrPage(ctx, imgPath)
		if err != nil {
			return "", fmt.Errorf("%w: ocr page %d of %s: %v", port.ErrExtraction, i+1, filepath.Base(path), err)
		}
		b.WriteString(text)

		// Page images are only needed transiently.
		os.Remove(imgPath)
	}

	e.logger.Debug().Str("file", filepath.Base(path)).Int("pages", pages).Msg("extracted text")
	return b.String(), nil
}

func (e *PDFExtractor) renderPage(doc *fitz.Document, page int, tmpDir string) (string, error) {
	img, err := doc.ImageDPI(page, e.cfg.DPI)
	if err != nil {
		return "", err
	}

	path := filepath.Join(tmpDir, fmt.Sprintf("page-%04d.png", page))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return "", err
	}
	return path, nil
}

func (e *PDFExtractor) ocrPage(ctx context.Context, imgPath string) (string, error) {
	// tesseract <image> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %v: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
