// Package classify assigns a document type to extracted text by
// nearest-neighbor search over a fixed set of example embeddings.
package classify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

// DefaultExamples is the built-in example set. One entry per supported
// document type; order matters, earlier entries win distance ties.
func DefaultExamples() []domain.DocumentExample {
	return []domain.DocumentExample{
		{Label: "Invoice", Text: "Invoice for services rendered to ABC Corp, total $450.00"},
		{Label: "Resume", Text: "Curriculum Vitae: John Doe, Experience in software engineering"},
		{Label: "Receipt", Text: "Receipt for purchase at XYZ Store, total $23.99"},
	}
}

// Classifier holds the example labels and their embeddings. Built once at
// startup; read-only afterwards, safe for concurrent use.
type Classifier struct {
	embedder port.Embedder
	labels   []string
	vecs     [][]float32
}

// New embeds the example set and returns a ready classifier.
func New(ctx context.Context, embedder port.Embedder, examples []domain.DocumentExample) (*Classifier, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("classify: empty example set")
	}

	texts := make([]string, len(examples))
	labels := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}

	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed examples: %w", err)
	}
	for i := 1; i < len(vecs); i++ {
		if len(vecs[i]) != len(vecs[0]) {
			return nil, fmt.Errorf("classify: inconsistent embedding dims %d vs %d", len(vecs[i]), len(vecs[0]))
		}
	}

	return &Classifier{embedder: embedder, labels: labels, vecs: vecs}, nil
}

// Classify embeds text and returns the label of the closest example with
// a confidence score of 1/(1+D), D being the squared Euclidean distance.
// The score is formatted with three decimals. Empty text is not rejected;
// it classifies like any other input.
func (c *Classifier) Classify(ctx context.Context, text string) (label string, confidence string, err error) {
	query, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return "", "", fmt.Errorf("embed query: %w", err)
	}
	if len(query) != len(c.vecs[0]) {
		return "", "", fmt.Errorf("classify: query dim %d != example dim %d", len(query), len(c.vecs[0]))
	}

	best := 0
	bestDist := squaredL2(query, c.vecs[0])
	for i := 1; i < len(c.vecs); i++ {
		if d := squaredL2(query, c.vecs[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}

	score := 1 / (1 + bestDist)
	return c.labels[best], strconv.FormatFloat(score, 'f', 3, 64), nil
}

// Labels returns the example labels in registration order.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
