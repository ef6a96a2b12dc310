package service

import (
	"context"
	"fmt"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/internal/vectorstore"

	"go.uber.org/zap"
)

// Classifier assigns a request to the closest category by cosine similarity
// between the request embedding and the cached category description
// embeddings. The cache is built once at construction and never mutated,
// so Classify is safe for concurrent use.
type Classifier struct {
	embedder Embedder
	logger   *zap.Logger
	order    []models.RequestCategory
	vectors  map[models.RequestCategory][]float32
}

func NewClassifier(ctx context.Context, embedder Embedder, catalog corpus.Catalog, logger *zap.Logger) (*Classifier, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("category catalog is empty")
	}

	c := &Classifier{
		embedder: embedder,
		logger:   logger,
		vectors:  make(map[models.RequestCategory][]float32, len(catalog)),
	}

	// Keep the fixed enumeration order so similarity ties always resolve
	// to the first-declared category.
	for _, category := range models.Categories {
		info, ok := catalog[category]
		if !ok {
			continue
		}
		vector, err := embedder.Embed(ctx, info.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to embed description for %s: %w", category, err)
		}
		c.order = append(c.order, category)
		c.vectors[category] = vector
	}

	logger.Info("Classifier initialized", zap.Int("categories", len(c.order)))
	return c, nil
}

// Classify returns the best-scoring category for the request. It never
// rejects a request on low similarity; confidence is informational only.
// The only possible failure is an unreachable embedding provider.
func (c *Classifier) Classify(ctx context.Context, request string) (models.ClassificationResult, error) {
	requestVector, err := c.embedder.Embed(ctx, request)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	best := c.order[0]
	bestScore := vectorstore.CosineSimilarity(requestVector, c.vectors[best])
	for _, category := range c.order[1:] {
		score := vectorstore.CosineSimilarity(requestVector, c.vectors[category])
		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	result := models.ClassificationResult{
		Category:   best,
		Confidence: clamp01(bestScore),
	}

	c.logger.Debug("Request classified",
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
	)
	return result, nil
}

// CategoryOrder returns the categories the classifier can assign, in
// tie-break order.
func (c *Classifier) CategoryOrder() []models.RequestCategory {
	out := make([]models.RequestCategory, len(c.order))
	copy(out, c.order)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
