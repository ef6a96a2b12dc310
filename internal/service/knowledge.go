package service

import (
	"context"
	"fmt"
	"sort"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/internal/vectorstore"
	"helpdesk-triage/pkg/config"

	"go.uber.org/zap"
)

// BuildKnowledgeIndex embeds every corpus entry and inserts it into a fresh
// in-memory index. An embedding failure here is fatal: the process must not
// serve traffic with a partially built index. Zero entries is fine, the
// index is simply empty.
func BuildKnowledgeIndex(ctx context.Context, embedder Embedder, entries []corpus.Entry, logger *zap.Logger) (vectorstore.Index, error) {
	index := vectorstore.NewMemoryIndex()
	for _, entry := range entries {
		vector, err := embedder.Embed(ctx, entry.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed corpus entry %s: %w", entry.Source, err)
		}
		index.Insert(entry.Source, vector, entry)
	}
	logger.Info("Knowledge index built", zap.Int("entries", index.Len()))
	return index, nil
}

// KnowledgeRetriever answers similarity queries over the knowledge index,
// re-ranking candidates so passages tagged with the classified category
// rank ahead of equally distant ones that are not.
type KnowledgeRetriever struct {
	embedder Embedder
	index    vectorstore.Index
	topK     int
	boost    float64
	logger   *zap.Logger
}

func NewKnowledgeRetriever(embedder Embedder, index vectorstore.Index, cfg *config.TriageConfig, logger *zap.Logger) *KnowledgeRetriever {
	return &KnowledgeRetriever{
		embedder: embedder,
		index:    index,
		topK:     cfg.TopK,
		boost:    cfg.CategoryBoost,
		logger:   logger,
	}
}

// Retrieve returns up to topK passages ordered by descending relevance.
// It fetches twice as many raw candidates as requested, multiplies the
// distance of category-matching candidates by the boost factor (distance
// is lower-is-better, so the match improves without discarding the rest),
// then re-sorts and truncates. Retrieval never fails: an unreachable
// embedder or an empty index both produce an empty result.
func (r *KnowledgeRetriever) Retrieve(ctx context.Context, query string, category models.RequestCategory) []models.KnowledgePassage {
	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("Knowledge retrieval skipped, embedding failed", zap.Error(err))
		return nil
	}

	matches := r.index.QueryKNearest(queryVector, r.topK*2)
	if len(matches) == 0 {
		return nil
	}

	for i, m := range matches {
		entry, ok := m.Payload.(corpus.Entry)
		if !ok {
			continue
		}
		if entry.Category == category {
			matches[i].Distance *= r.boost
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}

	passages := make([]models.KnowledgePassage, 0, len(matches))
	for _, m := range matches {
		entry, ok := m.Payload.(corpus.Entry)
		if !ok {
			continue
		}
		passages = append(passages, models.KnowledgePassage{
			Content:        entry.Content,
			Source:         entry.Source,
			RelevanceScore: clamp01(1 - m.Distance),
		})
	}

	r.logger.Debug("Knowledge retrieved",
		zap.String("category", string(category)),
		zap.Int("passages", len(passages)),
	)
	return passages
}
