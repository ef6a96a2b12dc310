package service

import (
	"context"
	"math"
	"testing"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func triageConfig() *config.TriageConfig {
	return &config.TriageConfig{TopK: 3, CategoryBoost: 0.7}
}

// angled returns a 2D unit vector with the given cosine similarity to the
// query axis [1, 0].
func angled(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos))}
}

func buildTestIndex(t *testing.T, embedder *stubEmbedder, entries []corpus.Entry) *KnowledgeRetriever {
	t.Helper()
	index, err := BuildKnowledgeIndex(context.Background(), embedder, entries, zap.NewNop())
	require.NoError(t, err)
	return NewKnowledgeRetriever(embedder, index, triageConfig(), zap.NewNop())
}

func TestRetrieveBoostPromotesCategoryMatch(t *testing.T) {
	entries := []corpus.Entry{
		{Source: "kb.md#Policies", Content: "policy text", Category: models.CategoryPolicyQuestion},
		{Source: "kb.md#Passwords", Content: "password text", Category: models.CategoryPasswordReset},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		// Raw distances: policy 0.3, password 0.4. The 0.7 boost drops the
		// password entry to 0.28, ahead of the unboosted policy entry.
		"policy text":   angled(0.7),
		"password text": angled(0.6),
		"reset query":   {1, 0},
	}}
	retriever := buildTestIndex(t, embedder, entries)

	passages := retriever.Retrieve(context.Background(), "reset query", models.CategoryPasswordReset)
	require.Len(t, passages, 2)
	assert.Equal(t, "kb.md#Passwords", passages[0].Source)
	assert.InDelta(t, 0.72, passages[0].RelevanceScore, 0.01)
	assert.Equal(t, "kb.md#Policies", passages[1].Source)
	assert.InDelta(t, 0.70, passages[1].RelevanceScore, 0.01)
}

func TestRetrieveBoostIsMonotonic(t *testing.T) {
	entries := []corpus.Entry{
		{Source: "a", Content: "entry a", Category: models.CategoryPasswordReset},
		{Source: "b", Content: "entry b", Category: models.CategoryPolicyQuestion},
		{Source: "c", Content: "entry c", Category: models.CategoryPolicyQuestion},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"entry a": angled(0.8),
		"entry b": angled(0.7),
		"entry c": angled(0.5),
		"query":   {1, 0},
	}}
	retriever := buildTestIndex(t, embedder, entries)

	unboosted := retriever.Retrieve(context.Background(), "query", models.CategoryEmailConfiguration)
	boosted := retriever.Retrieve(context.Background(), "query", models.CategoryPasswordReset)

	rankOf := func(passages []models.KnowledgePassage, source string) int {
		for i, p := range passages {
			if p.Source == source {
				return i
			}
		}
		return -1
	}
	// The boosted passage never ranks below its unboosted position.
	assert.LessOrEqual(t, rankOf(boosted, "a"), rankOf(unboosted, "a"))
}

func TestRetrieveLimitsTopK(t *testing.T) {
	var entries []corpus.Entry
	vectors := map[string][]float32{"query": {1, 0}}
	for i := 0; i < 8; i++ {
		content := string(rune('a' + i))
		entries = append(entries, corpus.Entry{Source: content, Content: content, Category: models.CategoryPolicyQuestion})
		vectors[content] = angled(0.9 - float64(i)*0.1)
	}
	retriever := buildTestIndex(t, &stubEmbedder{vectors: vectors}, entries)

	passages := retriever.Retrieve(context.Background(), "query", models.CategoryPolicyQuestion)
	assert.Len(t, passages, 3)
}

func TestRetrieveSortedByDescendingRelevance(t *testing.T) {
	entries := []corpus.Entry{
		{Source: "a", Content: "entry a", Category: models.CategoryPolicyQuestion},
		{Source: "b", Content: "entry b", Category: models.CategoryPolicyQuestion},
		{Source: "c", Content: "entry c", Category: models.CategoryPolicyQuestion},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"entry a": angled(0.2),
		"entry b": angled(0.9),
		"entry c": angled(0.5),
		"query":   {1, 0},
	}}
	retriever := buildTestIndex(t, embedder, entries)

	passages := retriever.Retrieve(context.Background(), "query", models.CategoryEmailConfiguration)
	require.Len(t, passages, 3)
	for i := 1; i < len(passages); i++ {
		assert.GreaterOrEqual(t, passages[i-1].RelevanceScore, passages[i].RelevanceScore)
	}
	assert.Equal(t, "b", passages[0].Source)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	retriever := buildTestIndex(t, embedder, nil)

	passages := retriever.Retrieve(context.Background(), "query", models.CategoryPasswordReset)
	assert.Empty(t, passages)
}

func TestRetrieveEmbedFailureDegradesToEmpty(t *testing.T) {
	entries := []corpus.Entry{
		{Source: "a", Content: "entry a", Category: models.CategoryPolicyQuestion},
	}
	embedder := &stubEmbedder{
		vectors: map[string][]float32{"entry a": angled(0.5)},
		failOn:  map[string]bool{"query": true},
	}
	retriever := buildTestIndex(t, embedder, entries)

	passages := retriever.Retrieve(context.Background(), "query", models.CategoryPolicyQuestion)
	assert.Empty(t, passages)
}

func TestBuildKnowledgeIndexEmbedFailureIsFatal(t *testing.T) {
	entries := []corpus.Entry{
		{Source: "a", Content: "entry a", Category: models.CategoryPolicyQuestion},
	}
	embedder := &stubEmbedder{failOn: map[string]bool{"entry a": true}}

	_, err := BuildKnowledgeIndex(context.Background(), embedder, entries, zap.NewNop())
	assert.Error(t, err)
}
