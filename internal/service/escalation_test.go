package service

import (
	"context"
	"testing"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func escalationCatalog() corpus.Catalog {
	return corpus.Catalog{
		models.CategoryPasswordReset: {
			Description:        "password problems",
			EscalationTriggers: []string{"multiple failed reset attempts account lockout"},
		},
		models.CategoryEmailConfiguration: {
			Description:        "email problems",
			EscalationTriggers: []string{"server configuration changes distribution list modifications"},
		},
		models.CategoryHardwareFailure: {
			Description:        "hardware problems",
			EscalationTriggers: []string{"all hardware failures require escalation"},
		},
		models.CategorySecurityIncident: {
			Description:        "security problems",
			EscalationTriggers: []string{"all security incidents require immediate escalation"},
		},
	}
}

// Trigger phrases live on orthogonal axes: password=0, email=1,
// hardware=2, security=3. Requests map close to or far from them.
func escalationVectors() map[string][]float32 {
	return map[string][]float32{
		"multiple failed reset attempts account lockout":              axis(testDim, 0),
		"server configuration changes distribution list modifications": axis(testDim, 1),
		"all hardware failures require escalation":                    axis(testDim, 2),
		"all security incidents require immediate escalation":         axis(testDim, 3),

		"I have tried resetting my password five times": blend(testDim, 0, 4, 0.95, 0.05),
		"how do I change my desktop wallpaper":          axis(testDim, 5),
	}
}

func newTestEngine(t *testing.T) *EscalationEngine {
	t.Helper()
	embedder := &stubEmbedder{vectors: escalationVectors()}
	engine, err := NewEscalationEngine(context.Background(), embedder, escalationCatalog(), zap.NewNop())
	require.NoError(t, err)
	return engine
}

func classified(category models.RequestCategory, confidence float64) models.ClassificationResult {
	return models.ClassificationResult{Category: category, Confidence: confidence}
}

func TestDecideAlwaysEscalatesHardwareAndSecurity(t *testing.T) {
	engine := newTestEngine(t)

	for _, category := range []models.RequestCategory{
		models.CategoryHardwareFailure,
		models.CategorySecurityIncident,
	} {
		// Request text is irrelevant for rule 1; even an unknown text that
		// would fail the stub embedder never reaches it.
		decision := engine.Decide(context.Background(), "text the embedder has never seen", classified(category, 0.95))
		assert.True(t, decision.Escalate, "category %s", category)
		assert.Contains(t, decision.Reason, string(category))
		assert.NotEmpty(t, decision.Contact)
	}
}

func TestDecideTriggerMatchEscalates(t *testing.T) {
	engine := newTestEngine(t)

	decision := engine.Decide(context.Background(),
		"I have tried resetting my password five times",
		classified(models.CategoryPasswordReset, 0.9))

	assert.True(t, decision.Escalate)
	assert.Contains(t, decision.Reason, "Password reset escalation detected")
	assert.Contains(t, decision.Reason, "it-support@techcorp.com")
	assert.Equal(t, "it-support@techcorp.com", decision.Contact)
}

func TestDecideTriggerIgnoredForOtherCategory(t *testing.T) {
	engine := newTestEngine(t)

	// Same request, but classified as email configuration: the near
	// password exemplar must not fire.
	decision := engine.Decide(context.Background(),
		"I have tried resetting my password five times",
		classified(models.CategoryEmailConfiguration, 0.9))

	assert.False(t, decision.Escalate)
}

func TestDecideLowConfidenceEscalates(t *testing.T) {
	engine := newTestEngine(t)

	decision := engine.Decide(context.Background(),
		"how do I change my desktop wallpaper",
		classified(models.CategoryPolicyQuestion, 0.1))

	assert.True(t, decision.Escalate)
	assert.Equal(t, "Low confidence in classification - human review needed", decision.Reason)
	assert.Empty(t, decision.Contact)
}

func TestDecideConfidenceBoundary(t *testing.T) {
	engine := newTestEngine(t)
	request := "how do I change my desktop wallpaper"

	below := engine.Decide(context.Background(), request, classified(models.CategoryPolicyQuestion, 0.29))
	atThreshold := engine.Decide(context.Background(), request, classified(models.CategoryPolicyQuestion, 0.3))

	assert.True(t, below.Escalate)
	assert.False(t, atThreshold.Escalate)
}

func TestDecideNoEscalation(t *testing.T) {
	engine := newTestEngine(t)

	decision := engine.Decide(context.Background(),
		"how do I change my desktop wallpaper",
		classified(models.CategoryPolicyQuestion, 0.8))

	assert.Equal(t, models.EscalationDecision{Escalate: false}, decision)
}

func TestDecideIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	request := "I have tried resetting my password five times"
	classification := classified(models.CategoryPasswordReset, 0.9)

	first := engine.Decide(context.Background(), request, classification)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Decide(context.Background(), request, classification))
	}
}

func TestDecideEmbedFailureSkipsTriggerRule(t *testing.T) {
	embedder := &stubEmbedder{
		vectors: escalationVectors(),
		failOn:  map[string]bool{"unembeddable request": true},
	}
	engine, err := NewEscalationEngine(context.Background(), embedder, escalationCatalog(), zap.NewNop())
	require.NoError(t, err)

	// Trigger rule is skipped, low confidence still applies.
	lowConf := engine.Decide(context.Background(), "unembeddable request", classified(models.CategoryPasswordReset, 0.2))
	assert.True(t, lowConf.Escalate)

	okConf := engine.Decide(context.Background(), "unembeddable request", classified(models.CategoryPasswordReset, 0.9))
	assert.False(t, okConf.Escalate)
}

func TestContactFor(t *testing.T) {
	assert.Equal(t, "security@techcorp.com", ContactFor(models.CategorySecurityIncident))
	assert.Equal(t, "hardware-support@techcorp.com", ContactFor(models.CategoryHardwareFailure))
	assert.Equal(t, "it-support@techcorp.com", ContactFor(models.CategoryPolicyQuestion))
}
