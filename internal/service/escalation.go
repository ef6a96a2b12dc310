package service

import (
	"context"
	"fmt"
	"unicode"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/internal/vectorstore"

	"go.uber.org/zap"
)

const (
	// Maximum cosine distance for a trigger exemplar to count as a match.
	triggerDistanceThreshold = 0.8
	// Number of nearest exemplars examined per request.
	triggerMatchCount = 3
	// Classifications below this confidence always go to a human.
	lowConfidenceThreshold = 0.3
)

// Categories that escalate unconditionally, before any similarity check.
var alwaysEscalate = map[models.RequestCategory]bool{
	models.CategoryHardwareFailure:  true,
	models.CategorySecurityIncident: true,
}

// defaultContacts routes each category's escalations to its support desk.
var defaultContacts = map[models.RequestCategory]string{
	models.CategoryHardwareFailure:      "hardware-support@techcorp.com",
	models.CategoryNetworkConnectivity:  "network-support@techcorp.com",
	models.CategoryEmailConfiguration:   "email-support@techcorp.com",
	models.CategorySecurityIncident:     "security@techcorp.com",
	models.CategorySoftwareInstallation: "software-support@techcorp.com",
}

const fallbackContact = "it-support@techcorp.com"

// triggerExemplar is one known escalation-trigger phrase together with the
// category it belongs to and the contact its escalations route to.
type triggerExemplar struct {
	Phrase   string
	Category models.RequestCategory
	Contact  string
}

// EscalationEngine decides whether a request is routed to a human. The
// decision is a flat rule list evaluated in order; the first matching rule
// wins. The trigger catalog is embedded once at construction and immutable
// afterwards, so Decide is deterministic for identical inputs.
type EscalationEngine struct {
	embedder Embedder
	index    vectorstore.Index
	logger   *zap.Logger
}

func NewEscalationEngine(ctx context.Context, embedder Embedder, catalog corpus.Catalog, logger *zap.Logger) (*EscalationEngine, error) {
	index := vectorstore.NewMemoryIndex()

	// Seed the trigger catalog from the category catalog's escalation
	// trigger phrases, in enumeration order for determinism.
	for _, category := range models.Categories {
		info, ok := catalog[category]
		if !ok {
			continue
		}
		for i, phrase := range info.EscalationTriggers {
			vector, err := embedder.Embed(ctx, phrase)
			if err != nil {
				return nil, fmt.Errorf("failed to embed escalation trigger for %s: %w", category, err)
			}
			exemplar := triggerExemplar{
				Phrase:   phrase,
				Category: category,
				Contact:  ContactFor(category),
			}
			index.Insert(fmt.Sprintf("%s/%d", category, i), vector, exemplar)
		}
	}

	logger.Info("Escalation trigger catalog built", zap.Int("triggers", index.Len()))
	return &EscalationEngine{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}, nil
}

// ContactFor returns the support contact escalations of a category route to.
func ContactFor(category models.RequestCategory) string {
	if contact, ok := defaultContacts[category]; ok {
		return contact
	}
	return fallbackContact
}

// Decide evaluates the escalation rules in order:
//  1. hardware failures and security incidents always escalate;
//  2. a close trigger-catalog match in the classified category escalates;
//  3. low classification confidence escalates for human review;
//  4. otherwise the request stays automated.
func (e *EscalationEngine) Decide(ctx context.Context, request string, classification models.ClassificationResult) models.EscalationDecision {
	category := classification.Category

	if alwaysEscalate[category] {
		return models.EscalationDecision{
			Escalate: true,
			Reason:   fmt.Sprintf("%s requires automatic escalation", category),
			Contact:  ContactFor(category),
		}
	}

	if decision, ok := e.matchTrigger(ctx, request, category); ok {
		return decision
	}

	if classification.Confidence < lowConfidenceThreshold {
		return models.EscalationDecision{
			Escalate: true,
			Reason:   "Low confidence in classification - human review needed",
		}
	}

	return models.EscalationDecision{Escalate: false}
}

// matchTrigger runs the similarity rule. Only exemplars whose category
// matches the classification count; a near match from another category is
// ignored. An embedding failure skips the rule rather than failing the
// request.
func (e *EscalationEngine) matchTrigger(ctx context.Context, request string, category models.RequestCategory) (models.EscalationDecision, bool) {
	requestVector, err := e.embedder.Embed(ctx, request)
	if err != nil {
		e.logger.Warn("Trigger matching skipped, embedding failed", zap.Error(err))
		return models.EscalationDecision{}, false
	}

	for _, match := range e.index.QueryKNearest(requestVector, triggerMatchCount) {
		if match.Distance >= triggerDistanceThreshold {
			continue
		}
		exemplar, ok := match.Payload.(triggerExemplar)
		if !ok || exemplar.Category != category {
			continue
		}
		return models.EscalationDecision{
			Escalate: true,
			Reason:   fmt.Sprintf("%s escalation detected - contact: %s", capitalize(exemplar.Category.Human()), exemplar.Contact),
			Contact:  exemplar.Contact,
		}, true
	}
	return models.EscalationDecision{}, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
