package service

import (
	"context"
	"time"

	"helpdesk-triage/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditSink persists finished triage records. Recording is best effort and
// never fails the request.
type AuditSink interface {
	Record(ctx context.Context, record *models.TriageRecord) error
}

// Pipeline sequences the four triage stages for one request:
// classify, retrieve, escalate, respond. The order is fixed and strictly
// linear; retrieval runs even when escalation will fire so the knowledge
// context is still available to the human agent.
type Pipeline struct {
	classifier *Classifier
	retriever  *KnowledgeRetriever
	escalation *EscalationEngine
	responder  *Responder
	audit      AuditSink
	logger     *zap.Logger
}

func NewPipeline(
	classifier *Classifier,
	retriever *KnowledgeRetriever,
	escalation *EscalationEngine,
	responder *Responder,
	audit AuditSink,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		retriever:  retriever,
		escalation: escalation,
		responder:  responder,
		audit:      audit,
		logger:     logger,
	}
}

// Process runs one request through the pipeline and returns the assembled
// record. On cancellation it returns the context error, never a partially
// filled record.
func (p *Pipeline) Process(ctx context.Context, request, userID string) (*models.TriageRecord, error) {
	record := &models.TriageRecord{
		ID:        uuid.New(),
		Request:   request,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	classification, err := p.classifier.Classify(ctx, request)
	if err != nil {
		return nil, err
	}
	record.Classification = classification

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record.KnowledgePassages = p.retriever.Retrieve(ctx, request, classification.Category)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record.Escalation = p.escalation.Decide(ctx, request, classification)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record.Response = p.responder.Compose(ctx, record)

	// A cancellation during the generation call must not leak a record
	// built from an abandoned attempt.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.audit != nil {
		if err := p.audit.Record(ctx, record); err != nil {
			p.logger.Warn("Failed to record triage audit entry", zap.Error(err))
		}
	}

	p.logger.Info("Request triaged",
		zap.String("id", record.ID.String()),
		zap.String("category", string(record.Classification.Category)),
		zap.Float64("confidence", record.Classification.Confidence),
		zap.Bool("escalated", record.Escalation.Escalate),
		zap.Int("passages", len(record.KnowledgePassages)),
	)
	return record, nil
}
