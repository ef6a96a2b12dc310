// Package repository persists the optional audit trail of processed
// requests. The triage pipeline itself keeps no state; this trail exists so
// operators can review past decisions.
package repository

import (
	"context"
	"fmt"

	"helpdesk-triage/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createTriageTable = `
CREATE TABLE IF NOT EXISTS triage_requests (
	id UUID PRIMARY KEY,
	user_id TEXT,
	request TEXT NOT NULL,
	category TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	escalated BOOLEAN NOT NULL,
	escalation_reason TEXT,
	escalation_contact TEXT,
	response TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

type TriageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTriageRepository(db *pgxpool.Pool, logger *zap.Logger) *TriageRepository {
	return &TriageRepository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the audit table if it does not exist.
func (r *TriageRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTriageTable); err != nil {
		return fmt.Errorf("failed to create triage_requests table: %w", err)
	}
	return nil
}

// Record stores one finished triage record.
func (r *TriageRepository) Record(ctx context.Context, record *models.TriageRecord) error {
	query := squirrel.Insert("triage_requests").
		Columns("id", "user_id", "request", "category", "confidence",
			"escalated", "escalation_reason", "escalation_contact", "response", "created_at").
		Values(record.ID, record.UserID, record.Request, record.Classification.Category,
			record.Classification.Confidence, record.Escalation.Escalate,
			record.Escalation.Reason, record.Escalation.Contact, record.Response, record.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListRecent returns the newest records first.
func (r *TriageRepository) ListRecent(ctx context.Context, limit int) ([]*models.TriageRecord, error) {
	query := squirrel.Select("id", "user_id", "request", "category", "confidence",
		"escalated", "escalation_reason", "escalation_contact", "response", "created_at").
		From("triage_requests").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.TriageRecord
	for rows.Next() {
		var rec models.TriageRecord
		var category string
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Request, &category, &rec.Classification.Confidence,
			&rec.Escalation.Escalate, &rec.Escalation.Reason, &rec.Escalation.Contact,
			&rec.Response, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if parsed, ok := models.ParseCategory(category); ok {
			rec.Classification.Category = parsed
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
