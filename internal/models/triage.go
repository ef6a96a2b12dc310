package models

import (
	"time"

	"github.com/google/uuid"
)

// ClassificationResult is the classifier's verdict for one request.
// Confidence is the cosine similarity against the winning category
// description, clamped to [0, 1].
type ClassificationResult struct {
	Category   RequestCategory `json:"category"`
	Confidence float64         `json:"confidence"`
}

// KnowledgePassage is a single retrieval result from the knowledge index.
type KnowledgePassage struct {
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

// EscalationDecision records whether a request must be routed to a human.
// Reason and Contact are empty when Escalate is false; Contact may also be
// empty for rules that have no dedicated contact.
type EscalationDecision struct {
	Escalate bool   `json:"escalate"`
	Reason   string `json:"reason,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// TriageRecord is the per-request aggregate assembled by the pipeline.
// Each stage writes exactly one field and later stages only read earlier
// ones; the record is never shared across requests.
type TriageRecord struct {
	ID                uuid.UUID            `json:"id"`
	Request           string               `json:"request"`
	UserID            string               `json:"user_id,omitempty"`
	Classification    ClassificationResult `json:"classification"`
	KnowledgePassages []KnowledgePassage   `json:"knowledge_items"`
	Escalation        EscalationDecision   `json:"escalation"`
	Response          string               `json:"response"`
	CreatedAt         time.Time            `json:"created_at"`
}
