package dto

import "helpdesk-triage/internal/models"

type SupportRequest struct {
	Request string `json:"request"`
	UserID  string `json:"user_id,omitempty"`
}

type ClassificationResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type KnowledgeItemResponse struct {
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

type SupportResponse struct {
	ID                string                  `json:"id"`
	Request           string                  `json:"request"`
	UserID            string                  `json:"user_id,omitempty"`
	Classification    ClassificationResponse  `json:"classification"`
	KnowledgeItems    []KnowledgeItemResponse `json:"knowledge_items"`
	Escalate          bool                    `json:"escalate"`
	EscalationReason  string                  `json:"escalation_reason,omitempty"`
	EscalationContact string                  `json:"escalation_contact,omitempty"`
	Response          string                  `json:"response"`
	CreatedAt         string                  `json:"created_at"`
}

// FromRecord flattens a triage record into the wire shape.
func FromRecord(record *models.TriageRecord) SupportResponse {
	items := make([]KnowledgeItemResponse, 0, len(record.KnowledgePassages))
	for _, p := range record.KnowledgePassages {
		items = append(items, KnowledgeItemResponse{
			Content:        p.Content,
			Source:         p.Source,
			RelevanceScore: p.RelevanceScore,
		})
	}

	return SupportResponse{
		ID:      record.ID.String(),
		Request: record.Request,
		UserID:  record.UserID,
		Classification: ClassificationResponse{
			Category:   string(record.Classification.Category),
			Confidence: record.Classification.Confidence,
		},
		KnowledgeItems:    items,
		Escalate:          record.Escalation.Escalate,
		EscalationReason:  record.Escalation.Reason,
		EscalationContact: record.Escalation.Contact,
		Response:          record.Response,
		CreatedAt:         record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
