package service

import (
	"context"
	"fmt"
	"strings"

	"helpdesk-triage/internal/models"

	"go.uber.org/zap"
)

// Number of leading characters of the best passage used in the
// deterministic fallback answer.
const fallbackExcerptLen = 200

const responsePromptTemplate = `You are a helpful IT support assistant. A user has submitted the following request:

REQUEST: %s
CATEGORY: %s

RELEVANT KNOWLEDGE BASE INFORMATION:
%s

Please provide a helpful, concise response that:
1. Directly addresses the user's request
2. Uses the relevant knowledge base information
3. Provides clear, actionable steps when possible
4. Maintains a professional but friendly tone
5. Keeps the response under 200 words

RESPONSE:`

// Responder composes the final answer. Escalated requests get a
// deterministic notice with no external calls; everything else gets one
// bounded generation attempt, falling back to a templated answer on any
// failure. Compose never returns an empty string.
type Responder struct {
	generator Generator
	logger    *zap.Logger
}

func NewResponder(generator Generator, logger *zap.Logger) *Responder {
	return &Responder{
		generator: generator,
		logger:    logger,
	}
}

func (r *Responder) Compose(ctx context.Context, record *models.TriageRecord) string {
	if record.Escalation.Escalate {
		return escalationNotice(record.Escalation.Reason)
	}

	prompt := buildPrompt(record.Request, record.Classification.Category, record.KnowledgePassages)

	response, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		r.logger.Warn("Generation failed, using fallback response", zap.Error(err))
		return fallbackResponse(record.Classification.Category, record.KnowledgePassages)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		r.logger.Warn("Generation returned empty output, using fallback response")
		return fallbackResponse(record.Classification.Category, record.KnowledgePassages)
	}
	return response
}

func escalationNotice(reason string) string {
	parts := []string{"This request has been escalated to our support team."}
	if reason != "" {
		parts = append(parts, reason+".")
	}
	parts = append(parts, "You will receive a response within the next business hour.")
	return strings.Join(parts, " ")
}

func buildPrompt(request string, category models.RequestCategory, passages []models.KnowledgePassage) string {
	contexts := make([]string, 0, len(passages))
	for _, p := range passages {
		contexts = append(contexts, fmt.Sprintf("Source: %s\nContent: %s", p.Source, p.Content))
	}
	return fmt.Sprintf(responsePromptTemplate, request, category, strings.Join(contexts, "\n\n"))
}

func fallbackResponse(category models.RequestCategory, passages []models.KnowledgePassage) string {
	if len(passages) == 0 {
		return fmt.Sprintf("I understand you have a %s issue. Please contact IT support for assistance.", category.Human())
	}
	return fmt.Sprintf(
		"Based on our knowledge base, here's what I found: %s... For more detailed assistance, please contact IT support.",
		truncateRunes(passages[0].Content, fallbackExcerptLen),
	)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
