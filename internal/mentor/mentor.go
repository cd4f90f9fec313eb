// Package mentor asks a language model for study help and falls back to
// canned answers when the model is unavailable.
package mentor

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/novalearn/internal/catalog"
	"go.uber.org/zap"
)

// Kind selects the prompt template
type Kind string

const (
	KindFlashcard        Kind = "flashcard"
	KindPatientCase      Kind = "patient_case"
	KindDiagnosis        Kind = "diagnosis"
	KindMentorChat       Kind = "mentor_chat"
	KindStudyAnalysis    Kind = "study_analysis"
	KindBattleEvaluation Kind = "battle_evaluation"
)

const generalDomainContext = "Draw on general medical knowledge and evidence-based practice."

// Request is a question for the mentor
type Request struct {
	Kind   Kind
	Domain string // domain ID, e.g. "internal-medicine"
	Prompt string
}

// Response is the mentor's answer
type Response struct {
	Content  string
	Fallback bool
}

// Mentor answers study questions
type Mentor struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a mentor. A nil generator always answers with fallbacks.
func New(gen Generator, logger *zap.Logger) *Mentor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mentor{gen: gen, logger: logger.Named("mentor")}
}

// Available reports whether a model is configured
func (m *Mentor) Available() bool {
	return m.gen != nil
}

// Ask answers req, falling back to a canned response on any failure
func (m *Mentor) Ask(ctx context.Context, req Request) Response {
	if m.gen == nil {
		return fallbackResponse(req)
	}

	content, err := m.gen.Generate(ctx, buildPrompt(req))
	if err != nil {
		m.logger.Warn("generation failed, using fallback", zap.String("kind", string(req.Kind)), zap.Error(err))
		return fallbackResponse(req)
	}
	if strings.TrimSpace(content) == "" {
		m.logger.Warn("empty response, using fallback", zap.String("kind", string(req.Kind)))
		return fallbackResponse(req)
	}
	return Response{Content: content}
}

func domainName(id string) string {
	if d, ok := catalog.DomainByID(id); ok {
		return d.Name
	}
	if id == "" {
		return "medicine"
	}
	return id
}

func domainContext(id string) string {
	if d, ok := catalog.DomainByID(id); ok && d.Context != "" {
		return d.Context
	}
	return generalDomainContext
}

func buildPrompt(req Request) string {
	name := domainName(req.Domain)
	ctx := domainContext(req.Domain)

	switch req.Kind {
	case KindFlashcard:
		return fmt.Sprintf("As a medical education expert in %s, create educational flashcards: %s. %s Keep the content evidence-based and clinically relevant.", name, req.Prompt, ctx)
	case KindPatientCase:
		return fmt.Sprintf("Generate a realistic patient case for %s: %s. %s Include an appropriate clinical presentation with educational value for medical students.", name, req.Prompt, ctx)
	case KindDiagnosis:
		return fmt.Sprintf("As a medical AI assistant specializing in %s, help with diagnosis: %s. %s Consider differential diagnoses and evidence-based clinical reasoning.", name, req.Prompt, ctx)
	case KindMentorChat:
		return fmt.Sprintf("As an empathetic medical mentor specializing in %s, respond to: %s. %s Encourage critical thinking and give supportive guidance.", name, req.Prompt, ctx)
	case KindStudyAnalysis:
		return fmt.Sprintf("Analyze this medical study material for %s: %s. %s Identify knowledge gaps and suggest focused review areas.", name, req.Prompt, ctx)
	case KindBattleEvaluation:
		return req.Prompt
	}
	return fmt.Sprintf("In the medical context of %s (%s): %s", name, ctx, req.Prompt)
}
