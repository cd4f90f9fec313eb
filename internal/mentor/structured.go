package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Vitals of a generated patient
type Vitals struct {
	BP   string `json:"bp"`
	HR   string `json:"hr"`
	RR   string `json:"rr"`
	Temp string `json:"temp"`
	SpO2 string `json:"spo2"`
}

// PatientCase is a generated clinical scenario
type PatientCase struct {
	Title                 string   `json:"title"`
	Age                   int      `json:"age"`
	Gender                string   `json:"gender"`
	ChiefComplaint        string   `json:"chiefComplaint"`
	Presentation          string   `json:"presentation"`
	Vitals                Vitals   `json:"vitals"`
	CorrectDiagnosis      string   `json:"correctDiagnosis"`
	DifferentialDiagnosis []string `json:"differentialDiagnosis"`
	KeyFindings           []string `json:"keyFindings"`
	Fallback              bool     `json:"-"`
}

// Summary renders the case as plain text, without the diagnosis
func (pc PatientCase) Summary() string {
	var sb strings.Builder
	sb.WriteString(pc.Title + "\n")
	if pc.Age > 0 || pc.Gender != "" {
		sb.WriteString(fmt.Sprintf("%d-year-old %s\n", pc.Age, strings.ToLower(pc.Gender)))
	}
	if pc.ChiefComplaint != "" {
		sb.WriteString("Chief complaint: " + pc.ChiefComplaint + "\n")
	}
	if pc.Presentation != "" {
		sb.WriteString(pc.Presentation + "\n")
	}
	v := pc.Vitals
	sb.WriteString(fmt.Sprintf("Vitals: BP %s, HR %s, RR %s, T %s, SpO2 %s", v.BP, v.HR, v.RR, v.Temp, v.SpO2))
	return sb.String()
}

// FlashcardDraft is a generated flashcard not yet stored in a deck
type FlashcardDraft struct {
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	Category          string `json:"category"`
	Difficulty        string `json:"difficulty"`
	ClinicalRelevance string `json:"clinicalRelevance"`
}

// BattleEvaluation scores a battle submission. Each score is 0-100.
type BattleEvaluation struct {
	DiagnosisScore     int      `json:"diagnosisScore"`
	InvestigationScore int      `json:"investigationScore"`
	TreatmentScore     int      `json:"treatmentScore"`
	ReasoningScore     int      `json:"reasoningScore"`
	TotalScore         int      `json:"totalScore"`
	Feedback           string   `json:"feedback"`
	Suggestions        []string `json:"suggestions"`
	Fallback           bool     `json:"-"`
}

func (e BattleEvaluation) sum() int {
	return e.DiagnosisScore + e.InvestigationScore + e.TreatmentScore + e.ReasoningScore
}

// BattleSubmission is what a learner hands in for a battle case
type BattleSubmission struct {
	PatientCase      string
	Questions        []string
	Diagnosis        string
	Treatment        string
	CorrectDiagnosis string
}

// GeneratePatientCase asks for a new case of the given specialty and difficulty
func (m *Mentor) GeneratePatientCase(ctx context.Context, specialty, difficulty string) PatientCase {
	prompt := fmt.Sprintf(`Generate a realistic %s level patient case for %s.

Requirements:
- Age and gender appropriate for the condition
- Realistic chief complaint
- Detailed presentation with symptoms and timeline
- Appropriate vital signs
- Clear correct diagnosis

Respond in this JSON format:
{"title": "", "age": 0, "gender": "", "chiefComplaint": "", "presentation": "",
 "vitals": {"bp": "", "hr": "", "rr": "", "temp": "", "spo2": ""},
 "correctDiagnosis": "", "differentialDiagnosis": [""], "keyFindings": [""]}`, difficulty, specialty)

	var pc PatientCase
	if !m.askJSON(ctx, Request{Kind: KindPatientCase, Prompt: prompt}, &pc) || pc.Title == "" {
		return fallbackPatientCase(specialty, difficulty)
	}
	return pc
}

// GenerateFlashcards asks for count flashcards about topic
func (m *Mentor) GenerateFlashcards(ctx context.Context, topic string, count int) []FlashcardDraft {
	if count <= 0 {
		count = 5
	}
	prompt := fmt.Sprintf(`Generate %d medical flashcards about %s. Each flashcard should test important medical knowledge.

Respond in this JSON format:
[{"question": "", "answer": "", "category": "", "difficulty": "beginner/intermediate/advanced", "clinicalRelevance": ""}]`, count, topic)

	var cards []FlashcardDraft
	if !m.askJSON(ctx, Request{Kind: KindFlashcard, Prompt: prompt}, &cards) || len(cards) == 0 {
		return fallbackFlashcards(topic, count)
	}
	if len(cards) > count {
		cards = cards[:count]
	}
	return cards
}

// EvaluateBattle scores a submission. The total is always the sum of the four scores.
func (m *Mentor) EvaluateBattle(ctx context.Context, sub BattleSubmission) BattleEvaluation {
	prompt := fmt.Sprintf(`You are a medical education evaluator. Assess this student's performance in a diagnostic challenge.

PATIENT CASE:
%s

CORRECT DIAGNOSIS: %s

QUESTIONS ASKED: %s

STUDENT'S DIAGNOSIS: %s

STUDENT'S TREATMENT: %s

Score each category from 0 to 100: diagnosis accuracy, investigation quality, treatment appropriateness, clinical reasoning.

Respond in this exact JSON format:
{"diagnosisScore": 0, "investigationScore": 0, "treatmentScore": 0, "reasoningScore": 0, "totalScore": 0, "feedback": "", "suggestions": ["", "", ""]}`,
		sub.PatientCase, sub.CorrectDiagnosis, strings.Join(sub.Questions, ", "), sub.Diagnosis, sub.Treatment)

	var e BattleEvaluation
	if !m.askJSON(ctx, Request{Kind: KindBattleEvaluation, Prompt: prompt}, &e) {
		return fallbackBattleEvaluation()
	}
	e.DiagnosisScore = clampScore(e.DiagnosisScore)
	e.InvestigationScore = clampScore(e.InvestigationScore)
	e.TreatmentScore = clampScore(e.TreatmentScore)
	e.ReasoningScore = clampScore(e.ReasoningScore)
	e.TotalScore = e.sum()
	return e
}

// askJSON decodes the model's answer into v. It reports false when the
// answer was a fallback or could not be parsed.
func (m *Mentor) askJSON(ctx context.Context, req Request, v interface{}) bool {
	resp := m.Ask(ctx, req)
	if resp.Fallback {
		return false
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), v); err != nil {
		m.logger.Warn("unparseable model output, using fallback", zap.String("kind", string(req.Kind)), zap.Error(err))
		return false
	}
	return true
}

// extractJSON strips a markdown code fence and any prose around the JSON value
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
