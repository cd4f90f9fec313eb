package mentor

import "fmt"

const demoNote = "\n\n_Demo response: set GEMINI_API_KEY for AI answers._"

func fallbackResponse(req Request) Response {
	name := domainName(req.Domain)

	var content string
	switch req.Kind {
	case KindFlashcard:
		content = fmt.Sprintf("*Flashcard: %s*\n\nQ: What is a key concept in %s?\nA: Review the core mechanisms and their clinical correlations.", name, name)
	case KindPatientCase:
		content = fmt.Sprintf("*Patient case: %s*\n\nA patient presents with symptoms related to %s. Work through:\n- Comprehensive history taking\n- Focused physical examination\n- Appropriate investigations\n- Evidence-based treatment planning", name, name)
	case KindDiagnosis:
		content = fmt.Sprintf("*Diagnostic approach: %s*\n\n1. History\n2. Examination\n3. Investigations\n4. Differential diagnosis and clinical reasoning", name)
	case KindMentorChat:
		content = fmt.Sprintf("*Mentor*\n\nIn %s, think systematically: pathophysiology first, then presentation, then evidence-based management.\n\nWhat aspect of %s would you like to explore further?", name, name)
	case KindStudyAnalysis:
		content = fmt.Sprintf("*Study analysis: %s*\n\nReview related pathophysiology, clinical correlations, and current guidelines. Practice with clinical scenarios and revisit high-yield facts regularly.", name)
	case KindBattleEvaluation:
		content = `{"diagnosisScore": 75, "investigationScore": 70, "treatmentScore": 72, "reasoningScore": 74, "feedback": "Good clinical approach. Keep developing systematic diagnostic skills.", "suggestions": ["Review differential diagnosis techniques", "Consider additional investigations", "Focus on evidence-based treatment protocols"]}`
		return Response{Content: content, Fallback: true}
	default:
		content = fmt.Sprintf("*Learning assistant*\n\nHere is guidance for your %s studies.", name)
	}
	return Response{Content: content + demoNote, Fallback: true}
}

func fallbackPatientCase(specialty string, difficulty string) PatientCase {
	return PatientCase{
		Title:          fmt.Sprintf("%s Case Study (Demo)", specialty),
		Age:            45,
		Gender:         "Male",
		ChiefComplaint: "Presenting symptoms related to " + specialty,
		Presentation:   fmt.Sprintf("Patient presents with %s-level findings requiring %s evaluation and management.", difficulty, specialty),
		Vitals: Vitals{
			BP:   "120/80",
			HR:   "80",
			RR:   "16",
			Temp: "98.6°F",
			SpO2: "98%",
		},
		CorrectDiagnosis:      specialty + " condition requiring further evaluation",
		DifferentialDiagnosis: []string{"Alternative diagnosis 1", "Alternative diagnosis 2"},
		KeyFindings:           []string{"Clinical finding 1", "Clinical finding 2", "Clinical finding 3"},
		Fallback:              true,
	}
}

func fallbackFlashcards(topic string, count int) []FlashcardDraft {
	cards := make([]FlashcardDraft, count)
	for i := range cards {
		cards[i] = FlashcardDraft{
			Question:          fmt.Sprintf("What is an important concept in %s? (Demo Question %d)", topic, i+1),
			Answer:            fmt.Sprintf("A key concept related to %s that every student should understand.", topic),
			Category:          topic,
			Difficulty:        "intermediate",
			ClinicalRelevance: fmt.Sprintf("Understanding this concept is crucial for clinical practice in %s.", topic),
		}
	}
	return cards
}

func fallbackBattleEvaluation() BattleEvaluation {
	e := BattleEvaluation{
		DiagnosisScore:     75,
		InvestigationScore: 70,
		TreatmentScore:     72,
		ReasoningScore:     74,
		Feedback:           "Good clinical reasoning. Keep developing systematic diagnostic approaches.",
		Suggestions: []string{
			"Review differential diagnosis techniques",
			"Practice evidence-based medicine",
			"Focus on patient safety considerations",
		},
		Fallback: true,
	}
	e.TotalScore = e.sum()
	return e
}
