package agents

import (
	"strings"
	"testing"

	"edusynapse/models"
)

func mcqAssessment() *models.Assessment {
	return &models.Assessment{
		TopicName:    "photosynthesis",
		QuestionType: models.QuestionMCQ,
		QuestionText: "What does photosynthesis produce?",
		Options: models.MustJSON([]models.MCQOption{
			{ID: "A", Text: "Oxygen and glucose", IsCorrect: true},
			{ID: "B", Text: "Carbon dioxide"},
			{ID: "C", Text: "Nitrogen"},
			{ID: "D", Text: "Methane"},
		}),
		Points:   10,
		Concepts: models.MustJSON([]string{"photosynthesis"}),
	}
}

func TestEvaluateMCQ(t *testing.T) {
	tests := []struct {
		name             string
		responseContent  string
		selectedOptionID string
		wantCorrect      bool
		wantScore        float64
	}{
		{"correct option id", "", "A", true, 10},
		{"correct option id lowercase", "", "a", true, 10},
		{"correct answer text", "Oxygen and glucose", "", true, 10},
		{"option text sent as id", "", "Oxygen and glucose", true, 10},
		{"wrong option", "", "B", false, 0},
		{"empty response", "", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := EvaluateResponse(mcqAssessment(), tt.responseContent, tt.selectedOptionID)

			if eval.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", eval.IsCorrect, tt.wantCorrect)
			}
			if eval.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", eval.Score, tt.wantScore)
			}
			if tt.wantCorrect && eval.ConceptualUnderstanding != 100 {
				t.Errorf("ConceptualUnderstanding = %v, want 100", eval.ConceptualUnderstanding)
			}
			if !tt.wantCorrect && eval.ConceptualUnderstanding != 30 {
				t.Errorf("ConceptualUnderstanding = %v, want 30", eval.ConceptualUnderstanding)
			}
			if !tt.wantCorrect && len(eval.Misconceptions) == 0 {
				t.Error("incorrect answer should carry misconceptions")
			}
			if eval.CorrectOptionID != "A" {
				t.Errorf("CorrectOptionID = %q, want A", eval.CorrectOptionID)
			}
		})
	}
}

func TestEvaluateFillInBlank(t *testing.T) {
	assessment := &models.Assessment{
		QuestionType:      models.QuestionFillInBlank,
		QuestionText:      "Plants convert sunlight into _____.",
		BlankAnswer:       "energy",
		AcceptableAnswers: models.MustJSON([]string{"energy", "chemical energy"}),
		Points:            10,
		Concepts:          models.MustJSON([]string{"photosynthesis"}),
	}

	tests := []struct {
		name        string
		response    string
		wantCorrect bool
		wantScore   float64
	}{
		{"exact match", "energy", true, 10},
		{"case insensitive", "ENERGY", true, 10},
		{"acceptable alternative", "chemical energy", true, 10},
		{"partial substring", "ener", false, 5},
		{"wrong answer", "water", false, 0},
		{"empty answer", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := EvaluateResponse(assessment, tt.response, "")

			if eval.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", eval.IsCorrect, tt.wantCorrect)
			}
			if eval.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", eval.Score, tt.wantScore)
			}
		})
	}
}

func TestEvaluateEssayHeuristics(t *testing.T) {
	assessment := &models.Assessment{
		QuestionType: models.QuestionEssay,
		QuestionText: "Explain photosynthesis.",
		ModelAnswer:  "A thorough explanation.",
		Points:       25,
	}

	tests := []struct {
		name              string
		words             int
		wantScore         float64
		wantCorrect       bool
		wantUnderstanding float64
	}{
		{"too short", 5, 0, false, 10},
		{"moderate length", 30, 12.5, false, 50},
		{"substantial", 80, 17.5, true, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := strings.TrimSpace(strings.Repeat("word ", tt.words))
			eval := EvaluateResponse(assessment, response, "")

			if eval.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", eval.Score, tt.wantScore)
			}
			if eval.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", eval.IsCorrect, tt.wantCorrect)
			}
			if eval.ConceptualUnderstanding != tt.wantUnderstanding {
				t.Errorf("ConceptualUnderstanding = %v, want %v", eval.ConceptualUnderstanding, tt.wantUnderstanding)
			}
		})
	}
}

func TestEvaluateAndRecommend(t *testing.T) {
	tests := []struct {
		name             string
		selectedOptionID string
		want             string
	}{
		{"correct with strong understanding", "A", "increase"},
		{"incorrect with weak understanding", "B", "decrease"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := EvaluateAndRecommend(mcqAssessment(), "", tt.selectedOptionID)
			if eval.RecommendedDifficulty != tt.want {
				t.Errorf("RecommendedDifficulty = %q, want %q", eval.RecommendedDifficulty, tt.want)
			}
		})
	}
}

func TestGenerateFromTemplateMCQ(t *testing.T) {
	for i := 0; i < 20; i++ {
		question := generateFromTemplate("algebra", models.QuestionMCQ, "medium", RetrievedContent{})

		if question.QuestionType != models.QuestionMCQ {
			t.Fatalf("QuestionType = %q", question.QuestionType)
		}
		if !question.IsFallback {
			t.Fatal("template question not marked fallback")
		}
		if len(question.Options) != 4 {
			t.Fatalf("got %d options, want 4", len(question.Options))
		}

		correct := 0
		seenIDs := map[string]bool{}
		for _, option := range question.Options {
			if option.IsCorrect {
				correct++
			}
			seenIDs[option.ID] = true
		}
		if correct != 1 {
			t.Fatalf("got %d correct options, want exactly 1", correct)
		}
		for _, id := range []string{"A", "B", "C", "D"} {
			if !seenIDs[id] {
				t.Fatalf("missing option id %s", id)
			}
		}
		if question.Points != mcqPoints || question.TimeLimitSeconds != mcqTimeSeconds {
			t.Fatalf("scoring = %d points / %ds", question.Points, question.TimeLimitSeconds)
		}
		if !strings.Contains(question.QuestionText, "algebra") {
			t.Fatalf("question text missing topic: %q", question.QuestionText)
		}
	}
}

func TestGenerateFromTemplateFillAndEssay(t *testing.T) {
	fill := generateFromTemplate("algebra", models.QuestionFillInBlank, "easy", RetrievedContent{})
	if fill.BlankAnswer == "" {
		t.Error("fill template missing blank answer")
	}
	if len(fill.AcceptableAnswers) < 2 {
		t.Errorf("fill template has %d acceptable answers", len(fill.AcceptableAnswers))
	}
	if fill.Points != fillPoints || fill.TimeLimitSeconds != fillTimeSeconds {
		t.Errorf("fill scoring = %d points / %ds", fill.Points, fill.TimeLimitSeconds)
	}

	essay := generateFromTemplate("algebra", models.QuestionEssay, "hard", RetrievedContent{})
	if len(essay.Rubric) != 4 {
		t.Errorf("essay rubric has %d criteria, want 4", len(essay.Rubric))
	}
	if essay.Points != essayPoints || essay.TimeLimitSeconds != essayTimeSeconds {
		t.Errorf("essay scoring = %d points / %ds", essay.Points, essay.TimeLimitSeconds)
	}
}

func TestSelectQuestionType(t *testing.T) {
	tests := []struct {
		name        string
		recommended string
		history     []string
		wantSame    bool
	}{
		{"fresh history keeps recommendation", "mcq", nil, true},
		{"single occurrence keeps recommendation", "mcq", []string{"mcq", "essay"}, true},
		{"dominant type forces variety", "mcq", []string{"mcq", "mcq", "essay"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectQuestionType(tt.recommended, tt.history)
			if tt.wantSame && got != tt.recommended {
				t.Errorf("selectQuestionType() = %q, want %q", got, tt.recommended)
			}
			if !tt.wantSame && got == tt.recommended {
				t.Errorf("selectQuestionType() = %q, want a different type", got)
			}
		})
	}
}

func TestSelectDifficultyBounds(t *testing.T) {
	valid := map[string]bool{"easy": true, "medium": true, "hard": true}
	for _, accuracy := range []float64{0, 30, 60, 90} {
		for i := 0; i < 50; i++ {
			if got := selectDifficulty("medium", accuracy); !valid[got] {
				t.Fatalf("selectDifficulty(medium, %v) = %q", accuracy, got)
			}
		}
	}
}
