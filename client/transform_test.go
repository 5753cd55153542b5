package client

import (
	"encoding/json"
	"testing"
)

func TestTransformQuestionStructuredOptions(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 7,
		"topic_name": "algebra",
		"question_type": "mcq",
		"question_text": "Pick one.",
		"options": [
			{"id": "A", "text": "first"},
			{"id": "B", "text": "second"}
		],
		"difficulty": "easy",
		"points": 10,
		"time_limit_seconds": 90
	}`)

	question, err := TransformQuestion(raw)
	if err != nil {
		t.Fatalf("TransformQuestion() failed: %v", err)
	}

	if question.ID != 7 || question.TopicName != "algebra" {
		t.Errorf("identity fields = %d/%q", question.ID, question.TopicName)
	}
	if len(question.Options) != 2 {
		t.Fatalf("got %d options, want 2", len(question.Options))
	}
	if question.Options[0].ID != "A" || question.Options[1].ID != "B" {
		t.Errorf("option ids = %q, %q", question.Options[0].ID, question.Options[1].ID)
	}
}

func TestTransformQuestionPlainStringOptions(t *testing.T) {
	raw := json.RawMessage(`{
		"question_text": "Pick one.",
		"question_type": "mcq",
		"options": ["first", "second", "third"]
	}`)

	question, err := TransformQuestion(raw)
	if err != nil {
		t.Fatalf("TransformQuestion() failed: %v", err)
	}

	wantIDs := []string{"A", "B", "C"}
	if len(question.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(question.Options))
	}
	for i, option := range question.Options {
		if option.ID != wantIDs[i] {
			t.Errorf("option %d id = %q, want %q", i, option.ID, wantIDs[i])
		}
	}
	if question.Options[1].Text != "second" {
		t.Errorf("option text = %q, want second", question.Options[1].Text)
	}
}

func TestTransformQuestionDefaults(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantPoints int
		wantTime   int
	}{
		{
			name:       "mcq defaults",
			raw:        `{"question_text":"q","question_type":"mcq"}`,
			wantPoints: 10,
			wantTime:   90,
		},
		{
			name:       "fill defaults",
			raw:        `{"question_text":"q","question_type":"fill_in_blank"}`,
			wantPoints: 10,
			wantTime:   60,
		},
		{
			name:       "essay defaults",
			raw:        `{"question_text":"q","question_type":"essay"}`,
			wantPoints: 25,
			wantTime:   600,
		},
		{
			name:       "missing type defaults to mcq",
			raw:        `{"question_text":"q"}`,
			wantPoints: 10,
			wantTime:   90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question, err := TransformQuestion(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("TransformQuestion() failed: %v", err)
			}

			if question.Points != tt.wantPoints {
				t.Errorf("Points = %d, want %d", question.Points, tt.wantPoints)
			}
			if question.TimeLimitSeconds != tt.wantTime {
				t.Errorf("TimeLimitSeconds = %d, want %d", question.TimeLimitSeconds, tt.wantTime)
			}
			if question.Options == nil {
				t.Error("Options is nil, want empty slice")
			}
			if question.Difficulty == "" {
				t.Error("Difficulty defaulted to empty")
			}
		})
	}
}

func TestTransformQuestionRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty payload", ""},
		{"not json", "not json"},
		{"missing text", `{"question_type":"mcq"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TransformQuestion(json.RawMessage(tt.raw)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestTransformFeedbackDefaults(t *testing.T) {
	feedback := TransformFeedback(nil)

	if feedback.Summary == "" {
		t.Error("Summary defaulted to empty")
	}
	if feedback.SuggestedTopics == nil {
		t.Error("SuggestedTopics is nil, want empty slice")
	}
	if feedback.SuggestedDifficulty != "medium" {
		t.Errorf("SuggestedDifficulty = %q, want medium", feedback.SuggestedDifficulty)
	}
	if feedback.ImprovementTrend != "stable" {
		t.Errorf("ImprovementTrend = %q, want stable", feedback.ImprovementTrend)
	}

	full := TransformFeedback(json.RawMessage(`{"summary":"Nice.","suggested_difficulty":"hard","improvement_trend":"improving","suggested_topics":["algebra"]}`))
	if full.Summary != "Nice." || full.SuggestedDifficulty != "hard" {
		t.Errorf("populated feedback overwritten: %+v", full)
	}
}

func TestTransformFeedbackEmptyLists(t *testing.T) {
	feedback := TransformFeedback(json.RawMessage(`{"summary":"ok"}`))

	if feedback.Strengths == nil || feedback.Weaknesses == nil || feedback.Recommendations == nil {
		t.Fatalf("list fields nil after transform: %+v", feedback)
	}

	raw, err := json.Marshal(feedback)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{"strengths", "weaknesses", "recommendations", "suggested_topics"} {
		got, ok := wire[field]
		if !ok {
			t.Errorf("field %s absent after transform, want empty array", field)
			continue
		}
		if string(got) != "[]" {
			t.Errorf("field %s = %s, want []", field, got)
		}
	}
}

func TestTransformFeedbackInnerListDefaults(t *testing.T) {
	feedback := TransformFeedback(json.RawMessage(`{
		"strengths": [{"concept": "fractions", "proficiency_level": 80}],
		"weaknesses": [{"concept": "ratios", "current_level": 40}],
		"recommendations": [{"priority": 1, "action": "review ratios"}]
	}`))

	if len(feedback.Strengths) != 1 || feedback.Strengths[0].Evidence == nil {
		t.Errorf("strength evidence = %+v, want empty slice", feedback.Strengths)
	}
	if len(feedback.Weaknesses) != 1 || feedback.Weaknesses[0].ImprovementSuggestions == nil {
		t.Errorf("weakness suggestions = %+v, want empty slice", feedback.Weaknesses)
	}
	if len(feedback.Recommendations) != 1 || feedback.Recommendations[0].Resources == nil {
		t.Errorf("recommendation resources = %+v, want empty slice", feedback.Recommendations)
	}
}

func TestTransformEvaluationEmptyLists(t *testing.T) {
	eval := TransformEvaluation(Evaluation{IsCorrect: true, Score: 10})

	if eval.Misconceptions == nil || eval.KnowledgeGaps == nil || eval.NextSteps == nil {
		t.Fatalf("list fields nil after transform: %+v", eval)
	}

	kept := TransformEvaluation(Evaluation{Misconceptions: []string{"off by one"}})
	if len(kept.Misconceptions) != 1 || kept.Misconceptions[0] != "off by one" {
		t.Errorf("populated misconceptions overwritten: %+v", kept.Misconceptions)
	}
}
