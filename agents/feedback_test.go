package agents

import (
	"strings"
	"testing"
	"time"

	"edusynapse/models"
)

func TestGenerateFeedbackSummaryTiers(t *testing.T) {
	tests := []struct {
		name       string
		eval       Evaluation
		wantPrefix string
	}{
		{
			name:       "correct answer",
			eval:       Evaluation{IsCorrect: true, Score: 10, MaxScore: 10, ConceptualUnderstanding: 100},
			wantPrefix: "Excellent work!",
		},
		{
			name:       "partial credit",
			eval:       Evaluation{Score: 7, MaxScore: 10, ConceptualUnderstanding: 50},
			wantPrefix: "Good effort!",
		},
		{
			name:       "incorrect answer",
			eval:       Evaluation{Score: 0, MaxScore: 10, ConceptualUnderstanding: 30},
			wantPrefix: "Keep practicing!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedback := GenerateFeedback(tt.eval, "algebra", &PipelineContext{})
			if !strings.HasPrefix(feedback.Summary, tt.wantPrefix) {
				t.Errorf("Summary = %q, want prefix %q", feedback.Summary, tt.wantPrefix)
			}
		})
	}
}

func TestGenerateFeedbackStrengthsAndWeaknesses(t *testing.T) {
	correct := GenerateFeedback(
		Evaluation{IsCorrect: true, Score: 10, MaxScore: 10}, "algebra", &PipelineContext{})
	if len(correct.Strengths) != 1 || correct.Strengths[0].Concept != "algebra" {
		t.Errorf("Strengths = %+v, want one entry for algebra", correct.Strengths)
	}
	if len(correct.Weaknesses) != 0 {
		t.Errorf("correct answer produced weaknesses: %+v", correct.Weaknesses)
	}

	incorrect := GenerateFeedback(
		Evaluation{Misconceptions: []string{"Selected incorrect option"}}, "algebra", &PipelineContext{})
	if len(incorrect.Strengths) != 0 {
		t.Errorf("incorrect answer produced strengths: %+v", incorrect.Strengths)
	}
	// topic weakness plus one per misconception
	if len(incorrect.Weaknesses) != 2 {
		t.Errorf("got %d weaknesses, want 2", len(incorrect.Weaknesses))
	}
}

func TestGenerateFeedbackRecommendations(t *testing.T) {
	eval := Evaluation{KnowledgeGaps: []string{"fractions", "decimals", "ratios"}}
	feedback := GenerateFeedback(eval, "math", &PipelineContext{})

	if len(feedback.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(feedback.Recommendations))
	}
	if feedback.Recommendations[0].Priority != 1 ||
		!strings.HasPrefix(feedback.Recommendations[0].Action, "Review:") {
		t.Errorf("first recommendation = %+v", feedback.Recommendations[0])
	}
	if len(feedback.SuggestedTopics) != 3 {
		t.Errorf("SuggestedTopics = %v, want 3 gap topics", feedback.SuggestedTopics)
	}
}

func TestGenerateFeedbackSuggestedDifficulty(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     string
	}{
		{90, "hard"},
		{60, "medium"},
		{30, "easy"},
	}

	for _, tt := range tests {
		feedback := GenerateFeedback(Evaluation{}, "math", &PipelineContext{RecentAccuracy: tt.accuracy})
		if feedback.SuggestedDifficulty != tt.want {
			t.Errorf("accuracy %v: difficulty = %q, want %q", tt.accuracy, feedback.SuggestedDifficulty, tt.want)
		}
	}
}

func TestEncouragementStreakBonus(t *testing.T) {
	long := encouragementFor(true, &PipelineContext{StreakDays: 8})
	if !strings.Contains(long, "8-day streak") {
		t.Errorf("message %q missing long streak mention", long)
	}

	short := encouragementFor(true, &PipelineContext{StreakDays: 4})
	if !strings.Contains(short, "4-day streak") {
		t.Errorf("message %q missing short streak mention", short)
	}

	none := encouragementFor(true, &PipelineContext{StreakDays: 1})
	if strings.Contains(none, "streak") {
		t.Errorf("message %q should not mention streak", none)
	}
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name string
		eval Evaluation
		want float64
	}{
		{
			name: "perfect answer",
			eval: Evaluation{Score: 10, ConceptualUnderstanding: 100},
			want: 90,
		},
		{
			name: "zero answer",
			eval: Evaluation{Score: 0, ConceptualUnderstanding: 0},
			want: 0,
		},
		{
			name: "misconception penalty",
			eval: Evaluation{Score: 10, ConceptualUnderstanding: 100, Misconceptions: []string{"a", "b"}},
			want: 88,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := performanceScore(tt.eval); got != tt.want {
				t.Errorf("performanceScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowTrend(t *testing.T) {
	correct := func(n int) []models.PerformanceEntry {
		out := make([]models.PerformanceEntry, n)
		for i := range out {
			out[i] = models.PerformanceEntry{IsCorrect: true}
		}
		return out
	}
	incorrect := func(n int) []models.PerformanceEntry {
		return make([]models.PerformanceEntry, n)
	}

	tests := []struct {
		name   string
		window []models.PerformanceEntry
		want   string
	}{
		{"too short", correct(3), "stable"},
		{"improving", append(incorrect(5), correct(5)...), "improving"},
		{"declining", append(correct(5), incorrect(5)...), "declining"},
		{"flat", correct(10), "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowTrend(tt.window); got != tt.want {
				t.Errorf("windowTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func sessionWith(answers ...bool) (*models.LearningSession, []models.SessionInteraction) {
	session := &models.LearningSession{
		TopicName:       "algebra",
		TargetQuestions: len(answers),
		StartedAt:       time.Now().Add(-10 * time.Minute),
	}

	var interactions []models.SessionInteraction
	for _, correct := range answers {
		score := 0.0
		if correct {
			score = 10
			session.CorrectAnswers++
		}
		session.QuestionsAnswered++
		session.TotalScore += score
		interactions = append(interactions, models.SessionInteraction{
			Timestamp:  time.Now(),
			IsCorrect:  correct,
			Score:      score,
			Difficulty: "medium",
			Concepts:   []string{"algebra"},
		})
	}
	return session, interactions
}

func TestSummarizeSession(t *testing.T) {
	session, interactions := sessionWith(true, true, true, false)
	summary := SummarizeSession(session, interactions)

	if summary.TotalQuestions != 4 || summary.CorrectAnswers != 3 {
		t.Errorf("counts = %d/%d, want 4/3", summary.TotalQuestions, summary.CorrectAnswers)
	}
	if summary.AccuracyPercent != 75 {
		t.Errorf("accuracy = %v, want 75", summary.AccuracyPercent)
	}
	// algebra at 75% accuracy is a strength but not mastered
	if len(summary.Strengths) != 1 || summary.Strengths[0] != "algebra" {
		t.Errorf("strengths = %v, want [algebra]", summary.Strengths)
	}
	if len(summary.MasteredConcepts) != 0 {
		t.Errorf("mastered = %v, want none", summary.MasteredConcepts)
	}
	if summary.StarRating < 1 || summary.StarRating > 5 {
		t.Errorf("star rating = %d", summary.StarRating)
	}
	if summary.Recommendation == "" || summary.EncouragementNote == "" {
		t.Error("summary missing recommendation or encouragement")
	}
}

func TestSummarizeSessionWeaknesses(t *testing.T) {
	session, interactions := sessionWith(false, false, true)
	for i := range interactions {
		interactions[i].Concepts = []string{"fractions"}
	}

	summary := SummarizeSession(session, interactions)

	if len(summary.Weaknesses) != 1 || summary.Weaknesses[0] != "fractions" {
		t.Errorf("weaknesses = %v, want [fractions]", summary.Weaknesses)
	}
	if len(summary.ImprovementAreas) != 1 {
		t.Errorf("improvement areas = %v", summary.ImprovementAreas)
	}
}

func TestDifficultyTrend(t *testing.T) {
	build := func(levels ...string) []models.SessionInteraction {
		out := make([]models.SessionInteraction, len(levels))
		for i, level := range levels {
			out[i] = models.SessionInteraction{Difficulty: level}
		}
		return out
	}

	tests := []struct {
		name   string
		levels []string
		want   string
	}{
		{"too few", []string{"easy", "hard"}, "stable"},
		{"increasing", []string{"easy", "easy", "hard", "hard"}, "increasing"},
		{"decreasing", []string{"hard", "hard", "easy", "easy"}, "decreasing"},
		{"flat", []string{"medium", "medium", "medium", "medium"}, "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := difficultyTrend(build(tt.levels...)); got != tt.want {
				t.Errorf("difficultyTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsistencyScore(t *testing.T) {
	steady := []models.SessionInteraction{{Score: 10}, {Score: 10}, {Score: 10}}
	if got := consistencyScore(steady); got != 100 {
		t.Errorf("steady scores: consistency = %v, want 100", got)
	}

	erratic := []models.SessionInteraction{{Score: 0}, {Score: 10}, {Score: 0}, {Score: 10}}
	if got := consistencyScore(erratic); got != 0 {
		t.Errorf("erratic scores: consistency = %v, want 0", got)
	}
}

func TestDefaultFeedback(t *testing.T) {
	feedback := DefaultFeedback()

	if feedback.OverallPerformanceScore != 50 {
		t.Errorf("score = %v, want 50", feedback.OverallPerformanceScore)
	}
	if feedback.ImprovementTrend != "stable" {
		t.Errorf("trend = %q, want stable", feedback.ImprovementTrend)
	}
	if len(feedback.Recommendations) != 1 {
		t.Errorf("recommendations = %+v, want exactly one", feedback.Recommendations)
	}
	if feedback.Strengths == nil || feedback.Weaknesses == nil || feedback.SuggestedTopics == nil {
		t.Error("default feedback has nil slices")
	}
}
