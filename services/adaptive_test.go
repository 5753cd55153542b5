package services

import (
	"testing"
	"time"

	"edusynapse/models"
)

func entries(results ...bool) []models.PerformanceEntry {
	out := make([]models.PerformanceEntry, 0, len(results))
	for _, correct := range results {
		out = append(out, models.PerformanceEntry{
			Timestamp:  time.Now(),
			IsCorrect:  correct,
			Difficulty: "medium",
		})
	}
	return out
}

func TestNextDifficulty(t *testing.T) {
	tests := []struct {
		name    string
		current string
		recent  []models.PerformanceEntry
		force   string
		want    string
	}{
		{
			name:    "too few answers keeps level",
			current: "medium",
			recent:  entries(true, true, true),
			want:    "medium",
		},
		{
			name:    "high accuracy moves up",
			current: "medium",
			recent:  entries(true, true, true, true, true),
			want:    "hard",
		},
		{
			name:    "low accuracy moves down",
			current: "medium",
			recent:  entries(false, false, false, true, true),
			want:    "easy",
		},
		{
			name:    "middling accuracy holds",
			current: "medium",
			recent:  entries(true, true, true, false, false),
			want:    "medium",
		},
		{
			name:    "expert has no higher level",
			current: "expert",
			recent:  entries(true, true, true, true, true),
			want:    "expert",
		},
		{
			name:    "beginner has no lower level",
			current: "beginner",
			recent:  entries(false, false, false, false, false),
			want:    "beginner",
		},
		{
			name:    "force up overrides accuracy",
			current: "easy",
			recent:  entries(false, false, false, false, false),
			force:   "up",
			want:    "medium",
		},
		{
			name:    "force down overrides accuracy",
			current: "hard",
			recent:  entries(true, true, true, true, true),
			force:   "down",
			want:    "medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDifficulty(tt.current, tt.recent, tt.force)
			if got != tt.want {
				t.Errorf("NextDifficulty(%q) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}

func TestPerformanceTrend(t *testing.T) {
	tests := []struct {
		name         string
		performances []models.PerformanceEntry
		windowSize   int
		want         string
	}{
		{
			name:         "not enough data",
			performances: entries(true, false, true),
			windowSize:   5,
			want:         "stable",
		},
		{
			name: "improving",
			performances: append(
				entries(false, false, false, false, false),
				entries(true, true, true, true, true)...),
			windowSize: 5,
			want:       "improving",
		},
		{
			name: "declining",
			performances: append(
				entries(true, true, true, true, true),
				entries(false, false, false, false, false)...),
			windowSize: 5,
			want:       "declining",
		},
		{
			name: "stable",
			performances: append(
				entries(true, true, false, false, true),
				entries(true, false, true, false, true)...),
			windowSize: 5,
			want:       "stable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerformanceTrend(tt.performances, tt.windowSize)
			if got != tt.want {
				t.Errorf("PerformanceTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectWeightedDifficultyBounds(t *testing.T) {
	valid := map[string]bool{}
	for _, level := range DifficultyOrder {
		valid[level] = true
	}

	for i := 0; i < 100; i++ {
		if got := SelectWeightedDifficulty(nil); !valid[got] {
			t.Fatalf("SelectWeightedDifficulty(nil) = %q, not a known level", got)
		}
	}

	profile := &models.LearnerProfile{CurrentDifficulty: "medium"}
	for i := 0; i < 100; i++ {
		if got := SelectWeightedDifficulty(profile); !valid[got] {
			t.Fatalf("SelectWeightedDifficulty(profile) = %q, not a known level", got)
		}
	}
}

func TestMasteryLevel(t *testing.T) {
	tests := []struct {
		name      string
		attempted int
		correct   int
		want      float64
	}{
		{"no attempts", 0, 0, 0},
		{"half correct", 10, 5, 50},
		{"all correct", 4, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MasteryLevel(tt.attempted, tt.correct); got != tt.want {
				t.Errorf("MasteryLevel(%d, %d) = %v, want %v", tt.attempted, tt.correct, got, tt.want)
			}
		})
	}
}

func TestWeakAndStrongConcepts(t *testing.T) {
	mastery := map[string]models.ConceptMastery{
		"algebra":  {Concept: "algebra", MasteryLevel: 90},
		"geometry": {Concept: "geometry", MasteryLevel: 40},
		"calculus": {Concept: "calculus", MasteryLevel: 65},
	}

	weak := WeakConcepts(mastery, 0.7)
	if len(weak) != 2 {
		t.Errorf("WeakConcepts returned %v, want 2 entries", weak)
	}

	strong := StrongConcepts(mastery, 0.7)
	if len(strong) != 1 || strong[0] != "algebra" {
		t.Errorf("StrongConcepts returned %v, want [algebra]", strong)
	}
}

func TestRecommendNextTopic(t *testing.T) {
	profile := &models.LearnerProfile{
		KnowledgeGaps: models.MustJSON([]string{"fractions"}),
		Weaknesses:    models.MustJSON([]string{"decimals"}),
	}

	got := RecommendNextTopic(profile, []string{"geometry", "fractions", "decimals"})
	if got != "fractions" {
		t.Errorf("RecommendNextTopic() = %q, want %q", got, "fractions")
	}

	if got := RecommendNextTopic(profile, nil); got != "" {
		t.Errorf("RecommendNextTopic(no topics) = %q, want empty", got)
	}
}

func TestGenerateLearningPath(t *testing.T) {
	profile := &models.LearnerProfile{
		CurrentDifficulty: "medium",
		KnowledgeGaps:     models.MustJSON([]string{"basics"}),
		Weaknesses:        models.MustJSON([]string{"word problems"}),
	}

	path := GenerateLearningPath(profile, "algebra", 10)

	if len(path) == 0 {
		t.Fatal("GenerateLearningPath returned empty path")
	}
	if path[0].Type != "prerequisite" || path[0].Topic != "basics" {
		t.Errorf("first step = %+v, want prerequisite for basics", path[0])
	}

	foundMain := false
	for i, step := range path {
		if step.Step != i+1 {
			t.Errorf("step %d numbered %d", i, step.Step)
		}
		if step.Type == "main" {
			foundMain = true
			if step.Topic != "algebra" || step.Difficulty != "medium" {
				t.Errorf("main step = %+v", step)
			}
		}
	}
	if !foundMain {
		t.Error("path has no main step")
	}

	short := GenerateLearningPath(profile, "algebra", 2)
	if len(short) > 2 {
		t.Errorf("maxSteps not honored, got %d steps", len(short))
	}
}
