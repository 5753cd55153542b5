package agents

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"edusynapse/models"
)

var (
	encouragementCorrect = []string{
		"Great job! You're really getting the hang of this.",
		"Excellent! Your hard work is paying off.",
		"Well done! Keep this momentum going.",
		"Fantastic! You clearly understand this material.",
	}
	encouragementStrong = []string{
		"Not quite, but you're doing well overall. Keep it up!",
		"Close one! Your recent progress shows you'll get the next one.",
		"Don't worry about this miss, your overall trend is strong.",
	}
	encouragementDefault = []string{
		"Every question is a chance to learn. Keep going!",
		"Mistakes are part of learning. You're building understanding.",
		"Stay with it. Progress comes from practice.",
		"You're putting in the effort, and that's what counts.",
	}
)

// GenerateFeedback builds learner-facing feedback from an evaluation,
// entirely rule-based so it works without an LLM.
func GenerateFeedback(eval Evaluation, topic string, pctx *PipelineContext) FeedbackResult {
	feedback := FeedbackResult{
		Strengths:       []models.StrengthArea{},
		Weaknesses:      []models.WeaknessArea{},
		Recommendations: []models.LearningRecommendation{},
		SuggestedTopics: []string{},
	}

	maxScore := eval.MaxScore
	if maxScore == 0 {
		maxScore = 10
	}

	switch {
	case eval.IsCorrect:
		feedback.Summary = "Excellent work! You answered correctly and showed solid understanding."
	case eval.Score > maxScore*0.5:
		feedback.Summary = "Good effort! You're on the right track, with room to sharpen the details."
	default:
		feedback.Summary = "Keep practicing! This concept needs more attention, and that's okay."
	}
	feedback.DetailedFeedback = eval.Explanation

	if eval.IsCorrect {
		feedback.Strengths = append(feedback.Strengths, models.StrengthArea{
			Concept:          topic,
			ProficiencyLevel: 70,
			Evidence:         []string{"Answered correctly"},
		})
	} else {
		feedback.Weaknesses = append(feedback.Weaknesses, models.WeaknessArea{
			Concept:      topic,
			CurrentLevel: 40,
			TargetLevel:  80,
			ImprovementSuggestions: []string{
				"Review the explanation for this question",
				"Try related practice questions",
				"Revisit the source material",
			},
		})
	}
	for _, misconception := range eval.Misconceptions {
		feedback.Weaknesses = append(feedback.Weaknesses, models.WeaknessArea{
			Concept:                misconception,
			CurrentLevel:           30,
			TargetLevel:            70,
			ImprovementSuggestions: []string{"Work through the concept step by step"},
		})
	}

	if len(eval.KnowledgeGaps) > 0 {
		gaps := eval.KnowledgeGaps
		if len(gaps) > 2 {
			gaps = gaps[:2]
		}
		feedback.Recommendations = append(feedback.Recommendations, models.LearningRecommendation{
			Priority:             1,
			Action:               "Review: " + strings.Join(gaps, ", "),
			Reason:               "Identified knowledge gaps from this response",
			EstimatedTimeMinutes: 15,
		})
	}
	feedback.Recommendations = append(feedback.Recommendations, models.LearningRecommendation{
		Priority:             2,
		Action:               "Practice more questions",
		Reason:               "Reinforce the concept through repetition",
		EstimatedTimeMinutes: 20,
	})

	switch {
	case pctx.RecentAccuracy > 80:
		feedback.SuggestedDifficulty = "hard"
	case pctx.RecentAccuracy > 50:
		feedback.SuggestedDifficulty = "medium"
	default:
		feedback.SuggestedDifficulty = "easy"
	}

	if len(eval.KnowledgeGaps) > 0 {
		topics := eval.KnowledgeGaps
		if len(topics) > 3 {
			topics = topics[:3]
		}
		feedback.SuggestedTopics = topics
	} else if topic != "" {
		feedback.SuggestedTopics = []string{topic}
	}

	feedback.EncouragementMessage = encouragementFor(eval.IsCorrect, pctx)
	feedback.OverallPerformanceScore = performanceScore(eval)
	feedback.ImprovementTrend = windowTrend(pctx.PerformanceWindow)

	return feedback
}

// DefaultFeedback is returned when the pipeline fails before feedback.
func DefaultFeedback() FeedbackResult {
	return FeedbackResult{
		Summary:          "Your response has been recorded.",
		DetailedFeedback: "Detailed feedback is unavailable right now.",
		Strengths:        []models.StrengthArea{},
		Weaknesses:       []models.WeaknessArea{},
		Recommendations: []models.LearningRecommendation{
			{Priority: 1, Action: "Continue practicing", Reason: "Consistent practice builds mastery", EstimatedTimeMinutes: 20},
		},
		SuggestedTopics:         []string{},
		SuggestedDifficulty:     "medium",
		EncouragementMessage:    "Keep going!",
		OverallPerformanceScore: 50,
		ImprovementTrend:        "stable",
	}
}

func encouragementFor(isCorrect bool, pctx *PipelineContext) string {
	var pool []string
	switch {
	case isCorrect:
		pool = encouragementCorrect
	case pctx.RecentAccuracy > 70:
		pool = encouragementStrong
	default:
		pool = encouragementDefault
	}

	message := pool[rand.Intn(len(pool))]

	if pctx.StreakDays >= 7 {
		message += fmt.Sprintf(" Amazing %d-day streak!", pctx.StreakDays)
	} else if pctx.StreakDays >= 3 {
		message += fmt.Sprintf(" You're on a %d-day streak!", pctx.StreakDays)
	}
	return message
}

// performanceScore blends normalized score, understanding, and a penalty
// per misconception into a 0-100 value.
func performanceScore(eval Evaluation) float64 {
	normalized := (eval.Score / 10) * 100
	if normalized > 100 {
		normalized = 100
	}

	score := normalized*0.5 + eval.ConceptualUnderstanding*0.4 - float64(len(eval.Misconceptions))*10*0.1
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// windowTrend compares the latest five results against the five before.
func windowTrend(window []models.PerformanceEntry) string {
	if len(window) < 5 {
		return "stable"
	}

	recent := window[len(window)-5:]

	var older []models.PerformanceEntry
	if len(window) >= 10 {
		older = window[len(window)-10 : len(window)-5]
	} else {
		older = window[:len(window)/2]
	}
	if len(older) == 0 {
		return "stable"
	}

	diff := accuracyOfEntries(recent) - accuracyOfEntries(older)
	if diff > 0.15 {
		return "improving"
	}
	if diff < -0.15 {
		return "declining"
	}
	return "stable"
}

func accuracyOfEntries(entries []models.PerformanceEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	correct := 0
	for _, entry := range entries {
		if entry.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(entries))
}

// SessionSummary aggregates a completed session into strengths, weaknesses
// and an overall rating.
type SessionSummary struct {
	TotalQuestions    int      `json:"total_questions"`
	CorrectAnswers    int      `json:"correct_answers"`
	AccuracyPercent   float64  `json:"accuracy_percent"`
	TotalScore        float64  `json:"total_score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	MasteredConcepts  []string `json:"mastered_concepts"`
	ImprovementAreas  []string `json:"improvement_areas"`
	DifficultyTrend   string   `json:"difficulty_trend"`
	ConsistencyScore  float64  `json:"consistency_score"`
	OverallRating     float64  `json:"overall_rating"`
	StarRating        int      `json:"star_rating"`
	Recommendation    string   `json:"recommendation"`
	EncouragementNote string   `json:"encouragement_note"`
}

// SummarizeSession builds the end-of-session report from interactions.
func SummarizeSession(session *models.LearningSession, interactions []models.SessionInteraction) SessionSummary {
	summary := SessionSummary{
		TotalQuestions:   session.QuestionsAnswered,
		CorrectAnswers:   session.CorrectAnswers,
		AccuracyPercent:  session.Accuracy(),
		TotalScore:       session.TotalScore,
		Strengths:        []string{},
		Weaknesses:       []string{},
		MasteredConcepts: []string{},
		ImprovementAreas: []string{},
	}

	type conceptStats struct {
		attempted int
		correct   int
	}
	stats := make(map[string]*conceptStats)
	for _, interaction := range interactions {
		for _, concept := range interaction.Concepts {
			if stats[concept] == nil {
				stats[concept] = &conceptStats{}
			}
			stats[concept].attempted++
			if interaction.IsCorrect {
				stats[concept].correct++
			}
		}
	}

	type scoredConcept struct {
		name     string
		accuracy float64
	}
	var strengths, weaknesses []scoredConcept
	for concept, s := range stats {
		accuracy := float64(s.correct) / float64(s.attempted) * 100
		if accuracy >= 70 {
			strengths = append(strengths, scoredConcept{concept, accuracy})
			if accuracy >= 90 {
				summary.MasteredConcepts = append(summary.MasteredConcepts, concept)
			}
		} else {
			weaknesses = append(weaknesses, scoredConcept{concept, accuracy})
		}
	}
	sort.Slice(strengths, func(i, j int) bool { return strengths[i].accuracy > strengths[j].accuracy })
	sort.Slice(weaknesses, func(i, j int) bool { return weaknesses[i].accuracy < weaknesses[j].accuracy })

	for i, s := range strengths {
		if i >= 5 {
			break
		}
		summary.Strengths = append(summary.Strengths, s.name)
	}
	for i, w := range weaknesses {
		if i >= 5 {
			break
		}
		summary.Weaknesses = append(summary.Weaknesses, w.name)
		if i < 3 {
			summary.ImprovementAreas = append(summary.ImprovementAreas, w.name)
		}
	}

	summary.DifficultyTrend = difficultyTrend(interactions)
	summary.ConsistencyScore = consistencyScore(interactions)

	avgDifficulty := averageDifficulty(interactions)
	rating := summary.AccuracyPercent*0.5 + avgDifficulty*10 + summary.ConsistencyScore*0.2
	if rating > 100 {
		rating = 100
	}
	summary.OverallRating = rating

	switch {
	case rating >= 90:
		summary.StarRating = 5
	case rating >= 75:
		summary.StarRating = 4
	case rating >= 60:
		summary.StarRating = 3
	case rating >= 40:
		summary.StarRating = 2
	default:
		summary.StarRating = 1
	}

	switch {
	case summary.AccuracyPercent >= 80:
		summary.Recommendation = "You're ready for harder material. Try the next difficulty level."
		summary.EncouragementNote = "Outstanding session!"
	case summary.AccuracyPercent >= 60:
		summary.Recommendation = "Solid progress. Mix in a few harder questions next session."
		summary.EncouragementNote = "Good, consistent work."
	case summary.AccuracyPercent >= 40:
		summary.Recommendation = "Review the improvement areas before moving on."
		summary.EncouragementNote = "You're building understanding."
	default:
		summary.Recommendation = "Revisit the fundamentals at an easier difficulty."
		summary.EncouragementNote = "Every session makes you stronger."
	}

	return summary
}

// difficultyTrend compares average numeric difficulty of the second half
// of the session against the first.
func difficultyTrend(interactions []models.SessionInteraction) string {
	if len(interactions) < 4 {
		return "stable"
	}

	numeric := map[string]float64{"easy": 1, "medium": 2, "hard": 3}
	half := len(interactions) / 2

	avg := func(part []models.SessionInteraction) float64 {
		if len(part) == 0 {
			return 0
		}
		var total float64
		for _, interaction := range part {
			if v, ok := numeric[interaction.Difficulty]; ok {
				total += v
			} else {
				total += 2
			}
		}
		return total / float64(len(part))
	}

	diff := avg(interactions[half:]) - avg(interactions[:half])
	if diff > 0.5 {
		return "increasing"
	}
	if diff < -0.5 {
		return "decreasing"
	}
	return "stable"
}

// consistencyScore rewards steady per-question scores, penalizing spread.
func consistencyScore(interactions []models.SessionInteraction) float64 {
	if len(interactions) < 2 {
		return 100
	}

	var total float64
	for _, interaction := range interactions {
		total += interaction.Score
	}
	mean := total / float64(len(interactions))

	var variance float64
	for _, interaction := range interactions {
		diff := interaction.Score - mean
		variance += diff * diff
	}
	variance /= float64(len(interactions))
	stddev := math.Sqrt(variance)

	score := 100 - stddev/5*100
	if score < 0 {
		return 0
	}
	return score
}

func averageDifficulty(interactions []models.SessionInteraction) float64 {
	if len(interactions) == 0 {
		return 2
	}
	numeric := map[string]float64{"easy": 1, "medium": 2, "hard": 3}
	var total float64
	for _, interaction := range interactions {
		if v, ok := numeric[interaction.Difficulty]; ok {
			total += v
		} else {
			total += 2
		}
	}
	return total / float64(len(interactions))
}
