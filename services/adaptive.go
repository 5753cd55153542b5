package services

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"edusynapse/models"
)

// DifficultyOrder is the progression ladder from easiest to hardest.
var DifficultyOrder = []string{"beginner", "easy", "medium", "hard", "expert"}

// Difficulty adjustment thresholds.
const (
	IncreaseThreshold         = 0.80
	DecreaseThreshold         = 0.50
	MinQuestionsForAdjustment = 5
)

// NextDifficulty returns the recommended difficulty given recent
// performance. forceDirection "up" or "down" overrides the accuracy check.
func NextDifficulty(current string, recent []models.PerformanceEntry, forceDirection string) string {
	switch forceDirection {
	case "up":
		return IncreaseDifficulty(current)
	case "down":
		return DecreaseDifficulty(current)
	}

	if len(recent) < MinQuestionsForAdjustment {
		return current
	}

	window := recent[len(recent)-MinQuestionsForAdjustment:]
	correct := 0
	for _, entry := range window {
		if entry.IsCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(window))

	if accuracy >= IncreaseThreshold {
		return IncreaseDifficulty(current)
	}
	if accuracy < DecreaseThreshold {
		return DecreaseDifficulty(current)
	}
	return current
}

// IncreaseDifficulty moves one step up the ladder.
func IncreaseDifficulty(current string) string {
	for i, level := range DifficultyOrder {
		if level == current {
			if i < len(DifficultyOrder)-1 {
				return DifficultyOrder[i+1]
			}
			return current
		}
	}
	return current
}

// DecreaseDifficulty moves one step down the ladder.
func DecreaseDifficulty(current string) string {
	for i, level := range DifficultyOrder {
		if level == current {
			if i > 0 {
				return DifficultyOrder[i-1]
			}
			return current
		}
	}
	return current
}

func difficultyIndex(level string) int {
	for i, d := range DifficultyOrder {
		if d == level {
			return i
		}
	}
	return 2 // medium
}

// SelectWeightedDifficulty picks a difficulty for the next question using
// weighted random selection. Weights concentrate around the learner's
// current level; strong recent accuracy shifts weight toward harder levels
// and weak accuracy toward easier ones. A nil profile uses default weights
// favoring medium.
func SelectWeightedDifficulty(profile *models.LearnerProfile) string {
	weights := make([]float64, len(DifficultyOrder))

	if profile == nil {
		weights = []float64{0.1, 0.2, 0.4, 0.2, 0.1}
	} else {
		recentAccuracy := profile.RecentAccuracy(10)
		currentIdx := difficultyIndex(profile.CurrentDifficulty)

		for i := range DifficultyOrder {
			distance := i - currentIdx
			if distance < 0 {
				distance = -distance
			}
			weight := 0.5 - float64(distance)*0.15
			if weight < 0.1 {
				weight = 0.1
			}

			if recentAccuracy > 70 && i > currentIdx {
				weight *= 1.3
			} else if recentAccuracy < 50 && i < currentIdx {
				weight *= 1.3
			}
			weights[i] = weight
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	pick := rand.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return DifficultyOrder[i]
		}
	}
	return DifficultyOrder[len(DifficultyOrder)-1]
}

// PerformanceTrend compares the most recent windowSize entries against the
// windowSize before them. Returns "improving", "stable" or "declining".
func PerformanceTrend(performances []models.PerformanceEntry, windowSize int) string {
	if len(performances) < windowSize*2 {
		return "stable"
	}

	older := performances[len(performances)-windowSize*2 : len(performances)-windowSize]
	recent := performances[len(performances)-windowSize:]

	olderAccuracy := accuracyOf(older)
	recentAccuracy := accuracyOf(recent)

	difference := recentAccuracy - olderAccuracy
	if difference > 0.1 {
		return "improving"
	}
	if difference < -0.1 {
		return "declining"
	}
	return "stable"
}

func accuracyOf(entries []models.PerformanceEntry) float64 {
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

// WeakConcepts returns concepts below the mastery threshold (0-1 scale).
func WeakConcepts(mastery map[string]models.ConceptMastery, threshold float64) []string {
	var weak []string
	for concept, m := range mastery {
		if m.MasteryLevel < threshold*100 {
			weak = append(weak, concept)
		}
	}
	return weak
}

// StrongConcepts returns concepts at or above the mastery threshold.
func StrongConcepts(mastery map[string]models.ConceptMastery, threshold float64) []string {
	var strong []string
	for concept, m := range mastery {
		if m.MasteryLevel >= threshold*100 {
			strong = append(strong, concept)
		}
	}
	return strong
}

// RecommendNextTopic scores available topics by knowledge gaps, weaknesses
// and study recency, returning the best candidate or "" when none.
func RecommendNextTopic(profile *models.LearnerProfile, availableTopics []string) string {
	if len(availableTopics) == 0 {
		return ""
	}

	gaps := lowered(models.StringList(profile.KnowledgeGaps))
	weaknesses := lowered(models.StringList(profile.Weaknesses))

	var progress []models.TopicProgress
	if len(profile.TopicProgress) > 0 {
		progress = decodeTopicProgress(profile.TopicProgress)
	}

	bestTopic := ""
	bestScore := -1.0

	for _, topic := range availableTopics {
		score := 0.5
		key := lower(topic)

		if contains(gaps, key) {
			score += 0.3
		}
		if contains(weaknesses, key) {
			score += 0.2
		}

		for _, p := range progress {
			if lower(p.TopicName) != key {
				continue
			}
			if p.LastStudied != nil {
				daysSince := int(time.Since(*p.LastStudied).Hours() / 24)
				if daysSince > 7 {
					score += 0.1
				} else if daysSince < 1 {
					score -= 0.2
				}
			}
			break
		}

		if score > bestScore {
			bestScore = score
			bestTopic = topic
		}
	}

	return bestTopic
}

// MasteryLevel calculates mastery as a bounded accuracy percentage.
func MasteryLevel(questionsAttempted, questionsCorrect int) float64 {
	if questionsAttempted == 0 {
		return 0
	}
	accuracy := float64(questionsCorrect) / float64(questionsAttempted) * 100
	if accuracy > 100 {
		return 100
	}
	return accuracy
}

// LearningPathStep is one step in a recommended learning path.
type LearningPathStep struct {
	Step       int    `json:"step"`
	Type       string `json:"type"` // prerequisite, main, challenge, review
	Topic      string `json:"topic"`
	Reason     string `json:"reason"`
	Difficulty string `json:"difficulty"`
}

// GenerateLearningPath builds a path toward targetTopic: prerequisites for
// known gaps first, the main topic at current difficulty, a challenge step
// when recent accuracy is strong, then review of weak areas.
func GenerateLearningPath(profile *models.LearnerProfile, targetTopic string, maxSteps int) []LearningPathStep {
	var path []LearningPathStep

	gaps := models.StringList(profile.KnowledgeGaps)
	if len(gaps) > 3 {
		gaps = gaps[:3]
	}
	for _, gap := range gaps {
		path = append(path, LearningPathStep{
			Step:       len(path) + 1,
			Type:       "prerequisite",
			Topic:      gap,
			Reason:     "Building foundation: " + gap,
			Difficulty: "easy",
		})
	}

	path = append(path, LearningPathStep{
		Step:       len(path) + 1,
		Type:       "main",
		Topic:      targetTopic,
		Reason:     "Main topic focus",
		Difficulty: profile.CurrentDifficulty,
	})

	if profile.RecentAccuracy(10) > 70 {
		path = append(path, LearningPathStep{
			Step:       len(path) + 1,
			Type:       "challenge",
			Topic:      targetTopic,
			Reason:     "Challenge yourself",
			Difficulty: IncreaseDifficulty(profile.CurrentDifficulty),
		})
	}

	weaknesses := models.StringList(profile.Weaknesses)
	if len(weaknesses) > 2 {
		weaknesses = weaknesses[:2]
	}
	for _, weakness := range weaknesses {
		path = append(path, LearningPathStep{
			Step:       len(path) + 1,
			Type:       "review",
			Topic:      weakness,
			Reason:     "Strengthen weak area: " + weakness,
			Difficulty: "medium",
		})
	}

	if len(path) > maxSteps {
		path = path[:maxSteps]
	}
	return path
}

func decodeTopicProgress(raw []byte) []models.TopicProgress {
	var progress []models.TopicProgress
	_ = json.Unmarshal(raw, &progress)
	return progress
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowered(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, lower(item))
	}
	return out
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
