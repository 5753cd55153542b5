package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PerformanceWindowSize bounds the rolling performance history kept per learner.
const PerformanceWindowSize = 20

type LearnerProfile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	// Current adaptive state
	CurrentDifficulty  string         `gorm:"default:'medium'" json:"current_difficulty"`
	CurrentFocusTopics datatypes.JSON `json:"current_focus_topics"` // []string
	CustomTopics       datatypes.JSON `json:"custom_topics"`        // []CustomTopic

	// Rolling performance window, newest last
	PerformanceWindow datatypes.JSON `json:"performance_window"` // []PerformanceEntry

	// Overall statistics
	OverallMastery          float64 `gorm:"default:0" json:"overall_mastery"`
	TotalQuestionsAttempted int     `gorm:"default:0" json:"total_questions_attempted"`
	TotalQuestionsCorrect   int     `gorm:"default:0" json:"total_questions_correct"`
	TotalStudyTimeMinutes   int     `gorm:"default:0" json:"total_study_time_minutes"`

	TopicProgress  datatypes.JSON `json:"topic_progress"`  // []TopicProgress
	ConceptMastery datatypes.JSON `json:"concept_mastery"` // map[string]ConceptMastery

	Strengths     datatypes.JSON `json:"strengths"`      // []string, capped
	Weaknesses    datatypes.JSON `json:"weaknesses"`     // []string, capped
	KnowledgeGaps datatypes.JSON `json:"knowledge_gaps"` // []string, capped

	LearningStyle datatypes.JSON `json:"learning_style"` // LearningStyle

	CurrentStreakDays int            `gorm:"default:0" json:"current_streak_days"`
	LongestStreakDays int            `gorm:"default:0" json:"longest_streak_days"`
	Achievements      datatypes.JSON `json:"achievements"` // []string

	PendingRecommendations datatypes.JSON `json:"pending_recommendations"` // []string
	LastSessionPerformance datatypes.JSON `json:"last_session_performance"`

	LastActivityAt *time.Time `json:"last_activity_at"`
	IsDeleted      bool       `gorm:"default:false"`
}

// CustomTopic is a learner-created topic outside the knowledge base.
type CustomTopic struct {
	Name              string     `json:"name"`
	Query             string     `json:"query,omitempty"`
	SessionsCompleted int        `json:"sessions_completed"`
	LastStudied       *time.Time `json:"last_studied"`
}

// PerformanceEntry is one answered question inside the rolling window.
type PerformanceEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Score      float64   `json:"score"`
	Difficulty string    `json:"difficulty"`
	Topic      string    `json:"topic"`
	IsCorrect  bool      `json:"is_correct"`
}

// ConceptMastery tracks mastery for a single concept.
type ConceptMastery struct {
	Concept            string     `json:"concept"`
	MasteryLevel       float64    `json:"mastery_level"` // 0-100
	QuestionsAttempted int        `json:"questions_attempted"`
	QuestionsCorrect   int        `json:"questions_correct"`
	LastAttempted      *time.Time `json:"last_attempted"`
	Trend              string     `json:"trend"` // improving, stable, declining
}

// TopicProgress tracks progress within one topic.
type TopicProgress struct {
	TopicID           string     `json:"topic_id"`
	TopicName         string     `json:"topic_name"`
	OverallMastery    float64    `json:"overall_mastery"`
	SessionsCompleted int        `json:"sessions_completed"`
	TotalTimeMinutes  int        `json:"total_time_minutes"`
	LastStudied       *time.Time `json:"last_studied"`
}

// LearningStyle holds detected modality preferences.
type LearningStyle struct {
	Visual   float64 `json:"visual"`
	Auditory float64 `json:"auditory"`
	Reading  float64 `json:"reading"`

	BestTimeOfDay         string `json:"best_time_of_day"`
	OptimalSessionLength  int    `json:"optimal_session_length"`
	DifficultyProgression string `json:"preferred_difficulty_progression"`
}

// DefaultLearningStyle returns the style assigned to new profiles.
func DefaultLearningStyle() LearningStyle {
	return LearningStyle{
		Visual:                0.33,
		Auditory:              0.33,
		Reading:               0.34,
		OptimalSessionLength:  20,
		DifficultyProgression: "gradual",
	}
}

// Accuracy returns overall accuracy as a percentage.
func (p *LearnerProfile) Accuracy() float64 {
	if p.TotalQuestionsAttempted == 0 {
		return 0
	}
	return float64(p.TotalQuestionsCorrect) / float64(p.TotalQuestionsAttempted) * 100
}

// Window decodes the performance window; returns nil on empty or bad data.
func (p *LearnerProfile) Window() []PerformanceEntry {
	var window []PerformanceEntry
	if len(p.PerformanceWindow) > 0 {
		_ = json.Unmarshal(p.PerformanceWindow, &window)
	}
	return window
}

// AddPerformance appends an entry and trims the window to its bound.
func (p *LearnerProfile) AddPerformance(score float64, difficulty, topic string, isCorrect bool) {
	window := p.Window()
	window = append(window, PerformanceEntry{
		Timestamp:  time.Now().UTC(),
		Score:      score,
		Difficulty: difficulty,
		Topic:      topic,
		IsCorrect:  isCorrect,
	})
	if len(window) > PerformanceWindowSize {
		window = window[len(window)-PerformanceWindowSize:]
	}
	raw, _ := json.Marshal(window)
	p.PerformanceWindow = raw
}

// RecentAccuracy returns accuracy over the last n window entries.
func (p *LearnerProfile) RecentAccuracy(n int) float64 {
	window := p.Window()
	if len(window) > n {
		window = window[len(window)-n:]
	}
	if len(window) == 0 {
		return 0
	}
	correct := 0
	for _, entry := range window {
		if entry.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(window)) * 100
}

// StringList decodes a JSON column holding a string slice.
func StringList(raw datatypes.JSON) []string {
	var list []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &list)
	}
	return list
}

// MustJSON marshals v into a JSON column value.
func MustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return raw
}
