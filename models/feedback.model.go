package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StrengthArea is a concept the learner handles well.
type StrengthArea struct {
	Concept          string   `json:"concept"`
	ProficiencyLevel float64  `json:"proficiency_level"` // 0-100
	Evidence         []string `json:"evidence"`
}

// WeaknessArea is a concept needing improvement.
type WeaknessArea struct {
	Concept                string   `json:"concept"`
	CurrentLevel           float64  `json:"current_level"` // 0-100
	TargetLevel            float64  `json:"target_level"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// LearningRecommendation is a prioritized next action.
type LearningRecommendation struct {
	Priority             int      `json:"priority"` // 1 = highest
	Action               string   `json:"action"`
	Reason               string   `json:"reason"`
	Resources            []string `json:"resources"`
	EstimatedTimeMinutes int      `json:"estimated_time_minutes,omitempty"`
}

type Feedback struct {
	gorm.Model
	UserID     uint `gorm:"index;not null" json:"user_id"`
	SessionID  uint `gorm:"index;not null" json:"session_id"`
	ResponseID uint `gorm:"default:0" json:"response_id"`

	FeedbackType string `gorm:"default:'response'" json:"feedback_type"` // response, session, topic, periodic

	Summary          string `json:"summary"`
	DetailedFeedback string `json:"detailed_feedback"`

	Strengths       datatypes.JSON `json:"strengths"`       // []StrengthArea
	Weaknesses      datatypes.JSON `json:"weaknesses"`      // []WeaknessArea
	Recommendations datatypes.JSON `json:"recommendations"` // []LearningRecommendation

	SuggestedTopics     datatypes.JSON `json:"suggested_topics"` // []string
	SuggestedDifficulty string         `gorm:"default:'medium'" json:"suggested_difficulty"`
	SuggestedModality   string         `gorm:"default:'text'" json:"suggested_modality"`

	EncouragementMessage string `gorm:"default:''" json:"encouragement_message"`
	AchievementUnlocked  string `gorm:"default:''" json:"achievement_unlocked"`

	OverallPerformanceScore float64 `gorm:"default:0" json:"overall_performance_score"`
	ImprovementTrend        string  `gorm:"default:'stable'" json:"improvement_trend"` // improving, stable, declining

	GeneratedByAgent string  `gorm:"default:'feedback_agent'" json:"generated_by_agent"`
	AgentConfidence  float64 `gorm:"default:0" json:"agent_confidence"`

	IsDeleted bool `gorm:"default:false"`
}
