package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session status values.
const (
	SessionActive    = "active"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

type LearningSession struct {
	gorm.Model
	UserID uint `gorm:"index;not null" json:"user_id"`

	// Topic information
	TopicID       string `gorm:"default:''" json:"topic_id"`
	TopicName     string `gorm:"not null" json:"topic_name"`
	IsCustomTopic bool   `gorm:"default:false" json:"is_custom_topic"`
	CustomQuery   string `gorm:"default:''" json:"custom_query"`

	// Session configuration
	TargetQuestions int            `gorm:"default:10" json:"target_questions"`
	AssessmentTypes datatypes.JSON `json:"assessment_types"` // []string

	// Session state
	Status            string `gorm:"default:'active'" json:"status"`
	CurrentDifficulty string `gorm:"default:'medium'" json:"current_difficulty"`

	// Progress tracking
	QuestionsAnswered int     `gorm:"default:0" json:"questions_answered"`
	CorrectAnswers    int     `gorm:"default:0" json:"correct_answers"`
	TotalScore        float64 `gorm:"default:0" json:"total_score"`

	// Interaction history and agent context
	Interactions    datatypes.JSON `json:"interactions"` // []SessionInteraction
	SessionContext  datatypes.JSON `json:"session_context"`
	LastAgentOutput datatypes.JSON `json:"last_agent_output"`

	StartedAt            time.Time  `json:"started_at"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	TotalDurationSeconds int        `gorm:"default:0" json:"total_duration_seconds"`

	IsDeleted bool `gorm:"default:false"`
	User      User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// SessionInteraction is one learner input processed during a session.
type SessionInteraction struct {
	Timestamp        time.Time `json:"timestamp"`
	InputType        string    `json:"input_type"` // text, voice, diagram
	InputContent     string    `json:"input_content"`
	ProcessedContent string    `json:"processed_content"`
	QuestionID       string    `json:"question_id,omitempty"`
	ResponseID       string    `json:"response_id,omitempty"`

	// Grading outcome, populated once the response is evaluated.
	IsCorrect  bool     `json:"is_correct"`
	Score      float64  `json:"score"`
	Difficulty string   `json:"difficulty,omitempty"`
	Concepts   []string `json:"concepts,omitempty"`
}

// InteractionList decodes the stored interaction history.
func (s *LearningSession) InteractionList() []SessionInteraction {
	var list []SessionInteraction
	if len(s.Interactions) > 0 {
		_ = json.Unmarshal(s.Interactions, &list)
	}
	return list
}

// Accuracy returns session accuracy as a percentage.
func (s *LearningSession) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.QuestionsAnswered) * 100
}

// AverageScore returns mean score per answered question.
func (s *LearningSession) AverageScore() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return s.TotalScore / float64(s.QuestionsAnswered)
}

// AppendInteraction records a processed learner input.
func (s *LearningSession) AppendInteraction(interaction SessionInteraction) {
	var list []SessionInteraction
	if len(s.Interactions) > 0 {
		_ = json.Unmarshal(s.Interactions, &list)
	}
	list = append(list, interaction)
	raw, _ := json.Marshal(list)
	s.Interactions = raw
}
