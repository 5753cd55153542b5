package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question type values.
const (
	QuestionMCQ         = "mcq"
	QuestionFillInBlank = "fill_in_blank"
	QuestionEssay       = "essay"
	QuestionDiagram     = "diagram"
	QuestionVoice       = "voice"
)

// MCQOption is one answer choice for an MCQ question.
type MCQOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Assessment struct {
	gorm.Model
	TopicID   string `gorm:"default:''" json:"topic_id"`
	TopicName string `gorm:"index;not null" json:"topic_name"`
	Subject   string `gorm:"default:''" json:"subject"`

	// Question content
	QuestionType    string `gorm:"not null" json:"question_type"`
	QuestionText    string `gorm:"not null" json:"question_text"`
	QuestionContext string `gorm:"default:''" json:"question_context"`

	// MCQ
	Options datatypes.JSON `json:"options"` // []MCQOption

	// Fill in blank
	BlankAnswer       string         `gorm:"default:''" json:"blank_answer"`
	AcceptableAnswers datatypes.JSON `json:"acceptable_answers"` // []string

	// Essay
	ModelAnswer string         `gorm:"default:''" json:"model_answer"`
	Rubric      datatypes.JSON `json:"rubric"`

	// Diagram
	DiagramURL    string         `gorm:"default:''" json:"diagram_url"`
	DiagramLabels datatypes.JSON `json:"diagram_labels"` // map[string]string

	Difficulty       string `gorm:"default:'medium'" json:"difficulty"`
	Points           int    `gorm:"default:10" json:"points"`
	TimeLimitSeconds int    `gorm:"default:0" json:"time_limit_seconds"`

	Concepts      datatypes.JSON `json:"concepts"`      // []string
	Prerequisites datatypes.JSON `json:"prerequisites"` // []string

	GeneratedBy      string         `gorm:"default:'system'" json:"generated_by"` // system, agent, manual
	SourceContentIDs datatypes.JSON `json:"source_content_ids"`                   // []string

	// Statistics
	TimesAnswered      int     `gorm:"default:0" json:"times_answered"`
	TimesCorrect       int     `gorm:"default:0" json:"times_correct"`
	AverageTimeSeconds float64 `gorm:"default:0" json:"average_time_seconds"`

	IsDeleted bool `gorm:"default:false"`
}

// OptionList decodes the stored MCQ options.
func (a *Assessment) OptionList() []MCQOption {
	var options []MCQOption
	if len(a.Options) > 0 {
		_ = json.Unmarshal(a.Options, &options)
	}
	return options
}

// SuccessRate returns the percentage of correct answers to this question.
func (a *Assessment) SuccessRate() float64 {
	if a.TimesAnswered == 0 {
		return 0
	}
	return float64(a.TimesCorrect) / float64(a.TimesAnswered) * 100
}

type AssessmentResponse struct {
	gorm.Model
	UserID       uint `gorm:"index;not null" json:"user_id"`
	SessionID    uint `gorm:"index;not null" json:"session_id"`
	AssessmentID uint `gorm:"index;not null" json:"assessment_id"`

	ResponseType    string `gorm:"default:'text'" json:"response_type"` // text, voice, diagram
	ResponseContent string `json:"response_content"`
	RawInput        string `gorm:"default:''" json:"raw_input"`

	// MCQ
	SelectedOptionID string `gorm:"default:''" json:"selected_option_id"`

	// Evaluation results
	IsCorrect bool    `gorm:"default:false" json:"is_correct"`
	Score     float64 `gorm:"default:0" json:"score"`
	MaxScore  float64 `gorm:"default:10" json:"max_score"`

	ConceptualUnderstanding  float64        `gorm:"default:0" json:"conceptual_understanding"` // 0-100
	IdentifiedMisconceptions datatypes.JSON `json:"identified_misconceptions"`                 // []string
	KnowledgeGaps            datatypes.JSON `json:"knowledge_gaps"`                            // []string
	EvaluationDetails        datatypes.JSON `json:"evaluation_details"`

	TimeTakenSeconds int       `gorm:"default:0" json:"time_taken_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`

	FeedbackID uint `gorm:"default:0" json:"feedback_id"`

	IsDeleted  bool            `gorm:"default:false"`
	User       User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Session    LearningSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Assessment Assessment      `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"-"`
}
