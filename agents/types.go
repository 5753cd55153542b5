package agents

import "edusynapse/models"

// Intent classifies what the learner is asking for.
type Intent struct {
	Primary    string  `json:"primary"`
	Confidence float64 `json:"confidence"`
}

// TopicInfo is the extracted topic structure.
type TopicInfo struct {
	Main      string   `json:"main"`
	Subtopics []string `json:"subtopics"`
	Subject   string   `json:"subject"`
}

// Recommendations carries assessment suggestions downstream.
type Recommendations struct {
	SuggestedDifficulty string   `json:"suggested_difficulty"`
	QuestionType        string   `json:"question_type"`
	FocusAreas          []string `json:"focus_areas"`
}

// QueryAnalysis is the first stage output.
type QueryAnalysis struct {
	Intent          Intent          `json:"intent"`
	Topic           TopicInfo       `json:"topic"`
	BloomsLevel     string          `json:"blooms_level"`
	Complexity      string          `json:"complexity"`
	Recommendations Recommendations `json:"recommendations"`
}

// ContentChunk is one retrieved piece of learning material.
type ContentChunk struct {
	ContentID      string   `json:"content_id"`
	Content        string   `json:"content"`
	Summary        string   `json:"summary"`
	Topic          string   `json:"topic"`
	Difficulty     string   `json:"difficulty"`
	RelevanceScore float64  `json:"relevance_score"`
	FinalScore     float64  `json:"final_score"`
	Concepts       []string `json:"concepts"`
	Source         string   `json:"source"`
}

// RetrievedContent is the second stage output.
type RetrievedContent struct {
	Query         string         `json:"query"`
	ContentChunks []ContentChunk `json:"content_chunks"`
	TotalFound    int            `json:"total_found"`
}

// GeneratedQuestion is the third stage output, ready to persist as an
// Assessment row.
type GeneratedQuestion struct {
	QuestionType      string             `json:"question_type"`
	QuestionText      string             `json:"question_text"`
	QuestionContext   string             `json:"question_context"`
	Options           []models.MCQOption `json:"options,omitempty"`
	BlankAnswer       string             `json:"blank_answer,omitempty"`
	AcceptableAnswers []string           `json:"acceptable_answers,omitempty"`
	ModelAnswer       string             `json:"model_answer,omitempty"`
	Rubric            map[string]string  `json:"rubric,omitempty"`
	Concepts          []string           `json:"concepts"`
	Explanation       string             `json:"explanation"`
	Difficulty        string             `json:"difficulty"`
	CognitiveLevel    string             `json:"cognitive_level,omitempty"`
	Points            int                `json:"points"`
	TimeLimitSeconds  int                `json:"time_limit_seconds"`
	SourceContentIDs  []string           `json:"source_content_ids,omitempty"`
	IsFallback        bool               `json:"is_fallback"`
	BatchIndex        int                `json:"batch_index"`
}

// Evaluation is the result of grading a learner response.
type Evaluation struct {
	IsCorrect               bool     `json:"is_correct"`
	Score                   float64  `json:"score"`
	MaxScore                float64  `json:"max_score"`
	CorrectAnswer           string   `json:"correct_answer"`
	CorrectOptionID         string   `json:"correct_option_id,omitempty"`
	Explanation             string   `json:"explanation"`
	ConceptualUnderstanding float64  `json:"conceptual_understanding"`
	Misconceptions          []string `json:"misconceptions"`
	KnowledgeGaps           []string `json:"knowledge_gaps"`
	NextSteps               []string `json:"next_steps"`
	RecommendedDifficulty   string   `json:"recommended_difficulty,omitempty"`
}

// FeedbackResult is the final stage output.
type FeedbackResult struct {
	Summary                 string                          `json:"summary"`
	DetailedFeedback        string                          `json:"detailed_feedback"`
	Strengths               []models.StrengthArea           `json:"strengths"`
	Weaknesses              []models.WeaknessArea           `json:"weaknesses"`
	Recommendations         []models.LearningRecommendation `json:"recommendations"`
	SuggestedTopics         []string                        `json:"suggested_topics"`
	SuggestedDifficulty     string                          `json:"suggested_difficulty"`
	EncouragementMessage    string                          `json:"encouragement_message"`
	OverallPerformanceScore float64                         `json:"overall_performance_score"`
	ImprovementTrend        string                          `json:"improvement_trend"`
}

// AgentStatus records execution state of one pipeline stage.
type AgentStatus struct {
	Status         string `json:"status"` // pending, processing, completed, failed
	ProcessingTime int64  `json:"processingTime"`
	Error          string `json:"error,omitempty"`
}

// PipelineContext carries session and learner state through the stages.
type PipelineContext struct {
	UserID              uint
	SessionID           uint
	Topic               string
	IsCustomTopic       bool
	CustomQuery         string
	Modality            string
	PreferredType       string
	PreferredDifficulty string

	// Learner profile snapshot
	RecentAccuracy    float64
	StreakDays        int
	Weaknesses        []string
	KnowledgeGaps     []string
	PerformanceWindow []models.PerformanceEntry

	// Recent question types, newest last
	RecentQuestionTypes []string

	// Questions already asked this session, to avoid repeats
	PreviouslyAsked []string
}
