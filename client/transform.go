package client

import (
	"encoding/json"
	"fmt"
)

// Option is one multiple-choice answer.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a normalized question ready for display.
type Question struct {
	ID               uint     `json:"id"`
	TopicName        string   `json:"topic_name"`
	QuestionType     string   `json:"question_type"`
	QuestionText     string   `json:"question_text"`
	QuestionContext  string   `json:"question_context"`
	Options          []Option `json:"options"`
	Difficulty       string   `json:"difficulty"`
	Points           int      `json:"points"`
	TimeLimitSeconds int      `json:"time_limit_seconds"`
}

// SessionInfo is the server's session record, trimmed to client needs.
type SessionInfo struct {
	ID                uint    `json:"ID"`
	TopicName         string  `json:"topic_name"`
	TargetQuestions   int     `json:"target_questions"`
	Status            string  `json:"status"`
	CurrentDifficulty string  `json:"current_difficulty"`
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`
	TotalScore        float64 `json:"total_score"`
}

// SessionProgress mirrors per-submission progress counters.
type SessionProgress struct {
	QuestionsAnswered int     `json:"questions_answered"`
	TargetQuestions   int     `json:"target_questions"`
	CorrectAnswers    int     `json:"correct_answers"`
	TotalScore        float64 `json:"total_score"`
	CurrentDifficulty string  `json:"current_difficulty"`
}

// Evaluation is the grading outcome for one answer.
type Evaluation struct {
	IsCorrect               bool     `json:"is_correct"`
	Score                   float64  `json:"score"`
	MaxScore                float64  `json:"max_score"`
	CorrectAnswer           string   `json:"correct_answer"`
	CorrectOptionID         string   `json:"correct_option_id"`
	Explanation             string   `json:"explanation"`
	ConceptualUnderstanding float64  `json:"conceptual_understanding"`
	Misconceptions          []string `json:"misconceptions"`
	KnowledgeGaps           []string `json:"knowledge_gaps"`
	NextSteps               []string `json:"next_steps"`
}

// Strength is a concept the learner has shown command of.
type Strength struct {
	Concept          string   `json:"concept"`
	ProficiencyLevel float64  `json:"proficiency_level"`
	Evidence         []string `json:"evidence"`
}

// Weakness is a concept needing further work.
type Weakness struct {
	Concept                string   `json:"concept"`
	CurrentLevel           float64  `json:"current_level"`
	TargetLevel            float64  `json:"target_level"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// Recommendation is a prioritized next action.
type Recommendation struct {
	Priority             int      `json:"priority"`
	Action               string   `json:"action"`
	Reason               string   `json:"reason"`
	Resources            []string `json:"resources"`
	EstimatedTimeMinutes int      `json:"estimated_time_minutes"`
}

// Feedback is normalized learner feedback with no nil slices.
type Feedback struct {
	Summary                 string           `json:"summary"`
	DetailedFeedback        string           `json:"detailed_feedback"`
	Strengths               []Strength       `json:"strengths"`
	Weaknesses              []Weakness       `json:"weaknesses"`
	Recommendations         []Recommendation `json:"recommendations"`
	SuggestedTopics         []string         `json:"suggested_topics"`
	SuggestedDifficulty     string           `json:"suggested_difficulty"`
	EncouragementMessage    string           `json:"encouragement_message"`
	OverallPerformanceScore float64          `json:"overall_performance_score"`
	ImprovementTrend        string           `json:"improvement_trend"`
}

// optionIDAlphabet supplies synthesized option IDs for servers that send
// options as plain strings.
const optionIDAlphabet = "ABCDEFGHIJ"

// TransformQuestion normalizes a raw question payload. Options arriving
// as plain strings get synthesized IDs; missing arrays become empty
// slices; missing scoring fields get per-type defaults.
func TransformQuestion(raw json.RawMessage) (Question, error) {
	if len(raw) == 0 {
		return Question{}, fmt.Errorf("empty question payload")
	}

	var partial struct {
		ID               uint              `json:"id"`
		TopicName        string            `json:"topic_name"`
		QuestionType     string            `json:"question_type"`
		QuestionText     string            `json:"question_text"`
		QuestionContext  string            `json:"question_context"`
		Options          []json.RawMessage `json:"options"`
		Difficulty       string            `json:"difficulty"`
		Points           int               `json:"points"`
		TimeLimitSeconds int               `json:"time_limit_seconds"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return Question{}, fmt.Errorf("malformed question payload: %w", err)
	}
	if partial.QuestionText == "" {
		return Question{}, fmt.Errorf("question payload missing question_text")
	}

	question := Question{
		ID:               partial.ID,
		TopicName:        partial.TopicName,
		QuestionType:     partial.QuestionType,
		QuestionText:     partial.QuestionText,
		QuestionContext:  partial.QuestionContext,
		Options:          []Option{},
		Difficulty:       partial.Difficulty,
		Points:           partial.Points,
		TimeLimitSeconds: partial.TimeLimitSeconds,
	}
	if question.QuestionType == "" {
		question.QuestionType = "mcq"
	}
	if question.Difficulty == "" {
		question.Difficulty = "medium"
	}

	for i, rawOption := range partial.Options {
		question.Options = append(question.Options, transformOption(rawOption, i))
	}

	applyScoringDefaults(&question)
	return question, nil
}

// transformOption accepts either {"id","text"} objects or bare strings.
func transformOption(raw json.RawMessage, index int) Option {
	var structured Option
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Text != "" {
		if structured.ID == "" {
			structured.ID = synthesizeOptionID(index)
		}
		return structured
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return Option{ID: synthesizeOptionID(index), Text: plain}
	}

	return Option{ID: synthesizeOptionID(index)}
}

func synthesizeOptionID(index int) string {
	if index < len(optionIDAlphabet) {
		return string(optionIDAlphabet[index])
	}
	return fmt.Sprintf("O%d", index+1)
}

func applyScoringDefaults(question *Question) {
	if question.Points == 0 {
		if question.QuestionType == "essay" {
			question.Points = 25
		} else {
			question.Points = 10
		}
	}
	if question.TimeLimitSeconds == 0 {
		switch question.QuestionType {
		case "essay":
			question.TimeLimitSeconds = 600
		case "fill_in_blank":
			question.TimeLimitSeconds = 60
		default:
			question.TimeLimitSeconds = 90
		}
	}
}

// TransformFeedback normalizes feedback, defaulting missing fields so
// callers never see nil slices or empty enums.
func TransformFeedback(raw json.RawMessage) Feedback {
	var feedback Feedback
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &feedback)
	}

	if feedback.Summary == "" {
		feedback.Summary = "Your response has been recorded."
	}
	if feedback.Strengths == nil {
		feedback.Strengths = []Strength{}
	}
	for i := range feedback.Strengths {
		if feedback.Strengths[i].Evidence == nil {
			feedback.Strengths[i].Evidence = []string{}
		}
	}
	if feedback.Weaknesses == nil {
		feedback.Weaknesses = []Weakness{}
	}
	for i := range feedback.Weaknesses {
		if feedback.Weaknesses[i].ImprovementSuggestions == nil {
			feedback.Weaknesses[i].ImprovementSuggestions = []string{}
		}
	}
	if feedback.Recommendations == nil {
		feedback.Recommendations = []Recommendation{}
	}
	for i := range feedback.Recommendations {
		if feedback.Recommendations[i].Resources == nil {
			feedback.Recommendations[i].Resources = []string{}
		}
	}
	if feedback.SuggestedTopics == nil {
		feedback.SuggestedTopics = []string{}
	}
	if feedback.SuggestedDifficulty == "" {
		feedback.SuggestedDifficulty = "medium"
	}
	if feedback.ImprovementTrend == "" {
		feedback.ImprovementTrend = "stable"
	}
	return feedback
}

// TransformEvaluation fills absent list-like fields with empty slices.
func TransformEvaluation(eval Evaluation) Evaluation {
	if eval.Misconceptions == nil {
		eval.Misconceptions = []string{}
	}
	if eval.KnowledgeGaps == nil {
		eval.KnowledgeGaps = []string{}
	}
	if eval.NextSteps == nil {
		eval.NextSteps = []string{}
	}
	return eval
}
