package assessmentValidator

import (
	"edusynapse/middleware"

	"github.com/gofiber/fiber/v2"
)

var validQuestionTypes = map[string]bool{
	"mcq":           true,
	"fill_in_blank": true,
	"essay":         true,
}

var validDifficulties = map[string]bool{
	"beginner": true,
	"easy":     true,
	"medium":   true,
	"hard":     true,
	"expert":   true,
}

// SubmitResponseRequest is a learner answer to an assessment.
type SubmitResponseRequest struct {
	AssessmentID     uint   `json:"assessment_id"`
	SessionID        uint   `json:"session_id"`
	ResponseType     string `json:"response_type"`
	ResponseContent  string `json:"response_content"`
	SelectedOptionID string `json:"selected_option_id"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

// SubmitResponse validator middleware
func SubmitResponse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitResponseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.AssessmentID == 0 {
			errors["assessment_id"] = "Assessment ID is required!"
		}
		if reqData.ResponseContent == "" && reqData.SelectedOptionID == "" {
			errors["response"] = "Either response_content or selected_option_id is required!"
		}
		if reqData.TimeTakenSeconds < 0 {
			errors["time_taken_seconds"] = "Time taken cannot be negative!"
		}
		if reqData.ResponseType == "" {
			reqData.ResponseType = "text"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedResponse", reqData)
		return c.Next()
	}
}

// GenerateQuestionRequest asks the pipeline for new questions.
type GenerateQuestionRequest struct {
	SessionID    uint   `json:"session_id"`
	Query        string `json:"query"`
	Topic        string `json:"topic"`
	QuestionType string `json:"question_type"`
	Difficulty   string `json:"difficulty"`
	Count        int    `json:"count"`
}

// GenerateQuestion validator middleware
func GenerateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GenerateQuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.QuestionType != "" && !validQuestionTypes[reqData.QuestionType] {
			errors["question_type"] = "Question type must be mcq, fill_in_blank or essay!"
		}
		if reqData.Difficulty != "" && !validDifficulties[reqData.Difficulty] {
			errors["difficulty"] = "Unknown difficulty level!"
		}
		if reqData.Count < 0 || reqData.Count > 10 {
			errors["count"] = "Count must be between 1 and 10!"
		}
		if reqData.Count == 0 {
			reqData.Count = 1
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGenerate", reqData)
		return c.Next()
	}
}

// AddKnowledgeRequest is new content for the knowledge base.
type AddKnowledgeRequest struct {
	SourceTitle    string   `json:"source_title"`
	SourceURL      string   `json:"source_url"`
	ContentText    string   `json:"content_text"`
	ContentSummary string   `json:"content_summary"`
	Subject        string   `json:"subject"`
	Topic          string   `json:"topic"`
	Subtopics      []string `json:"subtopics"`
	Difficulty     string   `json:"difficulty"`
	Keywords       []string `json:"keywords"`
	Concepts       []string `json:"concepts"`
}

// AddKnowledge validator middleware
func AddKnowledge() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddKnowledgeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.ContentText) < 50 {
			errors["content_text"] = "Content text must be at least 50 characters long!"
		}
		if reqData.Topic == "" {
			errors["topic"] = "Topic is required!"
		}
		if reqData.Difficulty != "" && !validDifficulties[reqData.Difficulty] {
			errors["difficulty"] = "Unknown difficulty level!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedKnowledge", reqData)
		return c.Next()
	}
}
