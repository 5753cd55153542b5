package sessionValidator

import (
	"edusynapse/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var validAssessmentTypes = map[string]bool{
	"mcq":           true,
	"fill_in_blank": true,
	"essay":         true,
	"diagram":       true,
	"voice":         true,
}

var validInputTypes = map[string]bool{
	"text":    true,
	"voice":   true,
	"diagram": true,
}

// StartSessionRequest is the validated payload for starting a session.
type StartSessionRequest struct {
	TopicID         string   `json:"topic_id"`
	TopicName       string   `json:"topic_name"`
	CustomQuery     string   `json:"custom_query"`
	TargetQuestions int      `json:"target_questions" validate:"omitempty,min=1,max=50"`
	AssessmentTypes []string `json:"assessment_types"`
}

// StartSession validator middleware
func StartSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StartSessionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TopicName == "" && reqData.CustomQuery == "" {
			errors["topic"] = "Either topic_name or custom_query is required!"
		}

		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				if fieldErr.Field() == "TargetQuestions" {
					errors["target_questions"] = "Target questions must be between 1 and 50!"
				}
			}
		}

		for _, t := range reqData.AssessmentTypes {
			if !validAssessmentTypes[t] {
				errors["assessment_types"] = "Unsupported assessment type: " + t
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSession", reqData)
		return c.Next()
	}
}

// SubmitInputRequest is a learner input within a session.
type SubmitInputRequest struct {
	InputType string `json:"input_type"`
	Content   string `json:"content"`
}

// SubmitInput validator middleware
func SubmitInput() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitInputRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.InputType == "" {
			reqData.InputType = "text"
		}
		if !validInputTypes[reqData.InputType] {
			errors["input_type"] = "Input type must be text, voice or diagram!"
		}
		if reqData.Content == "" {
			errors["content"] = "Content is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInput", reqData)
		return c.Next()
	}
}

// SessionList validator middleware
func SessionList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page   int    `query:"page"`
			Limit  int    `query:"limit"`
			Status string `query:"status"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 20
		}

		c.Locals("validatedSessionList", reqData)
		return c.Next()
	}
}
