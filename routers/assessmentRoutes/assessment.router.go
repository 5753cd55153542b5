package assessmentRoutes

import (
	assessmentControllers "edusynapse/controllers/assessment"
	"edusynapse/middleware"
	assessmentValidators "edusynapse/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

func SetupAssessmentRoutes(app *fiber.App) {
	assessmentGroup := app.Group("/assessments")

	assessmentGroup.Post("/generate", assessmentValidators.GenerateQuestion(), middleware.OptionalJWTMiddleware, assessmentControllers.GenerateQuestions)
	assessmentGroup.Post("/submit", assessmentValidators.SubmitResponse(), middleware.OptionalJWTMiddleware, assessmentControllers.SubmitResponse)
	assessmentGroup.Get("/feedback/history", middleware.JWTMiddleware, assessmentControllers.FeedbackHistory)
	assessmentGroup.Get("/feedback/:responseId", middleware.JWTMiddleware, assessmentControllers.FeedbackForResponse)
	assessmentGroup.Get("/history/:sessionId", middleware.JWTMiddleware, assessmentControllers.SessionHistory)
	assessmentGroup.Get("/:id", middleware.OptionalJWTMiddleware, assessmentControllers.GetAssessment)
}
