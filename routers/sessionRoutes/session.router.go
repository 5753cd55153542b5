package sessionRoutes

import (
	sessionControllers "edusynapse/controllers/session"
	"edusynapse/middleware"
	sessionValidators "edusynapse/validators/session"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(app *fiber.App) {
	sessionGroup := app.Group("/sessions")

	sessionGroup.Post("/", sessionValidators.StartSession(), middleware.OptionalJWTMiddleware, sessionControllers.StartSession)
	sessionGroup.Get("/", sessionValidators.SessionList(), middleware.JWTMiddleware, sessionControllers.SessionList)
	sessionGroup.Get("/:id", middleware.JWTMiddleware, sessionControllers.SessionDetail)
	sessionGroup.Post("/:id/question", middleware.OptionalJWTMiddleware, sessionControllers.NextQuestion)
	sessionGroup.Post("/:id/input", sessionValidators.SubmitInput(), middleware.OptionalJWTMiddleware, sessionControllers.SubmitInput)
	sessionGroup.Patch("/:id/pause", middleware.JWTMiddleware, sessionControllers.PauseSession)
	sessionGroup.Patch("/:id/resume", middleware.JWTMiddleware, sessionControllers.ResumeSession)
	sessionGroup.Patch("/:id/complete", middleware.OptionalJWTMiddleware, sessionControllers.CompleteSession)
}
