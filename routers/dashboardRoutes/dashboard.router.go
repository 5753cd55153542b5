package dashboardRoutes

import (
	dashboardControllers "edusynapse/controllers/dashboard"
	"edusynapse/middleware"
	assessmentValidators "edusynapse/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App) {
	dashboardGroup := app.Group("/dashboard")

	dashboardGroup.Get("/", middleware.JWTMiddleware, dashboardControllers.Overview)
	dashboardGroup.Get("/topics", middleware.OptionalJWTMiddleware, dashboardControllers.Topics)
	dashboardGroup.Get("/learning-path", middleware.JWTMiddleware, dashboardControllers.LearningPath)
	dashboardGroup.Get("/analytics", middleware.JWTMiddleware, dashboardControllers.Analytics)
	dashboardGroup.Get("/recommendations", middleware.JWTMiddleware, dashboardControllers.Recommendations)
	dashboardGroup.Get("/activity", middleware.JWTMiddleware, dashboardControllers.RecentActivity)
	dashboardGroup.Get("/achievements", middleware.JWTMiddleware, dashboardControllers.Achievements)
	dashboardGroup.Get("/topic-mastery", middleware.JWTMiddleware, dashboardControllers.TopicMastery)

	knowledgeGroup := app.Group("/knowledge")
	knowledgeGroup.Post("/", assessmentValidators.AddKnowledge(), middleware.JWTMiddleware, dashboardControllers.AddKnowledge)
}
