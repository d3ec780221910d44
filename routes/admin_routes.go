package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lessonhub/lesson_booking/handlers"
	"github.com/lessonhub/lesson_booking/middleware"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Post("/instructors/:instructorId/recalculate", handlers.RecalculateInstructorStats)
	admin.Post("/ranking/refresh", handlers.RefreshRanking)
}
