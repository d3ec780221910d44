package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lessonhub/lesson_booking/handlers"
	"github.com/lessonhub/lesson_booking/middleware"
)

func LessonRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	lessons := api.Group("/lessons", middleware.Protected())
	lessons.Post("/:lessonId/complete", middleware.InstructorRequired(), handlers.CompleteLesson)
	lessons.Post("/:lessonId/reviews", handlers.CreateReview)
}
