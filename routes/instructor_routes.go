package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lessonhub/lesson_booking/handlers"
	"github.com/lessonhub/lesson_booking/middleware"
)

func InstructorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/instructors/top", handlers.GetTopInstructors)
	api.Get("/instructors/:instructorId/stats", handlers.GetInstructorStats)
	api.Get("/instructors/:instructorId/badges", handlers.GetInstructorBadges)
	api.Get("/instructors/:instructorId/reviews", handlers.GetInstructorReviews)

	instructor := api.Group("/instructor", middleware.Protected(), middleware.InstructorRequired())
	instructor.Get("/stats/me", handlers.GetMyStats)
	instructor.Get("/ranking/me", handlers.GetMyRanking)
	instructor.Get("/reviews/me", handlers.GetMyReviews)
	instructor.Post("/reviews/:reviewId/moderate", handlers.ModerateReview)
}
