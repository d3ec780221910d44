package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/lessonhub/lesson_booking/services"
)

// RecalculateInstructorStats rebuilds one instructor's record from their
// full lesson history. Backfill/migration entrypoint: the result is the same
// as replaying every lesson through the completion path in order.
func RecalculateInstructorStats(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	var lessons []models.Lesson
	if err := database.DB.Preload("Students").Preload("Reviews").
		Where("instructor_id = ?", instructorID).
		Find(&lessons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load lesson history"})
	}

	stats, err := services.RecalculateStats(instructorID, lessons)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to recalculate stats"})
	}

	return c.JSON(fiber.Map{"message": "Stats recalculated successfully", "stats": stats})
}

// RefreshRanking triggers the batch ranking pass on demand instead of
// waiting for the scheduler.
func RefreshRanking(c *fiber.Ctx) error {
	moved, err := services.RefreshRanking()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to refresh ranking"})
	}

	return c.JSON(fiber.Map{"message": "Ranking refreshed successfully", "moved": moved})
}
