package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/lessonhub/lesson_booking/services"
	"gorm.io/gorm"
)

// CompleteLesson marks a lesson as completed and folds it into the
// instructor's stats in one transaction. Either both happen or neither does.
func CompleteLesson(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	instructorID, _ := uuid.Parse(claims["user_id"].(string))
	lessonID := c.Params("lessonId")

	var lesson models.Lesson
	if err := database.DB.Preload("Students").Preload("Reviews").First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	if lesson.InstructorID != instructorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your lesson to manage"})
	}
	if lesson.Status == models.LessonStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Lesson is already completed"})
	}
	if lesson.Status == models.LessonStatusCancelled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A cancelled lesson cannot be completed"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		lesson.Status = models.LessonStatusCompleted
		lesson.CompletedAt = &now
		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}
		return services.ApplyLessonCompletedTx(tx, &lesson)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete lesson"})
	}

	return c.JSON(fiber.Map{"message": "Lesson completed successfully", "lesson": lesson})
}
