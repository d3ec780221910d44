package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/services"
)

func GetInstructorStats(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	stats, err := services.GetInstructorStats(instructorID)
	if errors.Is(err, services.ErrStatsNotFound) {
		// Absent stats are a normal outcome; callers render a default view.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No stats recorded for this instructor yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve instructor stats"})
	}

	return c.JSON(stats)
}

func GetTopInstructors(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	top, err := services.TopInstructors(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve leaderboard"})
	}

	return c.JSON(top)
}

func GetInstructorBadges(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	stats, err := services.GetInstructorStats(instructorID)
	if errors.Is(err, services.ErrStatsNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No stats recorded for this instructor yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve instructor stats"})
	}

	return c.JSON(fiber.Map{"badges": services.CalculateBadges(stats)})
}

// GetMyStats lazily creates a zeroed record the first time an instructor
// opens their dashboard.
func GetMyStats(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	instructorID, _ := uuid.Parse(claims["user_id"].(string))

	stats, err := services.GetInstructorStats(instructorID)
	if errors.Is(err, services.ErrStatsNotFound) {
		if err := services.InitializeStats(database.DB, instructorID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize stats"})
		}
		stats, err = services.GetInstructorStats(instructorID)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve instructor stats"})
	}

	return c.JSON(stats)
}

func GetMyRanking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	instructorID, _ := uuid.Parse(claims["user_id"].(string))

	stats, err := services.GetInstructorStats(instructorID)
	if errors.Is(err, services.ErrStatsNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No stats recorded for this instructor yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve instructor stats"})
	}

	return c.JSON(fiber.Map{
		"rank":          stats.Rank,
		"previous_rank": stats.PreviousRank,
		"rank_change":   stats.RankChange,
		"tier":          stats.Tier,
	})
}
