package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/lessonhub/lesson_booking/services"
)

var validate = validator.New()

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview lets a student review a completed lesson they attended. New
// reviews start in the pending moderation state; reviews that predate
// moderation keep their legacy public default.
func CreateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))
	lessonID := c.Params("lessonId")

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var lesson models.Lesson
	if err := database.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	if lesson.Status != models.LessonStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Reviews can only be submitted for completed lessons"})
	}

	var attended int64
	database.DB.Table("lesson_students").
		Where("lesson_id = ? AND user_id = ?", lesson.ID, studentID).
		Count(&attended)
	if attended == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You did not attend this lesson"})
	}

	var existing models.Review
	if err := database.DB.Where("lesson_id = ? AND student_id = ?", lesson.ID, studentID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A review for this lesson has already been submitted"})
	}

	pending := false
	review := models.Review{
		LessonID:   lesson.ID,
		StudentID:  studentID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: &pending,
	}

	if err := services.ApplyReviewAdded(lesson.InstructorID, &review); err != nil {
		if errors.Is(err, services.ErrInvalidRating) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit review"})
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

type ModerationRequest struct {
	Action string `json:"action" validate:"required,oneof=approve hide"`
}

// ModerateReview applies an approve or hide transition to a review owned by
// the calling instructor. Both transitions are idempotent, and neither
// touches the aggregates: moderation only governs public visibility.
func ModerateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	instructorID, _ := uuid.Parse(claims["user_id"].(string))
	reviewID := c.Params("reviewId")

	var req ModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var review models.Review
	if err := database.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
	}
	if review.InstructorID != instructorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your review to moderate"})
	}

	if req.Action == "approve" {
		review.Approve()
	} else {
		review.Hide()
	}

	err := database.DB.Model(&review).Updates(map[string]interface{}{
		"is_approved": review.IsApproved,
		"is_hidden":   review.IsHidden,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to moderate review"})
	}

	return c.JSON(fiber.Map{"message": "Review moderated successfully", "state": review.State()})
}

type reviewWithState struct {
	models.Review
	State models.ReviewState `json:"state"`
}

// GetMyReviews returns every review for the calling instructor, including
// pending and hidden ones, for the moderation dashboard.
func GetMyReviews(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	instructorID, _ := uuid.Parse(claims["user_id"].(string))

	var reviews []models.Review
	database.DB.Preload("Student").
		Where("instructor_id = ?", instructorID).
		Order("created_at desc").
		Find(&reviews)

	out := make([]reviewWithState, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviewWithState{Review: reviews[i], State: reviews[i].State()})
	}
	return c.JSON(out)
}

// GetInstructorReviews is the public review list: approved reviews only,
// which includes legacy reviews that predate moderation.
func GetInstructorReviews(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	var reviews []models.Review
	database.DB.Preload("Student").
		Where("instructor_id = ?", instructorID).
		Order("created_at desc").
		Find(&reviews)

	public := make([]models.Review, 0, len(reviews))
	for i := range reviews {
		if reviews[i].IsPublic() {
			public = append(public, reviews[i])
		}
	}
	return c.JSON(public)
}
