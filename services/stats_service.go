package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStatsNotFound      = errors.New("instructor stats not found")
	ErrLessonNotCompleted = errors.New("lesson is not completed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidPrice       = errors.New("lesson price cannot be negative")
)

// InitializeStats creates a zeroed record for a brand-new instructor. Two
// completions racing to create the same record are safe: the insert is
// ON CONFLICT DO NOTHING and never clobbers an existing row.
func InitializeStats(tx *gorm.DB, instructorID uuid.UUID) error {
	now := time.Now()
	stats := models.InstructorStats{
		InstructorID:   instructorID,
		CompletionRate: 100,
		Tier:           models.TierBronze,
		Badges:         models.BadgeList{},
		CurrentSeason:  models.SeasonLabel(now),
		LastUpdated:    now,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stats).Error
}

// GetInstructorStats fetches the persisted record. A missing record is a
// normal outcome, not an exception: callers render a default view on
// ErrStatsNotFound.
func GetInstructorStats(instructorID uuid.UUID) (*models.InstructorStats, error) {
	var stats models.InstructorStats
	err := database.DB.First(&stats, "instructor_id = ?", instructorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ApplyLessonCompleted applies a completed lesson to the instructor's stats
// in its own transaction.
func ApplyLessonCompleted(lesson *models.Lesson) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		return ApplyLessonCompletedTx(tx, lesson)
	})
}

// ApplyLessonCompletedTx is the lesson-completion mutation. Raw counters go
// in as column expressions so a concurrent mutation for the same instructor
// cannot lose an increment; everything derived is then rebuilt from the
// post-increment state inside the same transaction. On any error the
// transaction rolls back and the previously persisted record stands.
func ApplyLessonCompletedTx(tx *gorm.DB, lesson *models.Lesson) error {
	if lesson.Status != models.LessonStatusCompleted {
		return ErrLessonNotCompleted
	}
	if lesson.Price < 0 {
		return ErrInvalidPrice
	}
	for i := range lesson.Reviews {
		if lesson.Reviews[i].Rating < 1 || lesson.Reviews[i].Rating > 5 {
			return ErrInvalidRating
		}
	}

	if err := InitializeStats(tx, lesson.InstructorID); err != nil {
		return err
	}

	if err := tx.Model(&models.InstructorStats{}).
		Where("instructor_id = ?", lesson.InstructorID).
		UpdateColumns(map[string]interface{}{
			"total_lessons":  gorm.Expr("total_lessons + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", lesson.Price),
		}).Error; err != nil {
		return err
	}

	// Reviews delivered with the lesson may already exist as rows if the
	// student went through the review endpoint first. FirstOrCreate keyed by
	// (lesson, student) keeps the two paths from double counting.
	for i := range lesson.Reviews {
		review := &lesson.Reviews[i]
		review.LessonID = lesson.ID
		review.InstructorID = lesson.InstructorID
		if err := tx.Where("lesson_id = ? AND student_id = ?", lesson.ID, review.StudentID).
			FirstOrCreate(review).Error; err != nil {
			return err
		}
	}

	return recomputeDerived(tx, lesson.InstructorID, 1, lesson.Price)
}

// ApplyReviewAdded applies a single review outside the lesson-completion
// path. The end state is identical to the review arriving with its lesson.
func ApplyReviewAdded(instructorID uuid.UUID, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := InitializeStats(tx, instructorID); err != nil {
			return err
		}

		// Take the stats row lock before touching review rows. The lesson
		// path locks stats first too, so the two mutations racing on the
		// same instructor serialize instead of deadlocking.
		var stats models.InstructorStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&stats, "instructor_id = ?", instructorID).Error; err != nil {
			return err
		}

		review.InstructorID = instructorID
		if err := tx.Where("lesson_id = ? AND student_id = ?", review.LessonID, review.StudentID).
			FirstOrCreate(review).Error; err != nil {
			return err
		}
		return recomputeDerived(tx, instructorID, 0, 0)
	})
}

// recomputeDerived re-reads the post-increment row under a row lock and
// rebuilds every derived metric from the store. Two concurrent mutations
// serialize here, so derived fields are never merged from stale snapshots.
// Moderation state is deliberately ignored: aggregates cover all reviews,
// only the public review list is filtered.
func recomputeDerived(tx *gorm.DB, instructorID uuid.UUID, seasonLessons int64, seasonEarnings float64) error {
	var stats models.InstructorStats
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stats, "instructor_id = ?", instructorID).Error; err != nil {
		return err
	}

	var reviewAgg struct {
		AvgRating   float64
		ReviewCount int64
		GoodReviews int64
	}
	if err := tx.Model(&models.Review{}).
		Where("instructor_id = ?", instructorID).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count, COUNT(*) FILTER (WHERE rating >= 4) AS good_reviews").
		Scan(&reviewAgg).Error; err != nil {
		return err
	}

	// Students are counted as a deduplicated set across all completed
	// lessons, same rule as the full rebuild.
	var studentAgg struct {
		Total   int64
		Repeats int64
	}
	if err := tx.Raw(`
		SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE lesson_count > 1) AS repeats
		FROM (
			SELECT ls.user_id, COUNT(*) AS lesson_count
			FROM lesson_students ls
			JOIN lessons l ON l.id = ls.lesson_id
			WHERE l.instructor_id = ? AND l.status = ?
			GROUP BY ls.user_id
		) per_student`, instructorID, models.LessonStatusCompleted).
		Scan(&studentAgg).Error; err != nil {
		return err
	}

	var lessonAgg struct {
		Completed int64
		Cancelled int64
	}
	if err := tx.Model(&models.Lesson{}).
		Where("instructor_id = ?", instructorID).
		Select("COUNT(*) FILTER (WHERE status = 'completed') AS completed, COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled").
		Scan(&lessonAgg).Error; err != nil {
		return err
	}

	stats.TotalReviews = reviewAgg.ReviewCount
	stats.AverageRating = reviewAgg.AvgRating
	stats.TotalStudents = studentAgg.Total
	stats.LessonSuccessRate = 0
	if reviewAgg.ReviewCount > 0 {
		stats.LessonSuccessRate = float64(reviewAgg.GoodReviews) / float64(reviewAgg.ReviewCount) * 100
	}
	stats.RepeatStudentRate = 0
	if studentAgg.Total > 0 {
		stats.RepeatStudentRate = float64(studentAgg.Repeats) / float64(studentAgg.Total) * 100
	}
	stats.CompletionRate = 100
	if lessonAgg.Completed+lessonAgg.Cancelled > 0 {
		stats.CompletionRate = float64(lessonAgg.Completed) / float64(lessonAgg.Completed+lessonAgg.Cancelled) * 100
	}

	now := time.Now()
	stats.RollSeason(now)
	stats.SeasonLessons += seasonLessons
	stats.SeasonEarnings += seasonEarnings
	stats.SeasonRating = stats.AverageRating

	RefreshDerived(&stats)
	stats.RankingDirty = true
	stats.LastUpdated = now

	return tx.Save(&stats).Error
}

// mergeRatings folds a batch of ratings into a running average.
func mergeRatings(oldAvg float64, oldCount int64, ratings []int) (float64, int64) {
	newCount := oldCount + int64(len(ratings))
	if newCount == 0 {
		return 0, 0
	}
	sum := oldAvg * float64(oldCount)
	for _, r := range ratings {
		sum += float64(r)
	}
	return sum / float64(newCount), newCount
}

// BuildStats folds a full lesson history into a fresh stats record. It is
// the reference semantics for the incremental path: replaying the same
// lessons twice yields the same record. Invalid lessons and reviews are
// skipped rather than fatal, so one bad row cannot sink a whole backfill.
func BuildStats(instructorID uuid.UUID, lessons []models.Lesson, now time.Time) *models.InstructorStats {
	stats := &models.InstructorStats{
		InstructorID:   instructorID,
		CompletionRate: 100,
		Tier:           models.TierBronze,
		Badges:         models.BadgeList{},
		CurrentSeason:  models.SeasonLabel(now),
		LastUpdated:    now,
	}

	currentSeason := stats.CurrentSeason
	previousSeason := models.SeasonLabel(models.SeasonStart(now).AddDate(0, 0, -1))

	lessonsPerStudent := make(map[uuid.UUID]int64)
	var completed, cancelled, goodReviews int64
	var prevSeasonRatingSum float64
	var prevSeasonRatings int64

	for i := range lessons {
		lesson := &lessons[i]
		switch lesson.Status {
		case models.LessonStatusCancelled:
			cancelled++
			continue
		case models.LessonStatusCompleted:
		default:
			continue
		}
		if lesson.Price < 0 {
			continue
		}

		completed++
		stats.TotalLessons++
		stats.TotalEarnings += lesson.Price
		for _, student := range lesson.Students {
			lessonsPerStudent[student.ID]++
		}

		season := ""
		if lesson.CompletedAt != nil {
			season = models.SeasonLabel(*lesson.CompletedAt)
		}
		switch season {
		case currentSeason:
			stats.SeasonLessons++
			stats.SeasonEarnings += lesson.Price
		case previousSeason:
			stats.PreviousSeasonLessons++
			stats.PreviousSeasonEarnings += lesson.Price
		}

		for j := range lesson.Reviews {
			review := &lesson.Reviews[j]
			if review.Rating < 1 || review.Rating > 5 {
				continue
			}
			stats.AverageRating, stats.TotalReviews = mergeRatings(stats.AverageRating, stats.TotalReviews, []int{review.Rating})
			if review.Rating >= 4 {
				goodReviews++
			}
			if season == previousSeason {
				prevSeasonRatingSum += float64(review.Rating)
				prevSeasonRatings++
			}
		}
	}

	stats.TotalStudents = int64(len(lessonsPerStudent))
	var repeats int64
	for _, n := range lessonsPerStudent {
		if n > 1 {
			repeats++
		}
	}
	if stats.TotalStudents > 0 {
		stats.RepeatStudentRate = float64(repeats) / float64(stats.TotalStudents) * 100
	}
	if completed+cancelled > 0 {
		stats.CompletionRate = float64(completed) / float64(completed+cancelled) * 100
	}
	if stats.TotalReviews > 0 {
		stats.LessonSuccessRate = float64(goodReviews) / float64(stats.TotalReviews) * 100
	}
	stats.SeasonRating = stats.AverageRating
	if stats.PreviousSeasonLessons > 0 {
		stats.PreviousSeason = previousSeason
	}
	if prevSeasonRatings > 0 {
		stats.PreviousSeasonRating = prevSeasonRatingSum / float64(prevSeasonRatings)
	}

	RefreshDerived(stats)
	return stats
}

// RecalculateStats rebuilds an instructor's record from their full lesson
// history. ResponseTimeHours and the rank fields survive a rebuild: the
// former is an external input, the latter belong to the ranking pass.
func RecalculateStats(instructorID uuid.UUID, lessons []models.Lesson) (*models.InstructorStats, error) {
	rebuilt := BuildStats(instructorID, lessons, time.Now())

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := InitializeStats(tx, instructorID); err != nil {
			return err
		}
		var existing models.InstructorStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "instructor_id = ?", instructorID).Error; err != nil {
			return err
		}

		rebuilt.ResponseTimeHours = existing.ResponseTimeHours
		rebuilt.Rank = existing.Rank
		rebuilt.PreviousRank = existing.PreviousRank
		rebuilt.RankChange = existing.RankChange
		rebuilt.CreatedAt = existing.CreatedAt
		RefreshDerived(rebuilt)
		rebuilt.RankingDirty = true

		return tx.Save(rebuilt).Error
	})
	if err != nil {
		return nil, err
	}
	return rebuilt, nil
}
