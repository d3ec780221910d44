package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedLesson(instructorID uuid.UUID, student *models.User, price float64, rating int, at time.Time) models.Lesson {
	return models.Lesson{
		ID:           uuid.New(),
		InstructorID: instructorID,
		Status:       models.LessonStatusCompleted,
		Price:        price,
		Students:     []*models.User{student},
		Reviews:      []models.Review{{StudentID: student.ID, Rating: rating}},
		CompletedAt:  &at,
	}
}

func TestBuildStatsTwoLessonsWorkedExample(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	lessons := []models.Lesson{
		completedLesson(instructorID, alice, 25, 5, now),
		completedLesson(instructorID, alice, 30, 4, now),
	}

	stats := BuildStats(instructorID, lessons, now)

	assert.Equal(t, int64(2), stats.TotalLessons)
	assert.Equal(t, int64(2), stats.TotalReviews)
	assert.InDelta(t, 4.5, stats.AverageRating, 1e-9)
	assert.InDelta(t, 100, stats.LessonSuccessRate, 1e-9, "both ratings are >= 4")
	assert.InDelta(t, 55, stats.TotalEarnings, 1e-9)

	// Same student in both lessons: counted once, and a repeat.
	assert.Equal(t, int64(1), stats.TotalStudents)
	assert.InDelta(t, 100, stats.RepeatStudentRate, 1e-9)

	assert.InDelta(t, 100, stats.CompletionRate, 1e-9)
	assert.Equal(t, "2026-Q3", stats.CurrentSeason)
	assert.Equal(t, int64(2), stats.SeasonLessons)
	assert.InDelta(t, 55, stats.SeasonEarnings, 1e-9)

	assert.Equal(t, PerformanceScore(stats), stats.PerformanceScore)
	assert.Equal(t, TierForScore(stats.PerformanceScore), stats.Tier)
}

func TestBuildStatsReplayIdempotent(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	bob := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	lessons := []models.Lesson{
		completedLesson(instructorID, alice, 25, 5, now),
		completedLesson(instructorID, bob, 40, 3, now),
		{InstructorID: instructorID, Status: models.LessonStatusCancelled},
	}

	first := BuildStats(instructorID, lessons, now)
	second := BuildStats(instructorID, lessons, now)

	require.Equal(t, first, second)
}

func TestBuildStatsSkipsInvalidRows(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	badPrice := completedLesson(instructorID, alice, -10, 5, now)
	badRating := completedLesson(instructorID, alice, 20, 5, now)
	badRating.Reviews = []models.Review{{StudentID: alice.ID, Rating: 6}}

	lessons := []models.Lesson{
		badPrice,
		badRating,
		completedLesson(instructorID, alice, 20, 4, now),
		{InstructorID: instructorID, Status: models.LessonStatusScheduled},
	}

	stats := BuildStats(instructorID, lessons, now)

	// The negative-price lesson and the out-of-range rating are skipped,
	// not fatal; the scheduled lesson is simply not completed yet.
	assert.Equal(t, int64(2), stats.TotalLessons)
	assert.Equal(t, int64(1), stats.TotalReviews)
	assert.InDelta(t, 4, stats.AverageRating, 1e-9)
	assert.InDelta(t, 40, stats.TotalEarnings, 1e-9)
}

func TestBuildStatsCancelledLowersCompletionRate(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	lessons := []models.Lesson{
		completedLesson(instructorID, alice, 25, 5, now),
		{InstructorID: instructorID, Status: models.LessonStatusCancelled},
	}

	stats := BuildStats(instructorID, lessons, now)
	assert.InDelta(t, 50, stats.CompletionRate, 1e-9)
}

func TestBuildStatsEmptyHistoryDefaults(t *testing.T) {
	stats := BuildStats(uuid.New(), nil, time.Now())

	assert.Equal(t, int64(0), stats.TotalLessons)
	assert.InDelta(t, 100, stats.CompletionRate, 1e-9, "no history means nothing failed")
	assert.InDelta(t, 0, stats.AverageRating, 1e-9)
	assert.Equal(t, models.TierBronze, TierForScore(stats.PerformanceScore))
	assert.Empty(t, stats.Badges)
}

func TestBuildStatsPreviousSeasonBuckets(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	lastQuarter := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)

	stats := BuildStats(instructorID, []models.Lesson{
		completedLesson(instructorID, alice, 25, 5, now),
		completedLesson(instructorID, alice, 30, 4, lastQuarter),
		completedLesson(instructorID, alice, 20, 3, lastQuarter),
	}, now)

	// Current-season buckets only count lessons completed this quarter; the
	// older lessons still count toward the lifetime totals.
	assert.Equal(t, int64(1), stats.SeasonLessons)
	assert.InDelta(t, 25, stats.SeasonEarnings, 1e-9)
	assert.Equal(t, int64(3), stats.TotalLessons)
	assert.InDelta(t, 75, stats.TotalEarnings, 1e-9)

	// Last quarter's lessons land in the previous-season bucket, rating
	// included.
	assert.Equal(t, "2026-Q2", stats.PreviousSeason)
	assert.Equal(t, int64(2), stats.PreviousSeasonLessons)
	assert.InDelta(t, 50, stats.PreviousSeasonEarnings, 1e-9)
	assert.InDelta(t, 3.5, stats.PreviousSeasonRating, 1e-9)
}

func TestBuildStatsNoPreviousSeasonWithoutOlderLessons(t *testing.T) {
	instructorID := uuid.New()
	alice := &models.User{ID: uuid.New()}
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	stats := BuildStats(instructorID, []models.Lesson{
		completedLesson(instructorID, alice, 25, 5, now),
	}, now)

	assert.Empty(t, stats.PreviousSeason)
	assert.Equal(t, int64(0), stats.PreviousSeasonLessons)
	assert.InDelta(t, 0, stats.PreviousSeasonRating, 1e-9)
}

func TestSeasonStartQuarterBoundaries(t *testing.T) {
	cases := []struct {
		in    time.Time
		start time.Time
	}{
		{time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.December, 25, 12, 0, 0, 0, time.UTC), time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.start, models.SeasonStart(tc.in))
	}

	// The day before a quarter starts belongs to the previous quarter, which
	// is how the rebuild derives the previous-season label.
	previous := models.SeasonLabel(models.SeasonStart(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)).AddDate(0, 0, -1))
	assert.Equal(t, "2025-Q4", previous)
}

func TestMergeRatingsMatchesBatchAverage(t *testing.T) {
	ratings := []int{5, 4, 3, 5, 5, 2, 4}

	avg, count := 0.0, int64(0)
	for _, r := range ratings {
		avg, count = mergeRatings(avg, count, []int{r})
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	assert.Equal(t, int64(len(ratings)), count)
	assert.InDelta(t, float64(sum)/float64(len(ratings)), avg, 1e-9)
}

func TestMergeRatingsEmptyBatch(t *testing.T) {
	avg, count := mergeRatings(4.5, 2, nil)
	assert.InDelta(t, 4.5, avg, 1e-9)
	assert.Equal(t, int64(2), count)
}

func TestRollSeasonShiftsBuckets(t *testing.T) {
	stats := &models.InstructorStats{
		CurrentSeason:  "2026-Q2",
		SeasonLessons:  7,
		SeasonEarnings: 350,
		SeasonRating:   4.4,
	}

	stats.RollSeason(time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-Q3", stats.CurrentSeason)
	assert.Equal(t, "2026-Q2", stats.PreviousSeason)
	assert.Equal(t, int64(7), stats.PreviousSeasonLessons)
	assert.InDelta(t, 350, stats.PreviousSeasonEarnings, 1e-9)
	assert.Equal(t, int64(0), stats.SeasonLessons)

	// Same quarter again: nothing moves.
	stats.RollSeason(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-Q2", stats.PreviousSeason)
	assert.Equal(t, int64(7), stats.PreviousSeasonLessons)
}
