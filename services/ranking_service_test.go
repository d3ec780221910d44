package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortInstructorsDescendingByScore(t *testing.T) {
	stats := []models.InstructorStats{
		{InstructorID: uuid.New(), PerformanceScore: 40},
		{InstructorID: uuid.New(), PerformanceScore: 95},
		{InstructorID: uuid.New(), PerformanceScore: 72},
	}

	SortInstructors(stats)

	assert.Equal(t, 95, stats[0].PerformanceScore)
	assert.Equal(t, 72, stats[1].PerformanceScore)
	assert.Equal(t, 40, stats[2].PerformanceScore)
}

func TestSortInstructorsTieBreaks(t *testing.T) {
	lowID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	highID := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	// Equal scores: more lessons wins.
	stats := []models.InstructorStats{
		{InstructorID: lowID, PerformanceScore: 80, TotalLessons: 10},
		{InstructorID: highID, PerformanceScore: 80, TotalLessons: 200},
	}
	SortInstructors(stats)
	assert.Equal(t, highID, stats[0].InstructorID)

	// Equal scores and lessons: lower id wins, so the order is total.
	stats = []models.InstructorStats{
		{InstructorID: highID, PerformanceScore: 80, TotalLessons: 50},
		{InstructorID: lowID, PerformanceScore: 80, TotalLessons: 50},
	}
	SortInstructors(stats)
	assert.Equal(t, lowID, stats[0].InstructorID)
}

func TestSortInstructorsDeterministic(t *testing.T) {
	a := []models.InstructorStats{
		{InstructorID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), PerformanceScore: 70, TotalLessons: 5},
		{InstructorID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), PerformanceScore: 70, TotalLessons: 5},
		{InstructorID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), PerformanceScore: 70, TotalLessons: 5},
	}
	b := []models.InstructorStats{a[2], a[0], a[1]}

	SortInstructors(a)
	SortInstructors(b)
	require.Equal(t, a, b)
}

func TestAssignRanksSequentialWithoutGaps(t *testing.T) {
	stats := make([]models.InstructorStats, 5)
	for i := range stats {
		stats[i] = models.InstructorStats{
			InstructorID:     uuid.New(),
			PerformanceScore: 100 - i*10,
			RankingDirty:     true,
		}
	}

	AssignRanks(stats)

	for i := range stats {
		assert.Equal(t, i+1, stats[i].Rank)
		assert.False(t, stats[i].RankingDirty)
	}
}

func TestAssignRanksFirstPassReportsNoMovement(t *testing.T) {
	stats := []models.InstructorStats{
		{InstructorID: uuid.New(), PerformanceScore: 90},
		{InstructorID: uuid.New(), PerformanceScore: 50},
	}

	moved := AssignRanks(stats)

	assert.Equal(t, 0, moved, "first-time entrants have no previous rank to move from")
	for i := range stats {
		assert.Equal(t, 0, stats[i].RankChange)
	}
}

func TestAssignRanksSecondPassIsNoOp(t *testing.T) {
	stats := []models.InstructorStats{
		{InstructorID: uuid.New(), PerformanceScore: 90},
		{InstructorID: uuid.New(), PerformanceScore: 70},
		{InstructorID: uuid.New(), PerformanceScore: 50},
	}

	SortInstructors(stats)
	AssignRanks(stats)

	SortInstructors(stats)
	moved := AssignRanks(stats)

	assert.Equal(t, 0, moved)
	for i := range stats {
		assert.Equal(t, stats[i].Rank, stats[i].PreviousRank)
		assert.Equal(t, 0, stats[i].RankChange)
	}
}

func TestRankTopReturnsAtMostLimit(t *testing.T) {
	all := make([]models.InstructorStats, 15)
	for i := range all {
		all[i] = models.InstructorStats{
			InstructorID:     uuid.New(),
			PerformanceScore: i * 5,
		}
	}

	top := rankTop(all, 5)

	assert.Len(t, top, 5)
	for i := range top {
		assert.Equal(t, i+1, top[i].Rank, "ranks are positional, 1..n with no gaps")
	}
	// Strictly descending: the best of the 15 leads, nobody below the cut.
	assert.Equal(t, 70, top[0].Stats.PerformanceScore)
	assert.Equal(t, 50, top[4].Stats.PerformanceScore)
}

func TestRankTopDefaultsLimitToTen(t *testing.T) {
	all := make([]models.InstructorStats, 12)
	for i := range all {
		all[i] = models.InstructorStats{InstructorID: uuid.New(), PerformanceScore: i}
	}

	assert.Len(t, rankTop(all, 0), 10)

	all = make([]models.InstructorStats, 12)
	for i := range all {
		all[i] = models.InstructorStats{InstructorID: uuid.New(), PerformanceScore: i}
	}
	assert.Len(t, rankTop(all, -3), 10)
}

func TestRankTopShortPopulation(t *testing.T) {
	all := []models.InstructorStats{
		{InstructorID: uuid.New(), PerformanceScore: 80, RankChange: 2},
		{InstructorID: uuid.New(), PerformanceScore: 60},
	}

	top := rankTop(all, 10)

	assert.Len(t, top, 2)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, 2, top[1].Rank)
	assert.Equal(t, 2, top[0].RankChange, "rank change carries over from the last batch pass")
}

func TestAssignRanksPositiveChangeMeansImprovement(t *testing.T) {
	climber := models.InstructorStats{InstructorID: uuid.New(), PerformanceScore: 60}
	leader := models.InstructorStats{InstructorID: uuid.New(), PerformanceScore: 90}

	stats := []models.InstructorStats{leader, climber}
	SortInstructors(stats)
	AssignRanks(stats)

	// The climber overtakes the leader before the next pass.
	for i := range stats {
		if stats[i].InstructorID == climber.InstructorID {
			stats[i].PerformanceScore = 95
		}
	}

	SortInstructors(stats)
	moved := AssignRanks(stats)

	assert.Equal(t, 2, moved)
	assert.Equal(t, climber.InstructorID, stats[0].InstructorID)
	assert.Equal(t, 1, stats[0].RankChange, "rank 2 -> 1 reads as +1")
	assert.Equal(t, -1, stats[1].RankChange, "rank 1 -> 2 reads as -1")
}
