package services

import (
	"math"
	"sort"

	"github.com/lessonhub/lesson_booking/models"
)

// PerformanceScore folds the aggregated metrics into a 0-100 composite.
// Weights: rating 30, experience 20, completion 15, repeat students 15,
// lesson success 10, response time 10. The response term rewards fast
// responders: 0 hours earns the full 10 points, 24+ hours earns none.
func PerformanceScore(stats *models.InstructorStats) int {
	ratingScore := (stats.AverageRating / 5) * 30
	experienceScore := math.Min(float64(stats.TotalLessons)/100, 1) * 20
	completionScore := (stats.CompletionRate / 100) * 15
	repeatScore := (stats.RepeatStudentRate / 100) * 15
	successScore := (stats.LessonSuccessRate / 100) * 10
	responseScore := math.Max((24-stats.ResponseTimeHours)/24, 0) * 10

	score := int(math.Round(ratingScore + experienceScore + completionScore + repeatScore + successScore + responseScore))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TierForScore classifies a performance score into a tier label.
func TierForScore(score int) string {
	switch {
	case score >= 90:
		return models.TierDiamond
	case score >= 80:
		return models.TierPlatinum
	case score >= 70:
		return models.TierGold
	case score >= 60:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

type badgeRung struct {
	threshold float64
	name      string
}

// Each ladder awards at most one badge, the highest rung reached.
var (
	lessonBadges = []badgeRung{
		{500, "Master Instructor"},
		{100, "Century Club"},
		{50, "Seasoned Instructor"},
		{10, "Getting Started"},
	}
	ratingBadges = []badgeRung{
		{4.8, "Top Rated"},
		{4.5, "Highly Rated"},
		{4.0, "Well Rated"},
	}
	studentBadges = []badgeRung{
		{250, "Student Magnet"},
		{100, "Crowd Favorite"},
		{25, "Community Builder"},
	}
	earningsBadges = []badgeRung{
		{50000, "Elite Earner"},
		{10000, "Top Earner"},
		{1000, "First Milestone"},
	}
	scoreBadges = []badgeRung{
		{90, "Diamond Performer"},
		{80, "Platinum Performer"},
		{70, "Gold Performer"},
	}
)

func highestBadge(rungs []badgeRung, value float64) (string, bool) {
	for _, rung := range rungs {
		if value >= rung.threshold {
			return rung.name, true
		}
	}
	return "", false
}

// CalculateBadges evaluates the five threshold ladders against the current
// metrics. The result is a set; it is sorted only so the stored value is
// deterministic.
func CalculateBadges(stats *models.InstructorStats) models.BadgeList {
	badges := models.BadgeList{}

	ladders := []struct {
		rungs []badgeRung
		value float64
	}{
		{lessonBadges, float64(stats.TotalLessons)},
		{ratingBadges, stats.AverageRating},
		{studentBadges, float64(stats.TotalStudents)},
		{earningsBadges, stats.TotalEarnings},
		{scoreBadges, float64(stats.PerformanceScore)},
	}

	for _, ladder := range ladders {
		if name, ok := highestBadge(ladder.rungs, ladder.value); ok {
			badges = append(badges, name)
		}
	}

	sort.Strings(badges)
	return badges
}

// RefreshDerived recomputes score, tier and badges from the raw metrics.
// Every persistence path must go through this so the derived fields can
// never drift from the counters they are defined by.
func RefreshDerived(stats *models.InstructorStats) {
	stats.PerformanceScore = PerformanceScore(stats)
	stats.Tier = TierForScore(stats.PerformanceScore)
	stats.Badges = CalculateBadges(stats)
}
