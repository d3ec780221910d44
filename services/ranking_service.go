package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankedInstructor is one leaderboard entry: display identity plus the
// instructor's current stats and position.
type RankedInstructor struct {
	Instructor models.User            `json:"instructor"`
	Stats      models.InstructorStats `json:"stats"`
	Rank       int                    `json:"rank"`
	RankChange int                    `json:"rank_change"`
}

// SortInstructors orders by performance score descending. Ties break on
// total lessons descending, then instructor id ascending, so the ordering
// is always total.
func SortInstructors(stats []models.InstructorStats) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PerformanceScore != stats[j].PerformanceScore {
			return stats[i].PerformanceScore > stats[j].PerformanceScore
		}
		if stats[i].TotalLessons != stats[j].TotalLessons {
			return stats[i].TotalLessons > stats[j].TotalLessons
		}
		return stats[i].InstructorID.String() < stats[j].InstructorID.String()
	})
}

// AssignRanks writes rank 1..n onto an already sorted slice and returns how
// many instructors moved. A first-time entrant gets RankChange 0; running
// the pass twice with no mutations in between also yields 0 everywhere.
func AssignRanks(stats []models.InstructorStats) int {
	moved := 0
	for i := range stats {
		stats[i].PreviousRank = stats[i].Rank
		stats[i].Rank = i + 1
		if stats[i].PreviousRank == 0 {
			stats[i].RankChange = 0
		} else {
			stats[i].RankChange = stats[i].PreviousRank - stats[i].Rank
		}
		if stats[i].RankChange != 0 {
			moved++
		}
		stats[i].RankingDirty = false
	}
	return moved
}

// RefreshRanking is the batch pass: it sorts the whole instructor population
// and writes rank, previous rank and rank change back in one transaction.
// O(N log N), which is why mutations only mark the ranking dirty instead of
// calling this inline.
func RefreshRanking() (int, error) {
	var moved int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var all []models.InstructorStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("instructor_id asc").
			Find(&all).Error; err != nil {
			return err
		}

		SortInstructors(all)
		moved = AssignRanks(all)

		now := time.Now()
		for i := range all {
			if err := tx.Model(&models.InstructorStats{}).
				Where("instructor_id = ?", all[i].InstructorID).
				UpdateColumns(map[string]interface{}{
					"rank":          all[i].Rank,
					"previous_rank": all[i].PreviousRank,
					"rank_change":   all[i].RankChange,
					"ranking_dirty": false,
					"last_updated":  now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return moved, err
}

// RefreshInstructorRanking runs the full pass and reports the given
// instructor's new position.
func RefreshInstructorRanking(instructorID uuid.UUID) (*models.InstructorStats, error) {
	if _, err := RefreshRanking(); err != nil {
		return nil, err
	}
	return GetInstructorStats(instructorID)
}

// rankTop sorts a stats snapshot, truncates it to limit and assembles the
// leaderboard entries. Ranks are positional within the snapshot, 1..n with
// no gaps. A non-positive limit falls back to 10.
func rankTop(all []models.InstructorStats, limit int) []RankedInstructor {
	if limit <= 0 {
		limit = 10
	}

	SortInstructors(all)
	if len(all) > limit {
		all = all[:limit]
	}

	top := make([]RankedInstructor, 0, len(all))
	for i := range all {
		top = append(top, RankedInstructor{
			Instructor: all[i].Instructor,
			Stats:      all[i],
			Rank:       i + 1,
			RankChange: all[i].RankChange,
		})
	}
	return top
}

// TopInstructors returns the first limit entries of the current total order,
// joined with display identity.
func TopInstructors(limit int) ([]RankedInstructor, error) {
	var all []models.InstructorStats
	if err := database.DB.Preload("Instructor").Find(&all).Error; err != nil {
		return nil, err
	}
	return rankTop(all, limit), nil
}
