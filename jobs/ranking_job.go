package jobs

import (
	"log"

	"github.com/lessonhub/lesson_booking/database"
	"github.com/lessonhub/lesson_booking/models"
	"github.com/lessonhub/lesson_booking/services"
)

// RecomputeRankings is the scheduled ranking pass. Mutations only mark an
// instructor's ranking dirty; this job does the actual O(N log N) sort.
// Running it again with nothing dirty is a no-op.
func RecomputeRankings() {
	log.Println("Running job: RecomputeRankings...")

	var dirty int64
	err := database.DB.Model(&models.InstructorStats{}).
		Where("ranking_dirty = ?", true).
		Count(&dirty).Error
	if err != nil {
		log.Printf("Error checking for dirty rankings: %v", err)
		return
	}

	if dirty == 0 {
		log.Println("No ranking changes pending.")
		return
	}

	moved, err := services.RefreshRanking()
	if err != nil {
		log.Printf("🔥 Failed to refresh ranking: %v", err)
		return
	}

	log.Printf("Ranking refreshed: %d instructor(s) pending, %d moved.", dirty, moved)
}
