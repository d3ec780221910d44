package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
)

// BadgeList is a set of badge labels persisted as a jsonb column.
type BadgeList []string

func (b BadgeList) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *BadgeList) Scan(value interface{}) error {
	if value == nil {
		*b = BadgeList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return errors.New("unsupported type for BadgeList")
}

func (b BadgeList) Contains(name string) bool {
	for _, badge := range b {
		if badge == name {
			return true
		}
	}
	return false
}

type InstructorStats struct {
	InstructorID uuid.UUID `gorm:"primary_key" json:"instructor_id"`

	TotalLessons  int64   `gorm:"default:0" json:"total_lessons"`
	TotalStudents int64   `gorm:"default:0" json:"total_students"`
	TotalReviews  int64   `gorm:"default:0" json:"total_reviews"`
	TotalEarnings float64 `gorm:"type:numeric(12,2);default:0.00" json:"total_earnings"`

	AverageRating     float64 `gorm:"default:0" json:"average_rating"`
	CompletionRate    float64 `gorm:"default:100" json:"completion_rate"`
	RepeatStudentRate float64 `gorm:"default:0" json:"repeat_student_rate"`
	LessonSuccessRate float64 `gorm:"default:0" json:"lesson_success_rate"`
	ResponseTimeHours float64 `gorm:"default:0" json:"response_time_hours"`

	// Derived fields. Never mutated directly: recomputed from the metrics
	// above every time the record is persisted.
	PerformanceScore int       `gorm:"default:0" json:"performance_score"`
	Tier             string    `gorm:"size:20;not null;default:'bronze'" json:"tier"`
	Badges           BadgeList `gorm:"type:jsonb;default:'[]'" json:"badges"`

	// Rank fields are only meaningful relative to the most recent ranking
	// pass. 0 means the instructor has not been ranked yet.
	Rank         int  `gorm:"default:0" json:"rank,omitempty"`
	PreviousRank int  `gorm:"default:0" json:"previous_rank,omitempty"`
	RankChange   int  `gorm:"default:0" json:"rank_change"`
	RankingDirty bool `gorm:"default:false;index" json:"-"`

	CurrentSeason          string  `gorm:"size:10" json:"current_season"`
	SeasonLessons          int64   `gorm:"default:0" json:"season_lessons"`
	SeasonEarnings         float64 `gorm:"type:numeric(12,2);default:0.00" json:"season_earnings"`
	SeasonRating           float64 `gorm:"default:0" json:"season_rating"`
	PreviousSeason         string  `gorm:"size:10" json:"previous_season"`
	PreviousSeasonLessons  int64   `gorm:"default:0" json:"previous_season_lessons"`
	PreviousSeasonEarnings float64 `gorm:"type:numeric(12,2);default:0.00" json:"previous_season_earnings"`
	PreviousSeasonRating   float64 `gorm:"default:0" json:"previous_season_rating"`

	Instructor User `gorm:"foreignkey:InstructorID" json:"-"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// SeasonLabel names the quarter a timestamp falls in, e.g. "2026-Q3".
func SeasonLabel(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}

// SeasonStart returns the first instant of the quarter t falls in.
func SeasonStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// RollSeason shifts the current-season bucket into the previous-season slot
// when the quarter has changed since the last write. No-op otherwise.
func (s *InstructorStats) RollSeason(now time.Time) {
	label := SeasonLabel(now)
	if s.CurrentSeason == label {
		return
	}
	if s.CurrentSeason != "" {
		s.PreviousSeason = s.CurrentSeason
		s.PreviousSeasonLessons = s.SeasonLessons
		s.PreviousSeasonEarnings = s.SeasonEarnings
		s.PreviousSeasonRating = s.SeasonRating
	}
	s.CurrentSeason = label
	s.SeasonLessons = 0
	s.SeasonEarnings = 0
	s.SeasonRating = 0
}
