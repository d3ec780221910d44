package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonStatusAvailable  = "available"
	LessonStatusScheduled  = "scheduled"
	LessonStatusInProgress = "in_progress"
	LessonStatusCompleted  = "completed"
	LessonStatusCancelled  = "cancelled"
)

type Lesson struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID `gorm:"not null;index" json:"instructor_id"`
	Status       string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Price        float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency     string    `gorm:"size:3" json:"currency"`

	Instructor User     `gorm:"foreignkey:InstructorID" json:"-"`
	Students   []*User  `gorm:"many2many:lesson_students;" json:"students,omitempty"`
	Reviews    []Review `gorm:"foreignkey:LessonID" json:"reviews,omitempty"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
