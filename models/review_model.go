package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewHidden   ReviewState = "hidden"
)

type Review struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LessonID     uuid.UUID `gorm:"not null;index;uniqueIndex:idx_reviews_lesson_student" json:"lesson_id"`
	StudentID    uuid.UUID `gorm:"not null;uniqueIndex:idx_reviews_lesson_student" json:"student_id"`
	InstructorID uuid.UUID `gorm:"not null;index" json:"instructor_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`

	// Both flags are nullable on purpose: reviews written before moderation
	// existed carry neither flag and stay public.
	IsApproved *bool `json:"is_approved"`
	IsHidden   *bool `json:"is_hidden"`

	Student    User `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Instructor User `gorm:"foreignkey:InstructorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State decodes the (IsApproved, IsHidden) pair into the moderation state.
// This is the only place the legacy defaulting rule lives: a review with
// neither flag set predates moderation and counts as approved.
func (r *Review) State() ReviewState {
	if r.IsHidden != nil && *r.IsHidden {
		return ReviewHidden
	}
	if r.IsApproved != nil && *r.IsApproved {
		return ReviewApproved
	}
	if r.IsApproved == nil && r.IsHidden == nil {
		return ReviewApproved
	}
	return ReviewPending
}

// Approve moves the review to Approved no matter its prior state. Idempotent.
func (r *Review) Approve() {
	approved, hidden := true, false
	r.IsApproved = &approved
	r.IsHidden = &hidden
}

// Hide moves the review to Hidden no matter its prior state. Idempotent.
// There is no transition back to Pending once a review leaves it.
func (r *Review) Hide() {
	approved, hidden := false, true
	r.IsApproved = &approved
	r.IsHidden = &hidden
}

// IsPublic reports whether the review belongs on the public profile.
func (r *Review) IsPublic() bool {
	return r.State() == ReviewApproved
}
