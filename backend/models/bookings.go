package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking schedules one practical driving slot between a student and an
// instructor. Completing a booking for a practical lesson also records
// that lesson as done in the progress ledger.
type Booking struct {
	gorm.Model
	StudentID    uint
	InstructorID uint
	CourseID     uint
	LessonID     uint
	StartsAt     time.Time
	EndsAt       time.Time
	Vehicle      string
	Status       string `gorm:"default:scheduled"` // scheduled, completed, cancelled
}
