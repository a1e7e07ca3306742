package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	gorm.Model
	StudentID   uint
	SchoolID    uint
	CourseID    uint
	AmountCents int
	Currency    string `gorm:"default:EUR"`
	Purpose     string // course fee, exam fee, extra driving hour
	Status      string `gorm:"default:pending"` // pending, paid, refunded
	PaidAt      *time.Time
}
