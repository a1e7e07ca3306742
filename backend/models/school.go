package models

import "gorm.io/gorm"

// School is the tenant: every student, instructor, course and payment
// belongs to exactly one driving school.
type School struct {
	gorm.Model
	Name    string `gorm:"unique;not null"`
	Address string
	City    string
	Phone   string
	Email   string
}
