package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username        string `gorm:"unique;not null" json:"username"`
	Email           string `gorm:"unique;not null" json:"email"`
	PasswordHash    string `gorm:"not null" json:"password_hash"`
	Role            string `gorm:"default:student" json:"role"` // student, instructor, admin
	SchoolID        uint   `json:"school_id"`
	Phone           string `json:"phone"`
	LicenseCategory string `json:"license_category"` // A, B, C, ...
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
