package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint
	BatchID uint
	Kind    string // booking_reminder, payment_due, quiz_result, announcement
	Title   string
	Body    string
	Read    bool `gorm:"default:false"`
}

// NotificationBatch groups notifications sent in one announcement.
// Recipient counts are derived from the notifications table at read
// time, never stored on the batch.
type NotificationBatch struct {
	gorm.Model
	SchoolID  uint
	CreatedBy uint
	Kind      string
	Title     string
	Body      string
}
