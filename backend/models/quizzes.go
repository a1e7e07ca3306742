package models

import "gorm.io/gorm"

type Quiz struct {
	gorm.Model
	CourseID  uint // 0 means the quiz is not attached to any course yet
	Title     string
	ShortDesc string
	PassScore int `gorm:"default:70"`
	Questions []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint
	Question      string
	Options       string // JSON array of options
	CorrectAnswer int
	SequenceOrder int
}
