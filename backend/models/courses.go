package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title        string
	ShortDesc    string
	Description  string
	Category     string // license category: A, B, C, ...
	SchoolID     uint
	InstructorID uint
	Lessons      []Lesson
}

// Lesson is one content unit of a course: a theory chapter or a
// practical driving exercise.
type Lesson struct {
	gorm.Model
	CourseID        uint
	Title           string
	Description     string
	Content         string
	SequenceOrder   int
	DurationMinutes int
	Practical       bool
}
