package models

import (
	"time"

	"gorm.io/gorm"
)

// ContentKind discriminates what a ProgressRecord's ContentID refers to.
// Lesson and quiz ids live in separate tables, so the kind is part of the
// ledger tuple instead of assuming the id spaces never overlap.
type ContentKind string

const (
	KindLesson ContentKind = "lesson"
	KindQuiz   ContentKind = "quiz"
)

// ProgressRecord is the ledger entry for one student's cumulative
// interaction with one content unit inside one course. There is exactly
// one row per (student, course, content, kind) tuple.
//
// TimeSpentSeconds accumulates across events; PercentComplete is
// last-write-wins. IsCompleted never reverts to false and CompletedAt is
// written once, on the event that first reaches 100 percent.
type ProgressRecord struct {
	gorm.Model
	StudentID        uint        `gorm:"uniqueIndex:idx_progress_tuple"`
	CourseID         uint        `gorm:"uniqueIndex:idx_progress_tuple"`
	ContentID        uint        `gorm:"uniqueIndex:idx_progress_tuple"`
	Kind             ContentKind `gorm:"uniqueIndex:idx_progress_tuple;size:16"`
	PercentComplete  int
	TimeSpentSeconds int
	Attempts         int
	IsCompleted      bool
	QuizScore        *int
	FirstViewedAt    time.Time
	CompletedAt      *time.Time
	LastAccessedAt   time.Time
}

// CourseSummary is derived on demand from the ledger plus the course's
// lesson and quiz counts. It is never persisted.
type CourseSummary struct {
	CourseID               uint          `json:"course_id"`
	TotalLessons           int           `json:"total_lessons"`
	CompletedLessons       int           `json:"completed_lessons"`
	TotalQuizzes           int           `json:"total_quizzes"`
	CompletedQuizzes       int           `json:"completed_quizzes"`
	AverageQuizScore       float64       `json:"average_quiz_score"`
	TotalTimeSpent         int           `json:"total_time_spent"`
	OverallProgressPercent float64       `json:"overall_progress_percent"`
	LastActivityAt         time.Time     `json:"last_activity_at"`
	DailyProgress          []DailyBucket `json:"daily_progress"`
}

// DailyBucket is one calendar day's slice of activity, bucketed by the
// record's LastAccessedAt truncated to a UTC date.
type DailyBucket struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	LessonsCompleted int     `json:"lessons_completed"`
	TimeSpent        int     `json:"time_spent"`
	AveragePercent   float64 `json:"average_percent"`
}

type LessonProgressEntry struct {
	ContentID        uint       `json:"content_id"`
	Title            string     `json:"title"`
	PercentComplete  int        `json:"percent_complete"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	QuizScore        *int       `json:"quiz_score,omitempty"`
	Attempts         int        `json:"attempts"`
	LastAccessedAt   time.Time  `json:"last_accessed_at"`
}

type StudentDailyStats struct {
	TotalTimeSpent   int     `json:"total_time_spent"`
	LessonsCompleted int     `json:"lessons_completed"`
	AverageProgress  float64 `json:"average_progress"`
	TotalAttempts    int     `json:"total_attempts"`
}

type ClassDailyEntry struct {
	StudentID uint `json:"student_id"`
	StudentDailyStats
}
