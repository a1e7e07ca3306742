package services

import (
	"errors"
	"fmt"
	"project/backend/models"
	"sort"
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// RollupService is the read side of the progress core. Every rollup is
// computed from the ledger on demand; nothing here writes, and no
// denormalized counters are kept anywhere that could drift.
type RollupService struct {
	DB *gorm.DB
}

func NewRollupService(db *gorm.DB) *RollupService {
	return &RollupService{DB: db}
}

// CourseSummary aggregates one student's standing in one course:
// lesson and quiz completion counts, average quiz score, total time,
// overall percentage and the last 7 days of activity.
func (s *RollupService) CourseSummary(studentID, courseID uint) (*models.CourseSummary, error) {
	var course models.Course
	if err := s.DB.Preload("Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
		}
		return nil, err
	}

	var totalQuizzes int64
	if err := s.DB.Model(&models.Quiz{}).Where("course_id = ?", courseID).Count(&totalQuizzes).Error; err != nil {
		return nil, err
	}

	records, err := s.courseRecords(studentID, courseID)
	if err != nil {
		return nil, err
	}

	summary := &models.CourseSummary{
		CourseID:     courseID,
		TotalLessons: len(course.Lessons),
		TotalQuizzes: int(totalQuizzes),
	}

	var scoreSum, scored int
	for _, rec := range records {
		summary.TotalTimeSpent += rec.TimeSpentSeconds
		if rec.LastAccessedAt.After(summary.LastActivityAt) {
			summary.LastActivityAt = rec.LastAccessedAt
		}
		switch rec.Kind {
		case models.KindLesson:
			if rec.IsCompleted {
				summary.CompletedLessons++
			}
		case models.KindQuiz:
			if rec.IsCompleted {
				summary.CompletedQuizzes++
			}
			if rec.QuizScore != nil {
				scoreSum += *rec.QuizScore
				scored++
			}
		}
	}

	if scored > 0 {
		summary.AverageQuizScore = float64(scoreSum) / float64(scored)
	}
	if summary.TotalLessons > 0 {
		summary.OverallProgressPercent = float64(summary.CompletedLessons) / float64(summary.TotalLessons) * 100
	}
	// The UI expects a date here even before any activity.
	if summary.LastActivityAt.IsZero() {
		summary.LastActivityAt = time.Now().UTC()
	}

	summary.DailyProgress = dailyBuckets(records, 7)
	return summary, nil
}

// LessonProgress left-joins every lesson of the course against the
// student's ledger. Lessons never touched come back with zero values
// and a last-access of now. Sorted ascending by last access.
func (s *RollupService) LessonProgress(studentID, courseID uint) ([]models.LessonProgressEntry, error) {
	var course models.Course
	if err := s.DB.Preload("Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
		}
		return nil, err
	}

	records, err := s.courseRecords(studentID, courseID)
	if err != nil {
		return nil, err
	}

	byContent := make(map[uint]models.ProgressRecord)
	for _, rec := range records {
		if rec.Kind == models.KindLesson {
			byContent[rec.ContentID] = rec
		}
	}

	now := time.Now().UTC()
	entries := make([]models.LessonProgressEntry, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		entry := models.LessonProgressEntry{
			ContentID:      lesson.ID,
			Title:          lesson.Title,
			LastAccessedAt: now,
		}
		if rec, ok := byContent[lesson.ID]; ok {
			entry.PercentComplete = rec.PercentComplete
			entry.TimeSpentSeconds = rec.TimeSpentSeconds
			entry.IsCompleted = rec.IsCompleted
			entry.CompletedAt = rec.CompletedAt
			entry.QuizScore = rec.QuizScore
			entry.Attempts = rec.Attempts
			entry.LastAccessedAt = rec.LastAccessedAt
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastAccessedAt.Before(entries[j].LastAccessedAt)
	})
	return entries, nil
}

// DailyProgress returns one bucket per calendar day for the window
// [today-windowDays, today], oldest first, zero-filled for days with
// no activity.
func (s *RollupService) DailyProgress(studentID, courseID uint, windowDays int) ([]models.DailyBucket, error) {
	if windowDays < 0 {
		return nil, fmt.Errorf("%w: window must not be negative, got %d", ErrInvalidArgument, windowDays)
	}

	records, err := s.courseRecords(studentID, courseID)
	if err != nil {
		return nil, err
	}
	return dailyBuckets(records, windowDays), nil
}

// StudentDailyAnalytics aggregates one student's activity across all
// courses for a single calendar day.
func (s *RollupService) StudentDailyAnalytics(studentID uint, date time.Time) (*models.StudentDailyStats, error) {
	dayStart := date.UTC().Truncate(24 * time.Hour)

	var records []models.ProgressRecord
	err := s.DB.Where("student_id = ? AND last_accessed_at >= ? AND last_accessed_at < ?",
		studentID, dayStart, dayStart.Add(24*time.Hour)).Find(&records).Error
	if err != nil {
		return nil, err
	}

	stats := aggregateDay(records)
	return &stats, nil
}

// ClassDailyAnalytics returns one per-student daily aggregate for every
// student with any ledger activity in the course on that day.
func (s *RollupService) ClassDailyAnalytics(courseID uint, date time.Time) ([]models.ClassDailyEntry, error) {
	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
		}
		return nil, err
	}

	dayStart := date.UTC().Truncate(24 * time.Hour)

	var records []models.ProgressRecord
	err := s.DB.Where("course_id = ? AND last_accessed_at >= ? AND last_accessed_at < ?",
		courseID, dayStart, dayStart.Add(24*time.Hour)).Find(&records).Error
	if err != nil {
		return nil, err
	}

	byStudent := make(map[uint][]models.ProgressRecord)
	for _, rec := range records {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	entries := make([]models.ClassDailyEntry, 0, len(byStudent))
	for studentID, recs := range byStudent {
		entries = append(entries, models.ClassDailyEntry{
			StudentID:         studentID,
			StudentDailyStats: aggregateDay(recs),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StudentID < entries[j].StudentID })
	return entries, nil
}

// OverallProgressPercent is the summary percentage on its own, for
// callers that only need the number. A course with no lessons is 0.
func (s *RollupService) OverallProgressPercent(studentID, courseID uint) (float64, error) {
	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
		}
		return 0, err
	}

	var totalLessons int64
	if err := s.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&totalLessons).Error; err != nil {
		return 0, err
	}
	if totalLessons == 0 {
		return 0, nil
	}

	var completed int64
	err := s.DB.Model(&models.ProgressRecord{}).
		Where("student_id = ? AND course_id = ? AND kind = ? AND is_completed = ?",
			studentID, courseID, models.KindLesson, true).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	return float64(completed) / float64(totalLessons) * 100, nil
}

func (s *RollupService) courseRecords(studentID, courseID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	err := s.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// dailyBuckets attributes each record to the UTC calendar date of its
// last access, then fills the window oldest-to-newest. A record touched
// again later moves to the newer bucket.
func dailyBuckets(records []models.ProgressRecord, windowDays int) []models.DailyBucket {
	type dayAgg struct {
		completed  int
		timeSpent  int
		percentSum int
		count      int
	}
	byDay := make(map[string]*dayAgg)
	for _, rec := range records {
		day := rec.LastAccessedAt.UTC().Format(dateLayout)
		agg := byDay[day]
		if agg == nil {
			agg = &dayAgg{}
			byDay[day] = agg
		}
		if rec.Kind == models.KindLesson && rec.IsCompleted {
			agg.completed++
		}
		agg.timeSpent += rec.TimeSpentSeconds
		agg.percentSum += rec.PercentComplete
		agg.count++
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	buckets := make([]models.DailyBucket, 0, windowDays+1)
	for i := windowDays; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dateLayout)
		bucket := models.DailyBucket{Date: day}
		if agg, ok := byDay[day]; ok {
			bucket.LessonsCompleted = agg.completed
			bucket.TimeSpent = agg.timeSpent
			bucket.AveragePercent = float64(agg.percentSum) / float64(agg.count)
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// aggregateDay folds a day's records into the single-day stats shape
// shared by the per-student and per-class analytics.
func aggregateDay(records []models.ProgressRecord) models.StudentDailyStats {
	var stats models.StudentDailyStats
	var percentSum int
	for _, rec := range records {
		stats.TotalTimeSpent += rec.TimeSpentSeconds
		stats.TotalAttempts += rec.Attempts
		if rec.Kind == models.KindLesson && rec.IsCompleted {
			stats.LessonsCompleted++
		}
		percentSum += rec.PercentComplete
	}
	if len(records) > 0 {
		stats.AverageProgress = float64(percentSum) / float64(len(records))
	}
	return stats
}
