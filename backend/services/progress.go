package services

import (
	"errors"
	"fmt"
	"project/backend/models"
	"time"

	"gorm.io/gorm"
)

// ProgressService is the write path of the progress ledger. Each call
// turns one learning event into one ledger mutation, inside a single
// transaction, so a call either fully applies or has no effect.
type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// RecordProgress applies a partial-progress event for a lesson.
// The percent overwrites the stored value, the time delta is added to
// the cumulative total, and the attempt counter goes up by one.
func (s *ProgressService) RecordProgress(studentID, courseID, contentID uint, percent, timeDelta int) (*models.ProgressRecord, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: percent must be between 0 and 100, got %d", ErrInvalidArgument, percent)
	}
	if timeDelta < 0 {
		return nil, fmt.Errorf("%w: time delta must not be negative, got %d", ErrInvalidArgument, timeDelta)
	}

	var rec *models.ProgressRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = applyEvent(tx, studentID, courseID, contentID, models.KindLesson, func(r *models.ProgressRecord) {
			r.PercentComplete = percent
			r.TimeSpentSeconds += timeDelta
			r.Attempts++
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordCompletion marks a lesson done without a numeric percent, for
// clients that only report "finished". It does not count as an extra
// attempt and adds no time.
func (s *ProgressService) RecordCompletion(studentID, courseID, contentID uint) (*models.ProgressRecord, error) {
	var rec *models.ProgressRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.Where("id = ? AND course_id = ?", contentID, courseID).First(&lesson).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lesson %d in course %d", ErrNotFound, contentID, courseID)
			}
			return err
		}

		var err error
		rec, err = applyEvent(tx, studentID, courseID, contentID, models.KindLesson, func(r *models.ProgressRecord) {
			r.PercentComplete = 100
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordQuizScore stores a quiz result against the quiz's owning
// course. A scored quiz is definitionally complete, so the ledger row
// is forced to 100 percent and completed.
func (s *ProgressService) RecordQuizScore(studentID, quizID uint, score int) (*models.ProgressRecord, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score must be between 0 and 100, got %d", ErrInvalidArgument, score)
	}

	var rec *models.ProgressRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.First(&quiz, quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quiz %d", ErrNotFound, quizID)
			}
			return err
		}
		if quiz.CourseID == 0 {
			return fmt.Errorf("%w: quiz %d has no owning course", ErrInvalidState, quizID)
		}

		var err error
		rec, err = applyEvent(tx, studentID, quiz.CourseID, quizID, models.KindQuiz, func(r *models.ProgressRecord) {
			r.QuizScore = &score
			r.PercentComplete = 100
			r.Attempts++
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// applyEvent loads or creates the ledger row for a tuple inside tx,
// lets mutate adjust it, then enforces the completion invariants and
// saves. IsCompleted never reverts and CompletedAt is written at most
// once, on the event that first reaches 100 percent.
func applyEvent(tx *gorm.DB, studentID, courseID, contentID uint, kind models.ContentKind, mutate func(*models.ProgressRecord)) (*models.ProgressRecord, error) {
	now := time.Now().UTC()

	var rec models.ProgressRecord
	err := tx.Where("student_id = ? AND course_id = ? AND content_id = ? AND kind = ?",
		studentID, courseID, contentID, kind).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.ProgressRecord{
			StudentID:     studentID,
			CourseID:      courseID,
			ContentID:     contentID,
			Kind:          kind,
			FirstViewedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	mutate(&rec)
	rec.LastAccessedAt = now

	if rec.PercentComplete >= 100 && !rec.IsCompleted {
		rec.IsCompleted = true
		rec.CompletedAt = &now
	}

	if err := tx.Save(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
