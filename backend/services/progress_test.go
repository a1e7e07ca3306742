package services

import (
	"fmt"
	"project/backend/models"
	"project/backend/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lessonCount int) (models.Course, []models.Lesson) {
	t.Helper()

	course := models.Course{Title: "Category B theory", Category: "B", SchoolID: 1}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]models.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := models.Lesson{
			CourseID:      course.ID,
			Title:         fmt.Sprintf("Lesson %d", i+1),
			SequenceOrder: i + 1,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func seedQuiz(t *testing.T, db *gorm.DB, courseID uint) models.Quiz {
	t.Helper()

	quiz := models.Quiz{CourseID: courseID, Title: "Road signs", PassScore: 70}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func TestRecordProgressValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	_, err := svc.RecordProgress(1, 1, 1, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RecordProgress(1, 1, 1, 101, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RecordProgress(1, 1, 1, 50, -10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var count int64
	db.Model(&models.ProgressRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRecordProgressOverwritesPercentAccumulatesTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 2)

	_, err := svc.RecordProgress(1, course.ID, lessons[0].ID, 40, 120)
	require.NoError(t, err)

	rec, err := svc.RecordProgress(1, course.ID, lessons[0].ID, 75, 60)
	require.NoError(t, err)

	assert.Equal(t, 75, rec.PercentComplete)
	assert.Equal(t, 180, rec.TimeSpentSeconds)
	assert.Equal(t, 2, rec.Attempts)
	assert.False(t, rec.IsCompleted)
	assert.Nil(t, rec.CompletedAt)

	// Exactly one ledger row for the tuple.
	var count int64
	db.Model(&models.ProgressRecord{}).
		Where("student_id = ? AND course_id = ? AND content_id = ?", 1, course.ID, lessons[0].ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTimeSpentSumsAcrossEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 1)

	deltas := []int{30, 0, 250, 1}
	percents := []int{10, 90, 20, 55}
	total := 0
	for i, d := range deltas {
		_, err := svc.RecordProgress(7, course.ID, lessons[0].ID, percents[i], d)
		require.NoError(t, err)
		total += d
	}

	var rec models.ProgressRecord
	require.NoError(t, db.Where("student_id = ?", 7).First(&rec).Error)
	assert.Equal(t, total, rec.TimeSpentSeconds)
	assert.Equal(t, 55, rec.PercentComplete)
}

func TestCompletionIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 1)

	rec, err := svc.RecordProgress(1, course.ID, lessons[0].ID, 100, 10)
	require.NoError(t, err)
	require.True(t, rec.IsCompleted)
	require.NotNil(t, rec.CompletedAt)
	firstCompletedAt := *rec.CompletedAt

	// A later lower percent overwrites the percent but cannot undo
	// completion or move the completion timestamp.
	rec, err = svc.RecordProgress(1, course.ID, lessons[0].ID, 30, 5)
	require.NoError(t, err)
	assert.Equal(t, 30, rec.PercentComplete)
	assert.True(t, rec.IsCompleted)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(firstCompletedAt))
}

func TestRecordCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 2)

	rec, err := svc.RecordCompletion(1, course.ID, lessons[1].ID)
	require.NoError(t, err)

	assert.Equal(t, 100, rec.PercentComplete)
	assert.True(t, rec.IsCompleted)
	assert.NotNil(t, rec.CompletedAt)
	// "Done" reports are not attempts.
	assert.Equal(t, 0, rec.Attempts)
	assert.Equal(t, 0, rec.TimeSpentSeconds)
}

func TestRecordCompletionUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 1)

	_, err := svc.RecordCompletion(1, course.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// A lesson that exists but in another course is also not found.
	other, _ := seedCourse(t, db, 0)
	_, err = svc.RecordCompletion(1, other.ID, lessons[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.ProgressRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRecordQuizScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, _ := seedCourse(t, db, 1)
	quiz := seedQuiz(t, db, course.ID)

	rec, err := svc.RecordQuizScore(1, quiz.ID, 55)
	require.NoError(t, err)

	assert.Equal(t, course.ID, rec.CourseID)
	assert.Equal(t, models.KindQuiz, rec.Kind)
	require.NotNil(t, rec.QuizScore)
	assert.Equal(t, 55, *rec.QuizScore)
	assert.Equal(t, 100, rec.PercentComplete)
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, 1, rec.Attempts)
}

func TestRecordQuizScoreRetake(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, _ := seedCourse(t, db, 1)
	quiz := seedQuiz(t, db, course.ID)

	rec, err := svc.RecordQuizScore(1, quiz.ID, 40)
	require.NoError(t, err)
	firstCompletedAt := *rec.CompletedAt

	time.Sleep(10 * time.Millisecond)

	rec, err = svc.RecordQuizScore(1, quiz.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, *rec.QuizScore)
	assert.Equal(t, 2, rec.Attempts)
	assert.True(t, rec.CompletedAt.Equal(firstCompletedAt))
}

func TestRecordQuizScoreValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, _ := seedCourse(t, db, 1)
	quiz := seedQuiz(t, db, course.ID)

	_, err := svc.RecordQuizScore(1, quiz.ID, -5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RecordQuizScore(1, quiz.ID, 120)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RecordQuizScore(1, 9999, 50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordQuizScoreDetachedQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)

	quiz := models.Quiz{Title: "Orphan quiz"}
	require.NoError(t, db.Create(&quiz).Error)

	_, err := svc.RecordQuizScore(1, quiz.ID, 80)
	assert.ErrorIs(t, err, ErrInvalidState)

	var count int64
	db.Model(&models.ProgressRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLessonAndQuizTuplesDoNotCollide(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	course, lessons := seedCourse(t, db, 1)

	// Force a quiz whose id equals the lesson id.
	quiz := models.Quiz{CourseID: course.ID, Title: "Same id quiz"}
	quiz.ID = lessons[0].ID
	require.NoError(t, db.Create(&quiz).Error)

	_, err := svc.RecordProgress(1, course.ID, lessons[0].ID, 40, 0)
	require.NoError(t, err)
	_, err = svc.RecordQuizScore(1, quiz.ID, 75)
	require.NoError(t, err)

	var count int64
	db.Model(&models.ProgressRecord{}).Where("student_id = ?", 1).Count(&count)
	assert.Equal(t, int64(2), count)
}
