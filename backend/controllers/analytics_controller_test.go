package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"project/backend/config"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/utils"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)

	return &testEnv{app: app, db: db, cfg: cfg}
}

// newStudent creates a user directly and returns a token for it, so
// the suites don't all have to walk the register/login flow.
func (env *testEnv) newStudent(t *testing.T, username, role string) (models.User, string) {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		Role:         role,
		SchoolID:     1,
	}
	require.NoError(t, env.db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, env.cfg)
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	status, result := doJSON(t, env.app, "POST", "/api/auth/register", "", map[string]string{
		"username":      "newstudent",
		"email":         "newstudent@example.com",
		"password_hash": "password123",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])
	assert.Equal(t, "student", result["user"].(map[string]interface{})["role"])

	status, result = doJSON(t, env.app, "POST", "/api/auth/login", "", map[string]string{
		"username": "newstudent",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, status)
	token := result["token"].(string)
	require.NotEmpty(t, token)

	status, result = doJSON(t, env.app, "GET", "/api/user/profile", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "newstudent", result["username"])
}

func TestProgressWriteAndSummaryReadback(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newStudent(t, "driver1", "student")

	course := models.Course{Title: "Category B", Category: "B", SchoolID: 1}
	require.NoError(t, env.db.Create(&course).Error)
	lesson := models.Lesson{CourseID: course.ID, Title: "Right of way", SequenceOrder: 1}
	require.NoError(t, env.db.Create(&lesson).Error)

	status, result := doJSON(t, env.app, "POST", "/api/progress/lesson", token, map[string]interface{}{
		"course_id":          course.ID,
		"content_id":         lesson.ID,
		"percent":            100,
		"time_spent_seconds": 240,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Progress updated", result["message"])

	path := fmt.Sprintf("/api/courses/%d/summary", course.ID)
	status, result = doJSON(t, env.app, "GET", path, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["completed_lessons"])
	assert.Equal(t, float64(1), result["total_lessons"])
	assert.Equal(t, float64(100), result["overall_progress_percent"])
	assert.Equal(t, float64(240), result["total_time_spent"])
	assert.Len(t, result["daily_progress"], 8)
}

func TestProgressRejectsOutOfRangePercent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newStudent(t, "driver2", "student")

	status, _ := doJSON(t, env.app, "POST", "/api/progress/lesson", token, map[string]interface{}{
		"course_id":  1,
		"content_id": 1,
		"percent":    150,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSummaryUnknownCourseVersusEmptyCourse(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newStudent(t, "driver3", "student")

	// A course that does not exist is a 404.
	status, _ := doJSON(t, env.app, "GET", "/api/courses/9999/summary", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// A course with no content and no activity is a valid zero state.
	course := models.Course{Title: "Empty course", SchoolID: 1}
	require.NoError(t, env.db.Create(&course).Error)

	path := fmt.Sprintf("/api/courses/%d/summary", course.ID)
	status, result := doJSON(t, env.app, "GET", path, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), result["overall_progress_percent"])
	assert.Equal(t, float64(0), result["completed_lessons"])
}

func TestQuizSubmitRecordsScore(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newStudent(t, "driver4", "student")

	course := models.Course{Title: "Category B", SchoolID: 1}
	require.NoError(t, env.db.Create(&course).Error)
	quiz := models.Quiz{CourseID: course.ID, Title: "Signs", PassScore: 70}
	require.NoError(t, env.db.Create(&quiz).Error)

	questions := []models.QuizQuestion{
		{QuizID: quiz.ID, Question: "Stop sign shape?", Options: `["Circle","Octagon"]`, CorrectAnswer: 1, SequenceOrder: 1},
		{QuizID: quiz.ID, Question: "Yield means?", Options: `["Give way","Speed up"]`, CorrectAnswer: 0, SequenceOrder: 2},
	}
	for i := range questions {
		require.NoError(t, env.db.Create(&questions[i]).Error)
	}

	path := fmt.Sprintf("/api/quizzes/%d/submit", quiz.ID)
	status, result := doJSON(t, env.app, "POST", path, token, map[string]interface{}{
		"answers": map[string]int{
			fmt.Sprint(questions[0].ID): 1,
			fmt.Sprint(questions[1].ID): 1,
		},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(50), result["score"])
	assert.Equal(t, false, result["passed"])

	// The ledger now holds the quiz tuple as completed with the score.
	var rec models.ProgressRecord
	require.NoError(t, env.db.Where("content_id = ? AND kind = ?", quiz.ID, models.KindQuiz).First(&rec).Error)
	assert.True(t, rec.IsCompleted)
	require.NotNil(t, rec.QuizScore)
	assert.Equal(t, 50, *rec.QuizScore)
	assert.Equal(t, course.ID, rec.CourseID)

	resultPath := fmt.Sprintf("/api/quizzes/%d/result", quiz.ID)
	status, result = doJSON(t, env.app, "GET", resultPath, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["taken"])
	assert.Equal(t, float64(50), result["score"])
}

func TestClassDailyRequiresStaffRole(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.newStudent(t, "driver5", "student")
	_, instructorToken := env.newStudent(t, "instructor1", "instructor")

	course := models.Course{Title: "Category B", SchoolID: 1}
	require.NoError(t, env.db.Create(&course).Error)

	path := fmt.Sprintf("/api/courses/%d/analytics/daily", course.ID)

	status, _ := doJSON(t, env.app, "GET", path, studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := doJSON(t, env.app, "GET", path, instructorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotNil(t, result["students"])
}

func TestCompleteBookingRecordsLesson(t *testing.T) {
	env := newTestEnv(t)
	student, _ := env.newStudent(t, "driver6", "student")
	_, instructorToken := env.newStudent(t, "instructor2", "instructor")

	course := models.Course{Title: "Practical B", SchoolID: 1}
	require.NoError(t, env.db.Create(&course).Error)
	lesson := models.Lesson{CourseID: course.ID, Title: "City driving", Practical: true, SequenceOrder: 1}
	require.NoError(t, env.db.Create(&lesson).Error)

	booking := models.Booking{
		StudentID: student.ID,
		CourseID:  course.ID,
		LessonID:  lesson.ID,
		Status:    "scheduled",
	}
	require.NoError(t, env.db.Create(&booking).Error)

	path := fmt.Sprintf("/api/bookings/%d/complete", booking.ID)
	status, _ := doJSON(t, env.app, "PUT", path, instructorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	var rec models.ProgressRecord
	err := env.db.Where("student_id = ? AND content_id = ? AND kind = ?",
		student.ID, lesson.ID, models.KindLesson).First(&rec).Error
	require.NoError(t, err)
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, 100, rec.PercentComplete)
}
