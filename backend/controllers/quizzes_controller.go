package controllers

import (
	"encoding/json"
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, Progress: services.NewProgressService(db)}
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var quiz models.Quiz
	if err := c.BodyParser(&quiz); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if quiz.Title == "" {
		return utils.BadRequest(c, "Quiz title is required")
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return c.JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var question models.QuizQuestion
	if err := c.BodyParser(&question); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	question.QuizID = uint(quizID)

	if question.SequenceOrder == 0 {
		var count int64
		qc.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quizID).Count(&count)
		question.SequenceOrder = int(count) + 1
	}

	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question added",
		"question": question,
	})
}

// GetQuizDetails returns the quiz with its questions. Correct answers
// are stripped, the quiz is taken through SubmitQuiz.
func (qc *QuizzesController) GetQuizDetails(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		var options []string
		json.Unmarshal([]byte(q.Options), &options)
		questions = append(questions, fiber.Map{
			"id":             q.ID,
			"question":       q.Question,
			"options":        options,
			"sequence_order": q.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"quiz": fiber.Map{
			"id":         quiz.ID,
			"course_id":  quiz.CourseID,
			"title":      quiz.Title,
			"pass_score": quiz.PassScore,
		},
		"questions": questions,
	})
}

// SubmitQuiz grades the submitted answers and records the score in the
// progress ledger against the quiz's owning course.
func (qc *QuizzesController) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	type SubmitInput struct {
		Answers map[string]int `json:"answers"` // question id -> chosen option index
	}

	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(quiz.Questions) == 0 {
		return utils.Conflict(c, "Quiz has no questions")
	}

	correct := 0
	for _, q := range quiz.Questions {
		if answer, ok := input.Answers[strconv.Itoa(int(q.ID))]; ok && answer == q.CorrectAnswer {
			correct++
		}
	}
	score := correct * 100 / len(quiz.Questions)

	record, err := qc.Progress.RecordQuizScore(userID, uint(quizID), score)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Quiz submitted",
		"score":   score,
		"passed":  score >= quiz.PassScore,
		"correct": correct,
		"total":   len(quiz.Questions),
		"record":  record,
	})
}

// GetQuizResult reads the student's stored result back from the ledger.
func (qc *QuizzesController) GetQuizResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var record models.ProgressRecord
	err = qc.DB.Where("student_id = ? AND content_id = ? AND kind = ?",
		userID, quizID, models.KindQuiz).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"taken": false,
			})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	result := fiber.Map{
		"taken":        true,
		"attempts":     record.Attempts,
		"completed_at": record.CompletedAt,
	}
	if record.QuizScore != nil {
		result["score"] = *record.QuizScore
		result["passed"] = *record.QuizScore >= quiz.PassScore
	}
	return c.JSON(result)
}
