package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProgressController is the write side of the progress API: each
// endpoint turns one client event into one ledger mutation.
type ProgressController struct {
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{Cfg: cfg, Progress: services.NewProgressService(db)}
}

// serviceError maps the core's error classes onto HTTP statuses.
// Storage errors match no class and come back as 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return utils.Conflict(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not process request")
	}
}

// RecordProgress godoc
// @Summary Record lesson progress
// @Description Applies a partial-progress event for one lesson
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/lesson [post]
func (pc *ProgressController) RecordProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type ProgressInput struct {
		CourseID         uint `json:"course_id"`
		ContentID        uint `json:"content_id"`
		Percent          int  `json:"percent"`
		TimeSpentSeconds int  `json:"time_spent_seconds"`
	}

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	record, err := pc.Progress.RecordProgress(userID, input.CourseID, input.ContentID, input.Percent, input.TimeSpentSeconds)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Progress updated",
		"progress": record,
	})
}

// RecordCompletion marks a lesson done for clients that report
// "finished" without a percentage.
func (pc *ProgressController) RecordCompletion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type CompletionInput struct {
		CourseID  uint `json:"course_id"`
		ContentID uint `json:"content_id"`
	}

	var input CompletionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	record, err := pc.Progress.RecordCompletion(userID, input.CourseID, input.ContentID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Lesson completed",
		"progress": record,
	})
}

// RecordQuizScore accepts an externally graded quiz result, e.g. a
// paper theory test entered after the fact. The token's user is always
// the student being scored.
func (pc *ProgressController) RecordQuizScore(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type QuizScoreInput struct {
		QuizID uint `json:"quiz_id"`
		Score  int  `json:"score"`
	}

	var input QuizScoreInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	record, err := pc.Progress.RecordQuizScore(userID, input.QuizID, input.Score)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Quiz score recorded",
		"progress": record,
	})
}
