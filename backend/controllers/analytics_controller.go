package controllers

import (
	"project/backend/config"
	"project/backend/services"
	"project/backend/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AnalyticsController is the read side of the progress API. A missing
// course is a 404; a course that exists but has no activity is a valid
// zero state and renders as 0 percent / empty lists.
type AnalyticsController struct {
	Cfg    *config.Config
	Rollup *services.RollupService
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{Cfg: cfg, Rollup: services.NewRollupService(db)}
}

// GetCourseSummary godoc
// @Summary Course progress summary
// @Description Lesson/quiz completion counts, average score, time and the last week of activity
// @Tags analytics
// @Produce json
// @Success 200 {object} models.CourseSummary
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/summary [get]
func (ac *AnalyticsController) GetCourseSummary(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	summary, err := ac.Rollup.CourseSummary(userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(summary)
}

func (ac *AnalyticsController) GetLessonProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	lessons, err := ac.Rollup.LessonProgress(userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"lessons": lessons,
	})
}

func (ac *AnalyticsController) GetDailyProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return utils.BadRequest(c, "Invalid days parameter")
	}

	// Course existence check keeps "unknown course" distinct from
	// "known course, no activity yet".
	if _, err := ac.Rollup.OverallProgressPercent(userID, uint(courseID)); err != nil {
		return serviceError(c, err)
	}

	buckets, err := ac.Rollup.DailyProgress(userID, uint(courseID), days)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"daily": buckets,
	})
}

func (ac *AnalyticsController) GetOverallPercent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	percent, err := ac.Rollup.OverallProgressPercent(userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"course_id": courseID,
		"percent":   percent,
	})
}

// GetStudentDaily returns the caller's own cross-course aggregate for
// one calendar day. Defaults to today.
func (ac *AnalyticsController) GetStudentDaily(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	date, err := parseDateQuery(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	stats, err := ac.Rollup.StudentDailyAnalytics(userID, date)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"date":  date.Format("2006-01-02"),
		"stats": stats,
	})
}

// GetClassDaily returns per-student daily aggregates for a course, for
// instructors and admins.
func (ac *AnalyticsController) GetClassDaily(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	date, err := parseDateQuery(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	entries, err := ac.Rollup.ClassDailyAnalytics(uint(courseID), date)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"course_id": courseID,
		"date":      date.Format("2006-01-02"),
		"students":  entries,
	})
}

func parseDateQuery(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
