package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Rollup *services.RollupService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Rollup: services.NewRollupService(db)}
}

// GetUserCourses lists the courses the student has any ledger activity
// in, with the derived completion percentage for each.
func (cc *CoursesController) GetUserCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var courses []models.Course
	cc.DB.Distinct("courses.*").
		Joins("JOIN progress_records ON progress_records.course_id = courses.id").
		Where("progress_records.student_id = ?", userID).
		Find(&courses)

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		percent, err := cc.Rollup.OverallProgressPercent(userID, course.ID)
		if err != nil {
			return utils.InternalServerError(c, "Could not compute progress")
		}

		result = append(result, fiber.Map{
			"id":       course.ID,
			"title":    course.Title,
			"category": course.Category,
			"progress": percent,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	category := c.Query("category")
	schoolID := c.Query("school_id")

	query := cc.DB.Model(&models.Course{})

	if category != "" {
		query = query.Where("category = ?", category)
	}
	if schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.ShortDesc,
			"category":    course.Category,
			"school_id":   course.SchoolID,
			"instructor":  course.InstructorID,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	lessons, err := cc.Rollup.LessonProgress(userID, uint(courseID))
	if err != nil {
		return utils.InternalServerError(c, "Could not compute lesson progress")
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"category":    course.Category,
			"school_id":   course.SchoolID,
			"instructor":  course.InstructorID,
		},
		"lessons": lessons,
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if course.Title == "" {
		return utils.BadRequest(c, "Course title is required")
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var lesson models.Lesson
	if err := c.BodyParser(&lesson); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	lesson.CourseID = uint(courseID)

	if lesson.SequenceOrder == 0 {
		var count int64
		cc.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&count)
		lesson.SequenceOrder = int(count) + 1
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson added",
		"lesson":  lesson,
	})
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input models.Lesson
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		lesson.Title = input.Title
	}
	if input.Description != "" {
		lesson.Description = input.Description
	}
	if input.Content != "" {
		lesson.Content = input.Content
	}
	if input.SequenceOrder != 0 {
		lesson.SequenceOrder = input.SequenceOrder
	}
	if input.DurationMinutes != 0 {
		lesson.DurationMinutes = input.DurationMinutes
	}

	if err := cc.DB.Save(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson updated",
		"lesson":  lesson,
	})
}
