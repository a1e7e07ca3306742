package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SchoolsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSchoolsController(db *gorm.DB, cfg *config.Config) *SchoolsController {
	return &SchoolsController{DB: db, Cfg: cfg}
}

func (sc *SchoolsController) CreateSchool(c *fiber.Ctx) error {
	var school models.School
	if err := c.BodyParser(&school); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if school.Name == "" {
		return utils.BadRequest(c, "School name is required")
	}

	if err := sc.DB.Create(&school).Error; err != nil {
		return utils.InternalServerError(c, "Could not create school")
	}

	return c.JSON(fiber.Map{
		"message": "School created",
		"school":  school,
	})
}

func (sc *SchoolsController) ListSchools(c *fiber.Ctx) error {
	var schools []models.School
	if err := sc.DB.Find(&schools).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(schools)
}

func (sc *SchoolsController) GetSchool(c *fiber.Ctx) error {
	schoolID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid school ID")
	}

	var school models.School
	if err := sc.DB.First(&school, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "School not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var students, instructors int64
	sc.DB.Model(&models.User{}).Where("school_id = ? AND role = 'student'", schoolID).Count(&students)
	sc.DB.Model(&models.User{}).Where("school_id = ? AND role = 'instructor'", schoolID).Count(&instructors)

	return c.JSON(fiber.Map{
		"school":      school,
		"students":    students,
		"instructors": instructors,
	})
}

func (sc *SchoolsController) UpdateSchool(c *fiber.Ctx) error {
	schoolID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid school ID")
	}

	var school models.School
	if err := sc.DB.First(&school, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "School not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input models.School
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Name != "" {
		school.Name = input.Name
	}
	if input.Address != "" {
		school.Address = input.Address
	}
	if input.City != "" {
		school.City = input.City
	}
	if input.Phone != "" {
		school.Phone = input.Phone
	}
	if input.Email != "" {
		school.Email = input.Email
	}

	if err := sc.DB.Save(&school).Error; err != nil {
		return utils.InternalServerError(c, "Could not update school")
	}

	return c.JSON(fiber.Map{
		"message": "School updated",
		"school":  school,
	})
}
