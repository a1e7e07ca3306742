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

type BookingsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewBookingsController(db *gorm.DB, cfg *config.Config) *BookingsController {
	return &BookingsController{DB: db, Cfg: cfg, Progress: services.NewProgressService(db)}
}

func (bc *BookingsController) CreateBooking(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var booking models.Booking
	if err := c.BodyParser(&booking); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	booking.StudentID = userID
	booking.Status = "scheduled"

	if booking.EndsAt.Before(booking.StartsAt) || booking.EndsAt.Equal(booking.StartsAt) {
		return utils.BadRequest(c, "Booking must end after it starts")
	}

	// Reject double-booking the instructor for an overlapping slot.
	var overlapping int64
	bc.DB.Model(&models.Booking{}).
		Where("instructor_id = ? AND status = 'scheduled' AND starts_at < ? AND ends_at > ?",
			booking.InstructorID, booking.EndsAt, booking.StartsAt).
		Count(&overlapping)
	if overlapping > 0 {
		return utils.Conflict(c, "Instructor is already booked for this slot")
	}

	if err := bc.DB.Create(&booking).Error; err != nil {
		return utils.InternalServerError(c, "Could not create booking")
	}

	return c.JSON(fiber.Map{
		"message": "Booking created",
		"booking": booking,
	})
}

func (bc *BookingsController) GetMyBookings(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var bookings []models.Booking
	err = bc.DB.Where("student_id = ? OR instructor_id = ?", userID, userID).
		Order("starts_at ASC").Find(&bookings).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(bookings)
}

// CompleteBooking closes a driving slot. When the booking points at a
// practical lesson, the lesson is recorded as completed in the ledger.
func (bc *BookingsController) CompleteBooking(c *fiber.Ctx) error {
	bookingID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid booking ID")
	}

	var booking models.Booking
	if err := bc.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Booking not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if booking.Status != "scheduled" {
		return utils.Conflict(c, "Booking is not scheduled")
	}

	booking.Status = "completed"
	if err := bc.DB.Save(&booking).Error; err != nil {
		return utils.InternalServerError(c, "Could not update booking")
	}

	if booking.LessonID != 0 {
		if _, err := bc.Progress.RecordCompletion(booking.StudentID, booking.CourseID, booking.LessonID); err != nil {
			return serviceError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Booking completed",
		"booking": booking,
	})
}

func (bc *BookingsController) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid booking ID")
	}

	var booking models.Booking
	if err := bc.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Booking not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if booking.Status != "scheduled" {
		return utils.Conflict(c, "Only scheduled bookings can be cancelled")
	}

	booking.Status = "cancelled"
	if err := bc.DB.Save(&booking).Error; err != nil {
		return utils.InternalServerError(c, "Could not update booking")
	}

	return c.JSON(fiber.Map{
		"message": "Booking cancelled",
		"booking": booking,
	})
}
