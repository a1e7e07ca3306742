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

type NotificationsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewNotificationsController(db *gorm.DB, cfg *config.Config) *NotificationsController {
	return &NotificationsController{DB: db, Cfg: cfg}
}

// SendAnnouncement fans one message out to every student of a school.
// Recipient counts are derived by counting the created rows, nothing
// is stored on the batch itself.
func (nc *NotificationsController) SendAnnouncement(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type AnnouncementInput struct {
		SchoolID uint   `json:"school_id"`
		Title    string `json:"title"`
		Body     string `json:"body"`
	}

	var input AnnouncementInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	batch := models.NotificationBatch{
		SchoolID:  input.SchoolID,
		CreatedBy: userID,
		Kind:      "announcement",
		Title:     input.Title,
		Body:      input.Body,
	}

	err = nc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		var students []models.User
		if err := tx.Where("school_id = ? AND role = 'student'", input.SchoolID).Find(&students).Error; err != nil {
			return err
		}

		for _, student := range students {
			notification := models.Notification{
				UserID:  student.ID,
				BatchID: batch.ID,
				Kind:    "announcement",
				Title:   input.Title,
				Body:    input.Body,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not send announcement")
	}

	var recipients int64
	nc.DB.Model(&models.Notification{}).Where("batch_id = ?", batch.ID).Count(&recipients)

	return c.JSON(fiber.Map{
		"message":    "Announcement sent",
		"batch_id":   batch.ID,
		"recipients": recipients,
	})
}

func (nc *NotificationsController) GetMyNotifications(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var notifications []models.Notification
	err = nc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var unread int64
	nc.DB.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (nc *NotificationsController) MarkRead(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	notificationID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID")
	}

	var notification models.Notification
	if err := nc.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Notification not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	notification.Read = true
	if err := nc.DB.Save(&notification).Error; err != nil {
		return utils.InternalServerError(c, "Could not update notification")
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked read",
	})
}
