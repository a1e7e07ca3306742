package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPaymentsController(db *gorm.DB, cfg *config.Config) *PaymentsController {
	return &PaymentsController{DB: db, Cfg: cfg}
}

func (pc *PaymentsController) CreatePayment(c *fiber.Ctx) error {
	var payment models.Payment
	if err := c.BodyParser(&payment); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if payment.AmountCents <= 0 {
		return utils.BadRequest(c, "Amount must be positive")
	}
	if payment.Status == "" {
		payment.Status = "pending"
	}

	if err := pc.DB.Create(&payment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create payment")
	}

	return c.JSON(fiber.Map{
		"message": "Payment recorded",
		"payment": payment,
	})
}

func (pc *PaymentsController) GetMyPayments(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var payments []models.Payment
	if err := pc.DB.Where("student_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(payments)
}

func (pc *PaymentsController) MarkPaid(c *fiber.Ctx) error {
	paymentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid payment ID")
	}

	var payment models.Payment
	if err := pc.DB.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Payment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if payment.Status == "refunded" {
		return utils.Conflict(c, "Refunded payment cannot be marked paid")
	}

	now := time.Now()
	payment.Status = "paid"
	payment.PaidAt = &now

	if err := pc.DB.Save(&payment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update payment")
	}

	return c.JSON(fiber.Map{
		"message": "Payment marked paid",
		"payment": payment,
	})
}

func (pc *PaymentsController) Refund(c *fiber.Ctx) error {
	paymentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid payment ID")
	}

	var payment models.Payment
	if err := pc.DB.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Payment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if payment.Status != "paid" {
		return utils.Conflict(c, "Only paid payments can be refunded")
	}

	payment.Status = "refunded"
	if err := pc.DB.Save(&payment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update payment")
	}

	return c.JSON(fiber.Map{
		"message": "Payment refunded",
		"payment": payment,
	})
}
