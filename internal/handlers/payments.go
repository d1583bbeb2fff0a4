package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateDepositIntentRequest represents deposit initiation input
type CreateDepositIntentRequest struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
}

// CreateDepositIntent starts the deposit payment that unblinds offer
// identities for a project (entrepreneur only)
func (h *PaymentHandler) CreateDepositIntent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateDepositIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, clientSecret, err := h.paymentService.CreateDepositIntent(userID, req.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":       payment,
		"client_secret": clientSecret,
	})
}

// ConfirmDepositRequest represents deposit confirmation input
type ConfirmDepositRequest struct {
	PaymentID       uuid.UUID `json:"payment_id" binding:"required"`
	StripePaymentID string    `json:"stripe_payment_id"`
}

// ConfirmDeposit verifies and settles a deposit payment
func (h *PaymentHandler) ConfirmDeposit(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req ConfirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.ConfirmDeposit(req.PaymentID, req.StripePaymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deposit confirmed",
		"payment": payment,
	})
}

// GetDepositHistory returns the entrepreneur's deposit payments
func (h *PaymentHandler) GetDepositHistory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	payments, err := h.paymentService.GetDepositHistory(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
