package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

type OfferHandler struct {
	notifications *services.NotificationService
	emailService  *services.EmailService
}

func NewOfferHandler(notifications *services.NotificationService, emailService *services.EmailService) *OfferHandler {
	return &OfferHandler{
		notifications: notifications,
		emailService:  emailService,
	}
}

// CreateOfferRequest represents offer submission input
type CreateOfferRequest struct {
	ProjectID     uuid.UUID       `json:"project_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	DurationWeeks int             `json:"duration_weeks" binding:"required,min=1"`
	Proposal      string          `json:"proposal" binding:"required"`
}

// CreateOffer submits an offer on a project (company only). NDA-gated
// projects require a signed agreement before the company can bid.
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var project models.Project
	if err := db.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if project.Status != models.ProjectStatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project is not open for offers"})
		return
	}

	if project.RequiresNda {
		var agreements []models.NdaAgreement
		db.Where("project_id = ? AND company_user_id = ?", project.ID, userID).Find(&agreements)
		if !models.CanViewFullProject(userID, models.RoleCompany, &project, agreements) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "A signed NDA is required before submitting an offer on this project",
				"code":  "NDA_REQUIRED",
			})
			return
		}
	}

	// One active offer per company per project
	var existing int64
	db.Model(&models.Offer{}).
		Where("project_id = ? AND company_user_id = ? AND status = ?",
			project.ID, userID, models.OfferStatusPending).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending offer on this project"})
		return
	}

	offer := &models.Offer{
		CompanyUserID: userID,
		ProjectID:     project.ID,
		Amount:        req.Amount,
		DurationWeeks: req.DurationWeeks,
		Proposal:      req.Proposal,
		Status:        models.OfferStatusPending,
	}

	if err := db.Create(offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit offer"})
		return
	}

	var owner models.User
	if err := db.First(&owner, "id = ?", project.OwnerID).Error; err == nil {
		h.notifications.NewOffer(&owner, &project, offer)
		go h.emailService.SendNewOfferEmail(&owner, &project)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offer submitted successfully",
		"offer":   offer,
	})
}

// ListProjectOffers returns offers on a project for its owner. Company
// identities stay blinded until the owner has paid the deposit.
func (h *OfferHandler) ListProjectOffers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	db := database.GetDB()

	role, _ := middleware.GetUserRole(c)
	if role != models.RoleAdmin {
		var count int64
		if err := countOwnedProject(projectID, userID, &count); err != nil || count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
	}

	var offers []models.Offer
	if err := db.Where("project_id = ?", projectID).
		Preload("Company").
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}

	unblinded := role == models.RoleAdmin || middleware.HasDeposit(c)
	if unblinded {
		var result []gin.H
		for _, o := range offers {
			entry := gin.H{"offer": o}
			if o.Company != nil {
				entry["company"] = o.Company.ToResponse()
			}
			result = append(result, entry)
		}
		c.JSON(http.StatusOK, gin.H{"offers": result, "blinded": false})
		return
	}

	var blinded []models.OfferBlinded
	for _, o := range offers {
		blinded = append(blinded, o.ToBlinded())
	}
	c.JSON(http.StatusOK, gin.H{"offers": blinded, "blinded": true})
}

// GetMyOffers returns the company's own offers
func (h *OfferHandler) GetMyOffers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()

	var offers []models.Offer
	if err := db.Where("company_user_id = ?", userID).
		Preload("Project").
		Preload("Project.Category").
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// RespondToOfferRequest represents accept/reject input
type RespondToOfferRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
	Notes  string `json:"notes"`
}

// RespondToOffer lets the project owner accept or reject an offer
func (h *OfferHandler) RespondToOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer ID"})
		return
	}

	var req RespondToOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var offer models.Offer
	if err := db.Preload("Project").First(&offer, "id = ?", offerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	if offer.Project == nil || offer.Project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if !offer.CanRespond() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Offer can no longer be responded to"})
		return
	}

	now := time.Now()
	if req.Action == "accept" {
		offer.Status = models.OfferStatusAccepted
	} else {
		offer.Status = models.OfferStatusRejected
	}
	offer.ResponseNotes = req.Notes
	offer.RespondedAt = &now

	if err := db.Save(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to offer"})
		return
	}

	var company models.User
	if err := db.First(&company, "id = ?", offer.CompanyUserID).Error; err == nil {
		h.notifications.OfferResponded(&company, offer.Project, &offer)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offer " + string(offer.Status),
		"offer":   offer,
	})
}

// WithdrawOffer lets a company withdraw its pending offer
func (h *OfferHandler) WithdrawOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer ID"})
		return
	}

	db := database.GetDB()

	var offer models.Offer
	if err := db.First(&offer, "id = ? AND company_user_id = ?", offerID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	if offer.Status != models.OfferStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending offers can be withdrawn"})
		return
	}

	offer.Status = models.OfferStatusWithdrawn
	if err := db.Save(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw offer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offer withdrawn"})
}
