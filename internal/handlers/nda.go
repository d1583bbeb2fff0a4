package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

type NdaHandler struct {
	ndaService     *services.NdaService
	profileService *services.ProfileService
}

func NewNdaHandler(ndaService *services.NdaService, profileService *services.ProfileService) *NdaHandler {
	return &NdaHandler{
		ndaService:     ndaService,
		profileService: profileService,
	}
}

// ValidateContact checks whether the company's contact data is
// complete enough to start an agreement, flagging exactly which
// fields are missing.
func (h *NdaHandler) ValidateContact(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	check, err := h.profileService.ValidateContact(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// UpdateContact applies a partial contact update ahead of initiating
// an agreement.
func (h *NdaHandler) UpdateContact(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req services.ContactUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profileService.UpdateContact(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact information updated",
		"user":    user.ToResponse(),
	})
}

// InitiateAgreement starts (or returns the existing) agreement for the
// company on a gated project.
func (h *NdaHandler) InitiateAgreement(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		ProjectID uuid.UUID `json:"project_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agreement, err := h.ndaService.InitiateAgreement(req.ProjectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Agreement ready, waiting for the project owner's information",
		"agreement": agreement,
	})
}

// CompleteEntrepreneurInfo records the project owner's legal data and
// sends the signing invitation.
func (h *NdaHandler) CompleteEntrepreneurInfo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	agreementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement ID"})
		return
	}

	var req services.EntrepreneurInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agreement, err := h.ndaService.CompleteEntrepreneurInfo(agreementID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Signing invitation sent",
		"agreement": agreement,
	})
}

// GetAgreement returns an agreement with its signing URL where the
// viewer is entitled to it.
func (h *NdaHandler) GetAgreement(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	agreementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement ID"})
		return
	}

	agreement, err := h.ndaService.GetByID(agreementID)
	if err != nil {
		respondError(c, err)
		return
	}

	role, _ := middleware.GetUserRole(c)
	if role != models.RoleAdmin &&
		agreement.CompanyUserID != userID &&
		agreement.EntrepreneurUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this agreement"})
		return
	}

	resp := gin.H{"agreement": agreement}
	if agreement.Status == models.NdaStatusInvitationSent {
		resp["signing_url"] = h.ndaService.SigningURL(agreement)
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyAgreement returns the viewer's own agreement on a project, so
// the detail page can show the right step without a separate lookup.
func (h *NdaHandler) GetMyAgreement(c *gin.Context) {
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

	agreement, err := h.ndaService.GetForCompany(projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agreement": agreement})
}

// RefreshStatus polls the signature provider and returns the agreement
// with its status folded in. Called by the detail page's auto-refresh.
func (h *NdaHandler) RefreshStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	agreementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement ID"})
		return
	}

	current, err := h.ndaService.GetByID(agreementID)
	if err != nil {
		respondError(c, err)
		return
	}

	role, _ := middleware.GetUserRole(c)
	if role != models.RoleAdmin &&
		current.CompanyUserID != userID &&
		current.EntrepreneurUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this agreement"})
		return
	}

	agreement, err := h.ndaService.RefreshSignatureStatus(agreementID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agreement": agreement})
}

// Cancel cancels a non-terminal agreement.
func (h *NdaHandler) Cancel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	agreementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement ID"})
		return
	}

	role, _ := middleware.GetUserRole(c)
	agreement, err := h.ndaService.Cancel(agreementID, userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Agreement cancelled",
		"agreement": agreement,
	})
}

// ListProjectAgreements lists every agreement on a project for its
// owner or an administrator.
func (h *NdaHandler) ListProjectAgreements(c *gin.Context) {
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

	role, _ := middleware.GetUserRole(c)
	if role != models.RoleAdmin {
		var count int64
		if err := countOwnedProject(projectID, userID, &count); err != nil || count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can list its agreements"})
			return
		}
	}

	agreements, err := h.ndaService.ListByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agreements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agreements": agreements,
		"total":      len(agreements),
	})
}
