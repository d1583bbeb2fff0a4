package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

type AdminHandler struct {
	ndaService *services.NdaService
}

func NewAdminHandler(ndaService *services.NdaService) *AdminHandler {
	return &AdminHandler{ndaService: ndaService}
}

// GetStats returns platform statistics for the admin dashboard
func (h *AdminHandler) GetStats(c *gin.Context) {
	db := database.GetDB()

	var stats struct {
		TotalUsers        int64 `json:"total_users"`
		TotalCompanies    int64 `json:"total_companies"`
		PendingProjects   int64 `json:"pending_projects"`
		ApprovedProjects  int64 `json:"approved_projects"`
		PendingAgreements int64 `json:"pending_agreements"`
		SignedAgreements  int64 `json:"signed_agreements"`
		TotalOffers       int64 `json:"total_offers"`
	}

	db.Model(&models.User{}).Count(&stats.TotalUsers)
	db.Model(&models.User{}).Where("role = ?", models.RoleCompany).Count(&stats.TotalCompanies)
	db.Model(&models.Project{}).Where("status = ?", models.ProjectStatusPending).Count(&stats.PendingProjects)
	db.Model(&models.Project{}).Where("status = ?", models.ProjectStatusApproved).Count(&stats.ApprovedProjects)
	db.Model(&models.NdaAgreement{}).
		Where("status IN ?", []models.NdaStatus{models.NdaStatusAwaitingEntrepreneur, models.NdaStatusInvitationSent}).
		Count(&stats.PendingAgreements)
	db.Model(&models.NdaAgreement{}).Where("status = ?", models.NdaStatusSigned).Count(&stats.SignedAgreements)
	db.Model(&models.Offer{}).Count(&stats.TotalOffers)

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListUsers returns all users, optionally filtered by role
func (h *AdminHandler) ListUsers(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if c.Query("unverified") == "true" {
		query = query.Where("role = ? AND verified = ?", models.RoleCompany, false)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	var result []models.UserResponse
	for _, u := range users {
		result = append(result, u.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"users": result, "total": len(result)})
}

// VerifyCompany marks a company account as verified, allowing it to
// initiate NDA agreements
func (h *AdminHandler) VerifyCompany(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role != models.RoleCompany {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only company accounts can be verified"})
		return
	}

	if err := db.Model(&user).Update("verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company verified successfully"})
}

// ListPendingProjects returns projects awaiting review
func (h *AdminHandler) ListPendingProjects(c *gin.Context) {
	db := database.GetDB()

	var projects []models.Project
	if err := db.Where("status = ?", models.ProjectStatusPending).
		Preload("Owner").
		Preload("Category").
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// ReviewProjectRequest represents the review decision
type ReviewProjectRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason"`
}

// ReviewProject approves or rejects a pending project
func (h *AdminHandler) ReviewProject(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var req ReviewProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if project.Status != models.ProjectStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project is not pending review"})
		return
	}

	if req.Action == "approve" {
		now := time.Now()
		project.Status = models.ProjectStatusApproved
		project.ApprovedAt = &now
		project.ApprovedBy = &adminID
		project.RejectionReason = ""
	} else {
		project.Status = models.ProjectStatusRejected
		project.RejectionReason = req.Reason
	}

	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project " + string(project.Status),
		"project": project,
	})
}

// ListAgreements returns all NDA agreements, optionally filtered by status
func (h *AdminHandler) ListAgreements(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.NdaAgreement{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var agreements []models.NdaAgreement
	if err := query.Preload("Company").
		Preload("Project").
		Order("created_at DESC").
		Find(&agreements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agreements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"agreements": agreements, "total": len(agreements)})
}

// CancelAgreement force-cancels an agreement (admin override)
func (h *AdminHandler) CancelAgreement(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	agreementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement ID"})
		return
	}

	agreement, err := h.ndaService.Cancel(agreementID, adminID, models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Agreement cancelled",
		"agreement": agreement,
	})
}

// CreateCategoryRequest represents category creation input
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	NameAr      string `json:"name_ar"`
	Description string `json:"description"`
}

// CreateCategory adds a new project category
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Name:        req.Name,
		NameAr:      req.NameAr,
		Description: req.Description,
	}

	db := database.GetDB()
	if err := db.Create(category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// DeleteCategory removes a category that has no projects
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	db := database.GetDB()

	var count int64
	db.Model(&models.Project{}).Where("category_id = ?", categoryID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category has projects and cannot be deleted"})
		return
	}

	if err := db.Delete(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
