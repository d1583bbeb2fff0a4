package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

type ProjectHandler struct {
	ndaService *services.NdaService
}

func NewProjectHandler(ndaService *services.NdaService) *ProjectHandler {
	return &ProjectHandler{ndaService: ndaService}
}

func countOwnedProject(projectID, ownerID uuid.UUID, count *int64) error {
	return database.GetDB().Model(&models.Project{}).
		Where("id = ? AND owner_id = ?", projectID, ownerID).
		Count(count).Error
}

// ListProjects returns approved projects as teasers (public info only)
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	db := database.GetDB()

	category := c.Query("category")
	search := c.Query("search")

	query := db.Where("status = ?", models.ProjectStatusApproved).
		Preload("Category")

	if category != "" {
		query = query.Where("category_id = ?", category)
	}

	if search != "" {
		searchPattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR title_ar LIKE ? OR summary LIKE ?", searchPattern, searchPattern, searchPattern)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	var teasers []models.ProjectTeaser
	for _, p := range projects {
		teasers = append(teasers, p.ToTeaser())
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": teasers,
		"total":    len(teasers),
	})
}

// GetProject returns project detail through the disclosure gate: full
// content for the owner, admins, and companies holding a signed
// agreement; the teaser for everyone else. The gate runs on every
// load because signing completes asynchronously.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	db := database.GetDB()

	var project models.Project
	if err := db.Preload("Category").First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	userID, authed := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	var agreements []models.NdaAgreement
	if authed && role == models.RoleCompany {
		db.Where("project_id = ? AND company_user_id = ?", projectID, userID).Find(&agreements)
	}

	if !authed || !models.CanViewFullProject(userID, role, &project, agreements) {
		resp := gin.H{
			"project":     project.ToTeaser(),
			"full_access": false,
		}
		// Tell a company where it stands in the flow so the UI can
		// show the right next step.
		if len(agreements) > 0 {
			resp["agreement_status"] = agreements[0].Status
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if role == models.RoleCompany {
		db.Model(&project).Update("view_count", project.ViewCount+1)
	}

	c.JSON(http.StatusOK, gin.H{
		"project":     project,
		"full_access": true,
	})
}

// GetProjectScope returns the confidential technical sections. The
// project is loaded and access-checked by the RequireSignedNDA
// middleware on the route.
func (h *ProjectHandler) GetProjectScope(c *gin.Context) {
	v, exists := c.Get("project")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Project not loaded"})
		return
	}
	project := v.(*models.Project)

	c.JSON(http.StatusOK, gin.H{
		"project_id":      project.ID,
		"description":     project.Description,
		"technical_scope": project.TechnicalScope,
		"deliverables":    project.Deliverables,
	})
}

// GetCategories returns all project categories
func (h *ProjectHandler) GetCategories(c *gin.Context) {
	db := database.GetDB()

	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateProjectRequest represents project creation input
type CreateProjectRequest struct {
	Title          string          `json:"title" binding:"required"`
	TitleAr        string          `json:"title_ar"`
	Summary        string          `json:"summary"`
	CategoryID     uuid.UUID       `json:"category_id" binding:"required"`
	Description    string          `json:"description" binding:"required"`
	TechnicalScope string          `json:"technical_scope"`
	Deliverables   string          `json:"deliverables"`
	BudgetMin      decimal.Decimal `json:"budget_min"`
	BudgetMax      decimal.Decimal `json:"budget_max"`
	DurationWeeks  int             `json:"duration_weeks"`
	RequiresNda    bool            `json:"requires_nda"`
}

// CreateProject creates a new project (entrepreneur only)
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := &models.Project{
		OwnerID:        userID,
		CategoryID:     req.CategoryID,
		Title:          req.Title,
		TitleAr:        req.TitleAr,
		Summary:        req.Summary,
		Description:    req.Description,
		TechnicalScope: req.TechnicalScope,
		Deliverables:   req.Deliverables,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		DurationWeeks:  req.DurationWeeks,
		RequiresNda:    req.RequiresNda,
		Status:         models.ProjectStatusDraft,
	}

	db := database.GetDB()
	if err := db.Create(project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

// UpdateProject updates a project (owner only, draft/rejected status)
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	var project models.Project
	if err := db.First(&project, "id = ? AND owner_id = ?", projectID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusRejected {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot edit approved or pending projects"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project.Title = req.Title
	project.TitleAr = req.TitleAr
	project.Summary = req.Summary
	project.CategoryID = req.CategoryID
	project.Description = req.Description
	project.TechnicalScope = req.TechnicalScope
	project.Deliverables = req.Deliverables
	project.BudgetMin = req.BudgetMin
	project.BudgetMax = req.BudgetMax
	project.DurationWeeks = req.DurationWeeks
	project.RequiresNda = req.RequiresNda

	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": project,
	})
}

// SubmitProject submits a project for review
func (h *ProjectHandler) SubmitProject(c *gin.Context) {
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

	var project models.Project
	if err := db.First(&project, "id = ? AND owner_id = ?", projectID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project already submitted or approved"})
		return
	}

	project.Status = models.ProjectStatusPending
	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project submitted for review",
		"project": project,
	})
}

// GetMyProjects returns the entrepreneur's projects with counts of
// pending offers and active agreements.
func (h *ProjectHandler) GetMyProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()

	var projects []models.Project
	if err := db.Where("owner_id = ?", userID).
		Preload("Category").
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	type ProjectWithActivity struct {
		models.Project
		PendingOffers    int `json:"pending_offers"`
		ActiveAgreements int `json:"active_agreements"`
	}

	var result []ProjectWithActivity
	for _, p := range projects {
		var offerCount, ndaCount int64
		db.Model(&models.Offer{}).
			Where("project_id = ? AND status = ?", p.ID, models.OfferStatusPending).
			Count(&offerCount)
		db.Model(&models.NdaAgreement{}).
			Where("project_id = ? AND status NOT IN ?", p.ID,
				[]models.NdaStatus{models.NdaStatusCancelled, models.NdaStatusExpired}).
			Count(&ndaCount)

		result = append(result, ProjectWithActivity{
			Project:          p,
			PendingOffers:    int(offerCount),
			ActiveAgreements: int(ndaCount),
		})
	}

	c.JSON(http.StatusOK, gin.H{"projects": result})
}
