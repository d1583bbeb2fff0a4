package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

type AuthHandler struct {
	authService    *services.AuthService
	emailService   *services.EmailService
	profileService *services.ProfileService
}

func NewAuthHandler(authService *services.AuthService, emailService *services.EmailService, profileService *services.ProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		emailService:   emailService,
		profileService: profileService,
	}
}

// RegisterRequest represents registration input
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=entrepreneur company"`
}

// Register creates a new account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.FullName, models.UserRole(req.Role))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.emailService.SendVerificationEmail(user); err != nil {
		// Registration succeeded; the user can request a resend.
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    user.ToResponse(),
	})
}

// LoginRequest represents login input
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// VerifyEmail verifies a user's email address
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.VerifyEmail(req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// ForgotPassword initiates a password reset
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.InitiatePasswordReset(req.Email)
	if err == nil && token != "" {
		if user, uerr := h.authService.GetUserByEmail(req.Email); uerr == nil {
			h.emailService.SendPasswordResetEmail(user, token)
		}
	}

	// Same response whether or not the email exists
	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
}

// ResetPassword completes a password reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// UpdateProfileRequest carries profile fields a user may change.
// Legal-identity fields flow through the profile service's single
// write path so the NDA flow and this form never clobber each other.
type UpdateProfileRequest struct {
	FullName           string `json:"full_name"`
	Phone              string `json:"phone"`
	Bio                string `json:"bio"`
	PreferredLang      string `json:"preferred_lang"`
	CompanyName        string `json:"company_name"`
	NationalID         string `json:"national_id"`
	BirthDate          string `json:"birth_date"`
	Address            string `json:"address"`
	CommercialRegistry string `json:"commercial_registry"`
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profileService.UpdatePersonalFields(userID, services.PersonalFields{
		FullName:           req.FullName,
		NationalID:         req.NationalID,
		Phone:              req.Phone,
		BirthDate:          req.BirthDate,
		Address:            req.Address,
		CommercialRegistry: req.CommercialRegistry,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// Display-only fields sit outside the legal-identity path
	display := map[string]interface{}{}
	if req.Bio != "" {
		display["bio"] = req.Bio
	}
	if req.CompanyName != "" {
		display["company_name"] = req.CompanyName
	}
	if req.PreferredLang == "ar" || req.PreferredLang == "en" {
		display["preferred_lang"] = req.PreferredLang
	}
	if len(display) > 0 {
		if err := h.authService.UpdateUserFields(userID, display); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		fresh, err := h.authService.GetUserByID(userID)
		if err == nil {
			user = fresh
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user.ToResponse(),
	})
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse()})
}
