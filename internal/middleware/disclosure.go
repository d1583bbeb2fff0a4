package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
)

// RequireVerifiedCompany ensures the company has been verified by an
// administrator before it may start the NDA flow.
func RequireVerifiedCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		db := database.GetDB()
		var user models.User
		if err := db.First(&user, "id = ? AND role = ?", userID, models.RoleCompany).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Company profile required"})
			c.Abort()
			return
		}

		if !user.Verified {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Company not verified",
				"code":    "COMPANY_NOT_VERIFIED",
				"message": "Your company must be verified by an administrator before signing agreements",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSignedNDA blocks a route unless the viewer holds a signed,
// unexpired agreement on the project named by the :id parameter.
// Owners and admins pass through; projects without the NDA flag are
// always open. Evaluated fresh on every call, since signing completes
// asynchronously.
func RequireSignedNDA() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		projectID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			c.Abort()
			return
		}

		db := database.GetDB()
		var project models.Project
		if err := db.First(&project, "id = ?", projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			c.Abort()
			return
		}

		role, _ := GetUserRole(c)

		var agreements []models.NdaAgreement
		if role == models.RoleCompany {
			db.Where("project_id = ? AND company_user_id = ?", projectID, userID).Find(&agreements)
		}

		if !models.CanViewFullProject(userID, role, &project, agreements) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "NDA required",
				"code":    "NDA_REQUIRED",
				"message": "You must complete the confidentiality agreement before accessing full project details",
			})
			c.Abort()
			return
		}

		c.Set("project", &project)
		c.Next()
	}
}
