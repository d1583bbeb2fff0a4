package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
)

// CheckDepositStatus records on the context whether the viewer has
// paid the deposit for the project in the :id parameter. Handlers use
// it to decide whether bidding companies' identities are shown or
// blinded. It never blocks the request.
func CheckDepositStatus(paymentService *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("hasDeposit", false)

		userID, exists := GetUserID(c)
		if !exists {
			c.Next()
			return
		}

		role, _ := GetUserRole(c)
		// Only entrepreneurs pay deposits; admins see everything.
		if role == models.RoleAdmin {
			c.Set("hasDeposit", true)
			c.Next()
			return
		}
		if role != models.RoleEntrepreneur {
			c.Next()
			return
		}

		projectID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Next()
			return
		}

		if paymentService.HasDeposit(userID, projectID) {
			c.Set("hasDeposit", true)
		}

		c.Next()
	}
}

// HasDeposit extracts the deposit flag set by CheckDepositStatus.
func HasDeposit(c *gin.Context) bool {
	v, exists := c.Get("hasDeposit")
	if !exists {
		return false
	}
	flag, ok := v.(bool)
	return ok && flag
}
