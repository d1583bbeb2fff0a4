package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wathiq/b2b-platform/internal/apperrors"
)

// respondError maps the service error taxonomy onto HTTP. Validation
// errors carry the missing fields so clients prompt for exactly those;
// provider errors carry a retryable flag so the UI offers "retry"
// instead of "fix your data".
func respondError(c *gin.Context, err error) {
	typed, ok := apperrors.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{
		"error": typed.Message,
		"code":  string(typed.Kind),
	}

	switch typed.Kind {
	case apperrors.KindValidation:
		if len(typed.Fields) > 0 {
			body["missing_fields"] = typed.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case apperrors.KindPrecondition:
		c.JSON(http.StatusForbidden, body)
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, body)
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, body)
	case apperrors.KindProvider:
		body["retryable"] = typed.Retryable
		c.JSON(http.StatusBadGateway, body)
	default:
		c.JSON(http.StatusInternalServerError, body)
	}
}
