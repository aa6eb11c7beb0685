package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
)

// statusForKind maps error kinds onto HTTP status codes
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidInput, apperrors.KindAlreadyPaid:
		return http.StatusBadRequest
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindInvalidState:
		return http.StatusConflict
	case apperrors.KindPaymentProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a service error as a JSON body with its kind.
// Storage internals are not leaked to the caller.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	message := err.Error()
	if kind == apperrors.KindStorage {
		message = "internal server error"
	}

	c.JSON(statusForKind(kind), gin.H{
		"error":   string(kind),
		"message": message,
	})
}
