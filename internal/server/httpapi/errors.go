package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

// Error kinds of the reveal endpoint.
const (
	kindInvalidArgument   = "invalid-argument"
	kindNotFound          = "not-found"
	kindDeadlineExceeded  = "deadline-exceeded"
	kindResourceExhausted = "resource-exhausted"
	kindInternal          = "internal"
)

type kindError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func abortKind(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": kindError{Kind: kind, Message: message}})
}

// writeServiceError maps a course or identity error to a response.
func writeServiceError(c *gin.Context, err error) {
	var locked *services.LockedError
	switch {
	case errors.As(err, &locked):
		c.JSON(http.StatusLocked, gin.H{
			"error":    "Module locked",
			"moduleId": locked.ModuleID,
			"drip":     services.NewDripView(locked.State, locked.UnlockAt),
		})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Course access is not active"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
