package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

type RevealHandler struct {
	Service Revealer
}

type revealBody struct {
	Email string `json:"email"`
}

func (h *RevealHandler) Reveal(c *gin.Context) {
	var body revealBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortKind(c, http.StatusBadRequest, kindInvalidArgument, "email is required")
		return
	}

	password, err := h.Service.Reveal(c.Request.Context(), body.Email)
	switch {
	case err == nil:
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{"success": true, "password": password})
	case errors.Is(err, services.ErrInvalidArgument):
		abortKind(c, http.StatusBadRequest, kindInvalidArgument, "email is required")
	case errors.Is(err, services.ErrNotFound):
		abortKind(c, http.StatusNotFound, kindNotFound, services.ErrNotFound.Error())
	case errors.Is(err, services.ErrDeadlineExceeded):
		abortKind(c, http.StatusGatewayTimeout, kindDeadlineExceeded, "credential expired, contact support")
	default:
		abortKind(c, http.StatusInternalServerError, kindInternal, "could not reveal credential")
	}
}
