package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	Service Course
	Now     func() time.Time
}

type displayNameBody struct {
	DisplayName string `json:"displayName"`
}

func (h *CourseHandler) Me(c *gin.Context) {
	uid, _ := UserIDFromContext(c)
	acc, err := h.Service.Account(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *CourseHandler) UpdateMe(c *gin.Context) {
	var body displayNameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	uid, _ := UserIDFromContext(c)
	acc, err := h.Service.UpdateDisplayName(c.Request.Context(), uid, body.DisplayName, h.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *CourseHandler) Overview(c *gin.Context) {
	uid, _ := UserIDFromContext(c)
	ov, err := h.Service.Overview(c.Request.Context(), uid, h.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *CourseHandler) Lesson(c *gin.Context) {
	uid, _ := UserIDFromContext(c)
	lv, err := h.Service.Lesson(c.Request.Context(), uid, c.Param("id"), h.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lv)
}

func (h *CourseHandler) Complete(c *gin.Context) {
	uid, _ := UserIDFromContext(c)
	if err := h.Service.MarkComplete(c.Request.Context(), uid, c.Param("id"), h.Now()); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CourseHandler) Asset(c *gin.Context) {
	uid, _ := UserIDFromContext(c)
	u, err := h.Service.AssetURL(c.Request.Context(), uid, c.Param("id"), h.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
