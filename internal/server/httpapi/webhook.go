package httpapi

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
	"github.com/dmitrijs2005/gophcourse/internal/webhook"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Service Provisioner
	Secret  string
	Logger  logging.Logger
}

func (h *WebhookHandler) Payment(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !h.authorized(c, raw) {
		h.Logger.Warn(c.Request.Context(), "webhook secret mismatch", "client_ip", c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	res, err := h.Service.HandleEvent(c.Request.Context(), raw)
	switch {
	case errors.Is(err, webhook.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	case errors.Is(err, services.ErrMissingIdentity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if res.Outcome == services.OutcomeIgnored {
		c.JSON(http.StatusOK, gin.H{"message": "Ignored: payment not approved"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Access granted successfully",
		"isNewUser":   res.IsNewAccount,
		"redirectUrl": res.RedirectURL,
	})
}

// authorized checks the shared secret from the header or, failing that,
// the payload's "secret" field.
func (h *WebhookHandler) authorized(c *gin.Context, raw []byte) bool {
	if h.Secret == "" {
		return true
	}

	presented := c.GetHeader(common.WebhookSecretHeaderName)
	if presented == "" {
		if ev, err := webhook.Parse(raw); err == nil {
			presented = ev.Secret
		}
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.Secret)) == 1
}
