// Package httpapi exposes the course backend over HTTP with gin: the payment
// webhook, the one-time credential reveal, token auth, course content and a
// websocket countdown for locked modules.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophcourse/internal/drip"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/metrics"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

type Provisioner interface {
	HandleEvent(ctx context.Context, raw []byte) (*services.ProvisioningResult, error)
}

type Revealer interface {
	Reveal(ctx context.Context, email string) (string, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type Course interface {
	Account(ctx context.Context, uid string) (*models.Account, error)
	Overview(ctx context.Context, uid string, now time.Time) (*services.Overview, error)
	Lesson(ctx context.Context, uid, lessonID string, now time.Time) (*services.LessonView, error)
	MarkComplete(ctx context.Context, uid, lessonID string, now time.Time) error
	AssetURL(ctx context.Context, uid, lessonID string, now time.Time) (string, error)
	ModuleGate(ctx context.Context, uid, moduleID string) (time.Time, drip.Policy, error)
	UpdateDisplayName(ctx context.Context, uid, name string, now time.Time) (*models.Account, error)
}

type Deps struct {
	Provisioning Provisioner
	Reveal       Revealer
	Identity     Authenticator
	Course       Course

	Logger  logging.Logger
	Metrics *metrics.Metrics

	// WebhookSecret, when set, must be presented by the payment provider.
	WebhookSecret string
	// RevealLimiter throttles reveal attempts per client IP. Nil disables it.
	RevealLimiter  *RateLimiter
	AllowedOrigins []string

	CountdownInterval time.Duration
	Now               func() time.Time
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CountdownInterval <= 0 {
		deps.CountdownInterval = time.Second
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Logger))
	r.Use(requestMetrics(deps.Metrics))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(deps.AllowedOrigins))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	webhookHandler := &WebhookHandler{Service: deps.Provisioning, Secret: deps.WebhookSecret, Logger: deps.Logger}
	r.POST("/v1/webhooks/payment", webhookHandler.Payment)

	revealHandler := &RevealHandler{Service: deps.Reveal}
	if deps.RevealLimiter != nil {
		r.POST("/v1/reveal", RateLimitMiddleware(deps.RevealLimiter), revealHandler.Reveal)
	} else {
		r.POST("/v1/reveal", revealHandler.Reveal)
	}

	authHandler := &AuthHandler{Service: deps.Identity}
	r.POST("/v1/auth/login", authHandler.Login)
	r.POST("/v1/auth/refresh", authHandler.Refresh)

	courseHandler := &CourseHandler{Service: deps.Course, Now: deps.Now}
	protected := r.Group("/v1")
	protected.Use(RequireAuth(deps.Identity))
	protected.GET("/me", courseHandler.Me)
	protected.PATCH("/me", courseHandler.UpdateMe)
	protected.GET("/course", courseHandler.Overview)
	protected.GET("/lessons/:id", courseHandler.Lesson)
	protected.POST("/lessons/:id/complete", courseHandler.Complete)
	protected.GET("/lessons/:id/asset", courseHandler.Asset)

	countdownHandler := &CountdownHandler{
		Identity: deps.Identity,
		Course:   deps.Course,
		Interval: deps.CountdownInterval,
		Now:      deps.Now,
		Logger:   deps.Logger,
	}
	r.GET("/v1/modules/:id/countdown", countdownHandler.Serve)

	return r
}
