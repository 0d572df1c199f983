package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/gophcourse/internal/drip"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

const countdownWriteWait = 10 * time.Second

// countdownPongWait is how long the peer may stay silent. Pings go out at
// nine tenths of it. Tests shorten it.
var countdownPongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CountdownHandler streams a module's drip state over a websocket, one
// message per interval, until the module unlocks or the client leaves.
type CountdownHandler struct {
	Identity Authenticator
	Course   Course
	Interval time.Duration
	Now      func() time.Time
	Logger   logging.Logger
}

type countdownMessage struct {
	ModuleID string `json:"moduleId"`
	services.DripView
}

func (h *CountdownHandler) Serve(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	uid, err := h.Identity.UserIDFromAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	moduleID := c.Param("id")
	enrolledAt, policy, err := h.Course.ModuleGate(c.Request.Context(), uid, moduleID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pongWait := countdownPongWait

	// The client sends nothing; reading only surfaces close frames and
	// runs the pong handler.
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// This loop is the only writer: state frames and pings share it.
	ping := time.NewTicker(pongWait * 9 / 10)
	defer ping.Stop()

	unlockAt := policy.UnlockAt(enrolledAt)
	states := drip.Watch(ctx, enrolledAt, policy, h.Interval, h.Now)
	for {
		select {
		case st, ok := <-states:
			if !ok {
				if ctx.Err() == nil {
					_ = ws.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unlocked"),
						time.Now().Add(countdownWriteWait))
				}
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(countdownWriteWait))
			msg := countdownMessage{ModuleID: moduleID, DripView: services.NewDripView(st, unlockAt)}
			if err := ws.WriteJSON(msg); err != nil {
				h.Logger.Debug(ctx, "countdown write failed", "module", moduleID, "error", err)
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(countdownWriteWait)); err != nil {
				h.Logger.Debug(ctx, "countdown ping failed", "module", moduleID, "error", err)
				return
			}
		}
	}
}
