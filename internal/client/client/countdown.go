package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
)

const countdownCloseWait = time.Second

// Countdown streams the drip state of moduleID, calling fn for every frame.
// It returns nil once the server reports the module unlocked and closes the
// stream, or ctx.Err() when ctx is done first.
func (c *HTTPClient) Countdown(ctx context.Context, moduleID string, fn func(models.CountdownMessage)) error {
	access, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	ws, err := c.dialCountdown(ctx, moduleID, access)
	if errors.Is(err, ErrUnauthorized) {
		if access, err = c.refresh(ctx); err != nil {
			return err
		}
		ws, err = c.dialCountdown(ctx, moduleID, access)
	}
	if err != nil {
		return err
	}
	defer ws.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(countdownCloseWait))
			_ = ws.Close()
		case <-done:
		}
	}()

	for {
		var msg models.CountdownMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("countdown stream: %w", err)
		}
		fn(msg)
	}
}

func (c *HTTPClient) dialCountdown(ctx context.Context, moduleID, token string) (*websocket.Conn, error) {
	u, err := countdownURL(c.baseURL, moduleID)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u, h)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return nil, statusError(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ws, nil
}

// countdownURL turns the API base URL into the module's websocket URL.
func countdownURL(base, moduleID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/modules/" + moduleID + "/countdown"
	return u.String(), nil
}
