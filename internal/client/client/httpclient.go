package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
)

// TokenStore persists the session tokens between invocations.
type TokenStore interface {
	Tokens(ctx context.Context) (*models.TokenPair, error)
	SaveTokens(ctx context.Context, pair *models.TokenPair) error
}

type HTTPClient struct {
	baseURL string
	rc      *resty.Client
	tokens  TokenStore
	logger  logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore, l logging.Logger) *HTTPClient {
	if l == nil {
		l = logging.Nop{}
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &HTTPClient{baseURL: baseURL, rc: rc, tokens: tokens, logger: l}
}

// Login exchanges credentials for a token pair and stores it.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	var pair models.TokenPair
	resp, err := c.send(ctx, http.MethodPost, "/v1/auth/login", "",
		map[string]string{"email": email, "password": password}, &pair)
	if err != nil {
		return nil, err
	}
	if err := decodeError(resp); err != nil {
		return nil, err
	}
	if err := c.tokens.SaveTokens(ctx, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Reveal is the HTTP form of GRPCClient.Reveal.
func (c *HTTPClient) Reveal(ctx context.Context, email string) (string, error) {
	var out struct {
		Password string `json:"password"`
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/reveal", "", map[string]string{"email": email}, &out)
	if err != nil {
		return "", err
	}
	if err := decodeError(resp); err != nil {
		return "", err
	}
	return out.Password, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Account, error) {
	var acc models.Account
	if err := c.authorized(ctx, http.MethodGet, "/v1/me", nil, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *HTTPClient) UpdateDisplayName(ctx context.Context, name string) (*models.Account, error) {
	var acc models.Account
	if err := c.authorized(ctx, http.MethodPatch, "/v1/me", map[string]string{"displayName": name}, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *HTTPClient) Overview(ctx context.Context) (*models.Overview, error) {
	var ov models.Overview
	if err := c.authorized(ctx, http.MethodGet, "/v1/course", nil, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

func (c *HTTPClient) Lesson(ctx context.Context, lessonID string) (*models.LessonView, error) {
	var lv models.LessonView
	if err := c.authorized(ctx, http.MethodGet, "/v1/lessons/"+url.PathEscape(lessonID), nil, &lv); err != nil {
		return nil, err
	}
	return &lv, nil
}

func (c *HTTPClient) Complete(ctx context.Context, lessonID string) error {
	return c.authorized(ctx, http.MethodPost, "/v1/lessons/"+url.PathEscape(lessonID)+"/complete", nil, nil)
}

func (c *HTTPClient) AssetURL(ctx context.Context, lessonID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.authorized(ctx, http.MethodGet, "/v1/lessons/"+url.PathEscape(lessonID)+"/asset", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// authorized sends a request with the stored access token. On 401 it
// refreshes the pair once and retries.
func (c *HTTPClient) authorized(ctx context.Context, method, path string, body, result any) error {
	access, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, access, body, result)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.logger.Debug(ctx, "access token rejected, refreshing", "path", path)
		if access, err = c.refresh(ctx); err != nil {
			return err
		}
		if resp, err = c.send(ctx, method, path, access, body, result); err != nil {
			return err
		}
	}

	return decodeError(resp)
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	pair, err := c.tokens.Tokens(ctx)
	if err != nil {
		return "", err
	}
	if pair == nil || pair.AccessToken == "" {
		return "", ErrNoSession
	}
	return pair.AccessToken, nil
}

func (c *HTTPClient) refresh(ctx context.Context) (string, error) {
	pair, err := c.tokens.Tokens(ctx)
	if err != nil {
		return "", err
	}
	if pair == nil || pair.RefreshToken == "" {
		return "", ErrUnauthorized
	}

	var next models.TokenPair
	resp, err := c.send(ctx, http.MethodPost, "/v1/auth/refresh", "",
		map[string]string{"refreshToken": pair.RefreshToken}, &next)
	if err != nil {
		return "", err
	}
	if err := decodeError(resp); err != nil {
		return "", err
	}

	if err := c.tokens.SaveTokens(ctx, &next); err != nil {
		return "", err
	}
	return next.AccessToken, nil
}

func (c *HTTPClient) send(ctx context.Context, method, path, token string, body, result any) (*resty.Response, error) {
	req := c.rc.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.logger.Debug(ctx, "http call", "method", method, "path", path,
		"status", resp.StatusCode(), "duration", time.Since(start))
	return resp, nil
}

type errorBody struct {
	Error    json.RawMessage  `json:"error"`
	ModuleID string           `json:"moduleId"`
	Drip     *models.DripView `json:"drip"`
}

type kindError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func decodeError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return statusError(resp.StatusCode(), resp.Body())
}

// statusError maps an error response to a sentinel. Bodies carry either
// {"error":"text"} or {"error":{"kind":..,"message":..}}.
func statusError(code int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := http.StatusText(code)
	if len(eb.Error) > 0 {
		var s string
		var k kindError
		if json.Unmarshal(eb.Error, &s) == nil && s != "" {
			msg = s
		} else if json.Unmarshal(eb.Error, &k) == nil && k.Message != "" {
			msg = k.Message
		}
	}

	switch code {
	case http.StatusLocked:
		le := &LockedError{ModuleID: eb.ModuleID}
		if eb.Drip != nil {
			le.Drip = *eb.Drip
		}
		return le
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrExpired, msg)
	default:
		return fmt.Errorf("%w: %d %s", ErrServer, code, msg)
	}
}
