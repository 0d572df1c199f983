package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/drip"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

type stubProvisioner struct {
	res    *services.ProvisioningResult
	err    error
	calls  int
	gotRaw []byte
}

func (s *stubProvisioner) HandleEvent(_ context.Context, raw []byte) (*services.ProvisioningResult, error) {
	s.calls++
	s.gotRaw = raw
	return s.res, s.err
}

type stubRevealer struct {
	password string
	err      error
	gotEmail string
}

func (s *stubRevealer) Reveal(_ context.Context, email string) (string, error) {
	s.gotEmail = email
	return s.password, s.err
}

// stubIdentity accepts access tokens of the form "token-<uid>".
type stubIdentity struct {
	pair     *services.TokenPair
	loginErr error
	refrErr  error
}

func (s *stubIdentity) Login(context.Context, string, string) (*services.TokenPair, error) {
	return s.pair, s.loginErr
}

func (s *stubIdentity) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return s.pair, s.refrErr
}

func (s *stubIdentity) UserIDFromAccessToken(token string) (string, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", common.ErrInvalidToken
	}
	return token[len(prefix):], nil
}

type stubCourse struct {
	account  *models.Account
	overview *services.Overview
	lesson   *services.LessonView
	assetURL string
	err      error

	enrolledAt time.Time
	policy     drip.Policy

	gotUID      string
	gotLesson   string
	gotName     string
	completions int
}

func (s *stubCourse) Account(_ context.Context, uid string) (*models.Account, error) {
	s.gotUID = uid
	return s.account, s.err
}

func (s *stubCourse) Overview(_ context.Context, uid string, _ time.Time) (*services.Overview, error) {
	s.gotUID = uid
	return s.overview, s.err
}

func (s *stubCourse) Lesson(_ context.Context, uid, lessonID string, _ time.Time) (*services.LessonView, error) {
	s.gotUID, s.gotLesson = uid, lessonID
	return s.lesson, s.err
}

func (s *stubCourse) MarkComplete(_ context.Context, uid, lessonID string, _ time.Time) error {
	s.gotUID, s.gotLesson = uid, lessonID
	if s.err != nil {
		return s.err
	}
	s.completions++
	return nil
}

func (s *stubCourse) AssetURL(_ context.Context, uid, lessonID string, _ time.Time) (string, error) {
	s.gotUID, s.gotLesson = uid, lessonID
	return s.assetURL, s.err
}

func (s *stubCourse) ModuleGate(_ context.Context, uid, _ string) (time.Time, drip.Policy, error) {
	s.gotUID = uid
	return s.enrolledAt, s.policy, s.err
}

func (s *stubCourse) UpdateDisplayName(_ context.Context, uid, name string, _ time.Time) (*models.Account, error) {
	s.gotUID, s.gotName = uid, name
	if s.err != nil {
		return nil, s.err
	}
	acc := *s.account
	acc.DisplayName = name
	return &acc, nil
}
