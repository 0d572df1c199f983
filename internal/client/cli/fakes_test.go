package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/client/services"
)

type fakeAPI struct {
	loginEmail, loginPassword string
	loginErr                  error

	revealPW  string
	revealErr error

	account  *models.Account
	meErr    error
	renamed  string
	overview *models.Overview
	ovErr    error

	lesson      *models.LessonView
	lessonErr   error
	completed   string
	completeErr error
	assetURL    string
	assetErr    error

	frames       []models.CountdownMessage
	countdownErr error
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.TokenPair, error) {
	f.loginEmail, f.loginPassword = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakeAPI) Reveal(context.Context, string) (string, error) { return f.revealPW, f.revealErr }

func (f *fakeAPI) Me(context.Context) (*models.Account, error) { return f.account, f.meErr }

func (f *fakeAPI) UpdateDisplayName(_ context.Context, name string) (*models.Account, error) {
	f.renamed = name
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &models.Account{DisplayName: name}, nil
}

func (f *fakeAPI) Overview(context.Context) (*models.Overview, error) { return f.overview, f.ovErr }

func (f *fakeAPI) Lesson(context.Context, string) (*models.LessonView, error) {
	return f.lesson, f.lessonErr
}

func (f *fakeAPI) Complete(_ context.Context, id string) error {
	f.completed = id
	return f.completeErr
}

func (f *fakeAPI) AssetURL(context.Context, string) (string, error) { return f.assetURL, f.assetErr }

func (f *fakeAPI) Countdown(_ context.Context, _ string, fn func(models.CountdownMessage)) error {
	for _, m := range f.frames {
		fn(m)
	}
	return f.countdownErr
}

type fakeCredentials struct {
	email    string
	password string
	err      error
	pingErr  error
}

func (f *fakeCredentials) Reveal(_ context.Context, email string) (string, error) {
	f.email = email
	return f.password, f.err
}

func (f *fakeCredentials) Ping(context.Context) error { return f.pingErr }

type fakeSession struct {
	email    string
	overview *models.Overview
	cachedAt time.Time
	cleared  bool
}

func (f *fakeSession) SetEmail(_ context.Context, email string) error {
	f.email = email
	return nil
}

func (f *fakeSession) Email(context.Context) (string, error) { return f.email, nil }

func (f *fakeSession) CacheOverview(_ context.Context, ov *models.Overview) error {
	f.overview = ov
	return nil
}

func (f *fakeSession) CachedOverview(context.Context) (*models.Overview, time.Time, error) {
	if f.overview == nil {
		return nil, time.Time{}, services.ErrNoCachedOverview
	}
	return f.overview, f.cachedAt, nil
}

func (f *fakeSession) Clear(context.Context) error {
	f.cleared = true
	return nil
}

type harness struct {
	app     *App
	out     *bytes.Buffer
	api     *fakeAPI
	creds   *fakeCredentials
	session *fakeSession
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	h := &harness{
		out:     &bytes.Buffer{},
		api:     &fakeAPI{},
		creds:   &fakeCredentials{},
		session: &fakeSession{},
	}
	h.app = NewApp(strings.NewReader(stdin), h.out)
	h.app.connect = func(_ context.Context, a *App) error {
		a.api, a.credentials, a.session = h.api, h.creds, h.session
		return nil
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := h.app.RootCommand()
	root.SetArgs(args)
	root.SetOut(h.out)
	root.SetErr(h.out)
	return root.ExecuteContext(context.Background())
}
