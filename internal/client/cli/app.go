package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/client/client"
	"github.com/dmitrijs2005/gophcourse/internal/client/config"
	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophcourse/internal/client/services"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
)

// API is the HTTP surface the commands use.
type API interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Reveal(ctx context.Context, email string) (string, error)
	Me(ctx context.Context) (*models.Account, error)
	UpdateDisplayName(ctx context.Context, name string) (*models.Account, error)
	Overview(ctx context.Context) (*models.Overview, error)
	Lesson(ctx context.Context, lessonID string) (*models.LessonView, error)
	Complete(ctx context.Context, lessonID string) error
	AssetURL(ctx context.Context, lessonID string) (string, error)
	Countdown(ctx context.Context, moduleID string, fn func(models.CountdownMessage)) error
}

// Credentials is the gRPC credential service.
type Credentials interface {
	Reveal(ctx context.Context, email string) (string, error)
	Ping(ctx context.Context) error
}

type Session interface {
	SetEmail(ctx context.Context, email string) error
	Email(ctx context.Context) (string, error)
	CacheOverview(ctx context.Context, ov *models.Overview) error
	CachedOverview(ctx context.Context) (*models.Overview, time.Time, error)
	Clear(ctx context.Context) error
}

type App struct {
	out    io.Writer
	reader *bufio.Reader

	config      *config.Config
	logger      logging.Logger
	api         API
	credentials Credentials
	session     Session
	closers     []func() error

	// connect wires the live dependencies once flags are parsed.
	connect func(ctx context.Context, a *App) error
	clock   func() time.Time
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		out:     out,
		reader:  bufio.NewReader(in),
		logger:  logging.Nop{},
		connect: connectLive,
		clock:   time.Now,
	}
}

func connectLive(ctx context.Context, a *App) error {
	a.logger = logging.New("console", a.config.LogLevel, os.Stderr)

	db, err := client.InitDatabase(ctx, a.config.DataFile)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db.Close)

	session := services.NewSessionService(metadata.NewSQLiteRepository(db))
	a.session = session
	a.api = client.NewHTTPClient(a.config.ServerHTTPURL, a.config.RequestTimeout, session, a.logger)

	g, err := client.NewGRPCClient(a.config.ServerGRPCAddr)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, g.Close)
	a.credentials = g

	return nil
}

// Close releases what the last command opened.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
