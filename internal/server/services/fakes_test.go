package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/dbx"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/identities"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/secrets"
)

// --- identities ---

type fakeIdentities struct {
	mu      sync.Mutex
	byEmail map[string]*models.Identity
	seq     int

	creates   int
	getErr    error
	createErr error
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byEmail: map[string]*models.Identity{}}
}

func (f *fakeIdentities) Create(_ context.Context, i *models.Identity) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[i.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.seq++
	cp := *i
	cp.ID = fmt.Sprintf("uid-%d", f.seq)
	cp.CreatedAt = time.Now()
	f.byEmail[i.Email] = &cp
	return &cp, nil
}

func (f *fakeIdentities) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	i, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdentities) GetByID(_ context.Context, id string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.byEmail {
		if i.ID == id {
			cp := *i
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- accounts ---

// fakeAccounts mirrors the upsert semantics of the Postgres repository:
// createdAt and progress are insert-only and the access level never drops.
type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	grants   int
	grantErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*models.Account{}}
}

func (f *fakeAccounts) GrantAccess(_ context.Context, g models.Grant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants++
	if f.grantErr != nil {
		return false, f.grantErr
	}
	a, ok := f.accounts[g.UID]
	if !ok {
		f.accounts[g.UID] = &models.Account{
			UID:          g.UID,
			Email:        g.Email,
			DisplayName:  g.DisplayName,
			AccessLevel:  g.AccessLevel,
			CourseStatus: g.CourseStatus,
			CreatedAt:    g.Now,
			LastUpdated:  g.Now,
			Progress:     map[string]bool{},
		}
		return true, nil
	}
	a.Email = g.Email
	if g.AccessLevel > a.AccessLevel {
		a.AccessLevel = g.AccessLevel
	}
	a.CourseStatus = g.CourseStatus
	a.LastUpdated = g.Now
	return false, nil
}

func (f *fakeAccounts) Get(_ context.Context, uid string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[uid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	cp.Progress = make(map[string]bool, len(a.Progress))
	for k, v := range a.Progress {
		cp.Progress[k] = v
	}
	return &cp, nil
}

func (f *fakeAccounts) MarkLessonComplete(_ context.Context, uid, lessonID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[uid]
	if !ok {
		return common.ErrorNotFound
	}
	a.Progress[lessonID] = true
	a.CurrentLesson = lessonID
	a.LastUpdated = now
	return nil
}

func (f *fakeAccounts) UpdateDisplayName(_ context.Context, uid, name string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[uid]
	if !ok {
		return common.ErrorNotFound
	}
	a.DisplayName = name
	a.LastUpdated = now
	return nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	takeOut   *models.RefreshToken
	takeErr   error
	createErr error

	created []string
	taken   []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Take(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.takeErr != nil {
		return nil, f.takeErr
	}
	f.taken = append(f.taken, token)
	return f.takeOut, nil
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

// --- secrets ---

// recordingSecrets wraps the in-memory repository and keeps every upserted
// record for inspection.
type recordingSecrets struct {
	*secrets.MemoryRepository
	mu      sync.Mutex
	upserts []models.VaultedSecret
}

func newRecordingSecrets() *recordingSecrets {
	return &recordingSecrets{MemoryRepository: secrets.NewMemoryRepository()}
}

func (r *recordingSecrets) Upsert(ctx context.Context, s *models.VaultedSecret) error {
	r.mu.Lock()
	r.upserts = append(r.upserts, *s)
	r.mu.Unlock()
	return r.MemoryRepository.Upsert(ctx, s)
}

func (r *recordingSecrets) Upserts() []models.VaultedSecret {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.VaultedSecret(nil), r.upserts...)
}

// --- repository manager ---

type fakeRepoManager struct {
	ids  *fakeIdentities
	accs *fakeAccounts
	sec  secrets.Repository
	refr *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (m *fakeRepoManager) Identities(dbx.DBTX) identities.Repository       { return m.ids }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository           { return m.accs }
func (m *fakeRepoManager) Secrets(dbx.DBTX) secrets.Repository             { return m.sec }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refr }
