package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophcourse/internal/catalog"
	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/drip"
	"github.com/dmitrijs2005/gophcourse/internal/server/metrics"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/repomanager"
)

const maxDisplayNameLen = 80

// AssetSigner issues download URLs for lesson assets.
type AssetSigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// DripView is the transport form of a drip state.
type DripView struct {
	Locked          bool       `json:"locked"`
	RemainingMillis int64      `json:"remainingMillis"`
	UnlockAt        *time.Time `json:"unlockAt,omitempty"`
}

func NewDripView(st drip.State, unlockAt time.Time) DripView {
	v := DripView{Locked: st.Locked, RemainingMillis: st.RemainingMillis()}
	if st.Locked {
		u := unlockAt.UTC()
		v.UnlockAt = &u
	}
	return v
}

type ModuleView struct {
	Module    catalog.Module `json:"module"`
	Drip      DripView       `json:"drip"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}

type Overview struct {
	Account   *models.Account `json:"account"`
	Modules   []ModuleView    `json:"modules"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Percent   int             `json:"percent"`
}

type LessonView struct {
	Lesson    catalog.Lesson `json:"lesson"`
	ModuleID  string         `json:"moduleId"`
	Module    string         `json:"moduleTitle"`
	Completed bool           `json:"completed"`
}

// CourseService serves course content to active accounts, enforcing the
// drip schedule on every lesson-level operation.
type CourseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *catalog.Catalog
	assets      AssetSigner
	metrics     *metrics.Metrics
}

func NewCourseService(db *sql.DB, m repomanager.RepositoryManager, cat *catalog.Catalog, assets AssetSigner, mtr *metrics.Metrics) *CourseService {
	return &CourseService{db: db, repomanager: m, catalog: cat, assets: assets, metrics: mtr}
}

// Account returns the account record regardless of its course status.
func (s *CourseService) Account(ctx context.Context, uid string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).Get(ctx, uid)
}

func (s *CourseService) Overview(ctx context.Context, uid string, now time.Time) (*Overview, error) {
	acc, err := s.activeAccount(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := &Overview{Account: acc}
	for _, m := range s.catalog.Modules() {
		st := drip.Evaluate(acc.CreatedAt, m.Policy(), now)

		mv := ModuleView{
			Module: m,
			Drip:   NewDripView(st, m.Policy().UnlockAt(acc.CreatedAt)),
			Total:  len(m.Lessons),
		}
		for _, l := range m.Lessons {
			if acc.Completed(l.ID) {
				mv.Completed++
			}
		}

		out.Modules = append(out.Modules, mv)
		out.Completed += mv.Completed
		out.Total += mv.Total
	}

	if out.Total > 0 {
		out.Percent = out.Completed * 100 / out.Total
	}

	return out, nil
}

// Lesson returns a lesson of an unlocked module. Locked modules yield a
// *LockedError.
func (s *CourseService) Lesson(ctx context.Context, uid, lessonID string, now time.Time) (*LessonView, error) {
	acc, lesson, module, err := s.unlockedLesson(ctx, uid, lessonID, now)
	if err != nil {
		return nil, err
	}
	return &LessonView{
		Lesson:    lesson,
		ModuleID:  module.ID,
		Module:    module.Title,
		Completed: acc.Completed(lesson.ID),
	}, nil
}

// MarkComplete records lessonID as completed and makes it the current lesson.
func (s *CourseService) MarkComplete(ctx context.Context, uid, lessonID string, now time.Time) error {
	if _, _, _, err := s.unlockedLesson(ctx, uid, lessonID, now); err != nil {
		return err
	}
	if err := s.repomanager.Accounts(s.db).MarkLessonComplete(ctx, uid, lessonID, now); err != nil {
		return fmt.Errorf("error marking lesson complete: %w", err)
	}
	return nil
}

// AssetURL presigns the lesson's downloadable asset. Lessons without an
// asset key yield common.ErrorNotFound.
func (s *CourseService) AssetURL(ctx context.Context, uid, lessonID string, now time.Time) (string, error) {
	_, lesson, _, err := s.unlockedLesson(ctx, uid, lessonID, now)
	if err != nil {
		return "", err
	}
	if lesson.AssetKey == "" || s.assets == nil {
		return "", common.ErrorNotFound
	}
	u, err := s.assets.PresignGet(ctx, lesson.AssetKey)
	if err != nil {
		return "", fmt.Errorf("error presigning asset: %w", err)
	}
	return u, nil
}

// ModuleGate returns what a countdown needs: the enrollment timestamp and
// the module's release policy.
func (s *CourseService) ModuleGate(ctx context.Context, uid, moduleID string) (time.Time, drip.Policy, error) {
	m, ok := s.catalog.Module(moduleID)
	if !ok {
		return time.Time{}, drip.Policy{}, common.ErrorNotFound
	}
	acc, err := s.activeAccount(ctx, uid)
	if err != nil {
		return time.Time{}, drip.Policy{}, err
	}
	return acc.CreatedAt, m.Policy(), nil
}

func (s *CourseService) UpdateDisplayName(ctx context.Context, uid, name string, now time.Time) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
		return nil, ErrInvalidArgument
	}

	repo := s.repomanager.Accounts(s.db)
	if err := repo.UpdateDisplayName(ctx, uid, name, now); err != nil {
		return nil, err
	}
	return repo.Get(ctx, uid)
}

func (s *CourseService) activeAccount(ctx context.Context, uid string) (*models.Account, error) {
	acc, err := s.repomanager.Accounts(s.db).Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if acc.CourseStatus != models.CourseActive {
		return nil, common.ErrorForbidden
	}
	return acc, nil
}

func (s *CourseService) unlockedLesson(ctx context.Context, uid, lessonID string, now time.Time) (*models.Account, catalog.Lesson, catalog.Module, error) {
	lesson, module, ok := s.catalog.FindLesson(lessonID)
	if !ok {
		return nil, catalog.Lesson{}, catalog.Module{}, common.ErrorNotFound
	}

	acc, err := s.activeAccount(ctx, uid)
	if err != nil {
		return nil, catalog.Lesson{}, catalog.Module{}, err
	}

	st := drip.Evaluate(acc.CreatedAt, module.Policy(), now)
	s.metrics.DripCheck(st.Locked)
	if st.Locked {
		return nil, catalog.Lesson{}, catalog.Module{}, &LockedError{
			ModuleID: module.ID,
			State:    st,
			UnlockAt: module.Policy().UnlockAt(acc.CreatedAt),
		}
	}

	return acc, lesson, module, nil
}
