package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/dbx"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GrantAccess upserts the account. The conflict branch touches neither
// created_at nor progress nor display_name, and keeps the higher access level.
func (r *PostgresRepository) GrantAccess(ctx context.Context, g models.Grant) (bool, error) {
	query := `
		INSERT INTO accounts (uid, email, display_name, access_level, course_status, created_at, last_updated, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $6, '{}'::jsonb)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			access_level = GREATEST(accounts.access_level, EXCLUDED.access_level),
			course_status = EXCLUDED.course_status,
			last_updated = EXCLUDED.last_updated
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		g.UID, g.Email, g.DisplayName, int(g.AccessLevel), string(g.CourseStatus), g.Now).
		Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return inserted, nil
}

func (r *PostgresRepository) Get(ctx context.Context, uid string) (*models.Account, error) {
	query := `
		SELECT uid, email, display_name, access_level, course_status, created_at, last_updated, progress, current_lesson
		FROM accounts
		WHERE uid = $1
	`
	var (
		a        models.Account
		level    int
		status   string
		progress []byte
		current  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&a.UID, &a.Email, &a.DisplayName, &level, &status,
		&a.CreatedAt, &a.LastUpdated, &progress, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.AccessLevel = models.AccessLevel(level)
	a.CourseStatus = models.CourseStatus(status)
	a.CurrentLesson = current.String
	a.Progress = map[string]bool{}
	if len(progress) > 0 {
		if err := json.Unmarshal(progress, &a.Progress); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
	}

	return &a, nil
}

// MarkLessonComplete merges {lessonID: true} into progress and moves the
// current lesson pointer.
func (r *PostgresRepository) MarkLessonComplete(ctx context.Context, uid, lessonID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET progress = progress || jsonb_build_object($2::text, true),
			current_lesson = $2,
			last_updated = $3
		WHERE uid = $1
	`
	return r.exec(ctx, query, uid, lessonID, now)
}

func (r *PostgresRepository) UpdateDisplayName(ctx context.Context, uid, name string, now time.Time) error {
	query := `
		UPDATE accounts
		SET display_name = $2,
			last_updated = $3
		WHERE uid = $1
	`
	return r.exec(ctx, query, uid, name, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
