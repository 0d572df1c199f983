package secrets

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.VaultedSecret) error {
	query := `
		INSERT INTO secrets (email, password, nonce, created_at, expires_at, retrieved)
		VALUES ($1, $2, $3, $4, $5, false)
		ON CONFLICT (email) DO UPDATE SET
			password = EXCLUDED.password,
			nonce = EXCLUDED.nonce,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at,
			retrieved = false
	`
	if _, err := r.db.ExecContext(ctx, query, s.Email, s.Password, s.Nonce, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Take deletes the row in the same statement that reads it.
func (r *PostgresRepository) Take(ctx context.Context, email string) (*models.VaultedSecret, error) {
	query := `
		DELETE FROM secrets
		WHERE email = $1
		RETURNING email, password, nonce, created_at, expires_at, retrieved
	`
	s := &models.VaultedSecret{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&s.Email, &s.Password, &s.Nonce, &s.CreatedAt, &s.ExpiresAt, &s.Retrieved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM secrets
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
