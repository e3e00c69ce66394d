package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
)

// SQLiteRepository stores created_at as unix microseconds, matching the
// precision Postgres keeps for TIMESTAMPTZ.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, identity, passwordHash string, createdAt time.Time) (*models.Credential, error) {
	c := &models.Credential{
		ID:           uuid.NewString(),
		Identity:     identity,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC().Truncate(time.Microsecond),
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (id, identity, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(identity) DO NOTHING
	`, c.ID, c.Identity, c.PasswordHash, c.CreatedAt.UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("failed to insert credential: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to insert credential: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorAlreadyExists
	}
	return c, nil
}

func (r *SQLiteRepository) FindByIdentity(ctx context.Context, identity string) (*models.Credential, error) {
	var (
		c       models.Credential
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, identity, password_hash, created_at FROM credentials WHERE identity = ?`, identity,
	).Scan(&c.ID, &c.Identity, &c.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	c.CreatedAt = time.UnixMicro(created).UTC()
	return &c, nil
}
