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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, identity, passwordHash string, createdAt time.Time) (*models.Credential, error) {

	c := &models.Credential{
		ID:           uuid.NewString(),
		Identity:     identity,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
	}

	query :=
		`INSERT INTO credentials (id, identity, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identity) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, c.ID, c.Identity, c.PasswordHash, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorAlreadyExists
	}

	return c, nil
}

func (r *PostgresRepository) FindByIdentity(ctx context.Context, identity string) (*models.Credential, error) {
	query :=
		`SELECT id, identity, password_hash, created_at FROM credentials
		 WHERE identity = $1
		 `

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, identity).Scan(&c.ID, &c.Identity, &c.PasswordHash, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
