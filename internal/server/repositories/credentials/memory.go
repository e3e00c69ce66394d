package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryRepository keeps credentials in process memory. Uniqueness comes
// from the map's per-key LoadOrStore, so registrations for different
// identities never contend on a shared lock. Intended for tests and local
// development; data is lost on restart.
type MemoryRepository struct {
	m *xsync.MapOf[string, models.Credential]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: xsync.NewMapOf[string, models.Credential]()}
}

func (r *MemoryRepository) InsertIfAbsent(ctx context.Context, identity, passwordHash string, createdAt time.Time) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := models.Credential{
		ID:           uuid.NewString(),
		Identity:     identity,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
	}
	if _, loaded := r.m.LoadOrStore(identity, c); loaded {
		return nil, common.ErrorAlreadyExists
	}
	return &c, nil
}

func (r *MemoryRepository) FindByIdentity(ctx context.Context, identity string) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, ok := r.m.Load(identity)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

// Len reports how many credentials are stored.
func (r *MemoryRepository) Len() int {
	return r.m.Size()
}
