// Package credentials persists credential records. All implementations
// enforce identity uniqueness in the backend itself, so InsertIfAbsent is
// safe to race from many goroutines or processes.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// Repository is the credential store contract.
//
// FindByIdentity returns common.ErrorNotFound when no record exists.
// InsertIfAbsent atomically creates the record or returns
// common.ErrorAlreadyExists if the identity is taken; of N concurrent calls
// for one identity exactly one succeeds. Any other error is a backend
// failure.
type Repository interface {
	FindByIdentity(ctx context.Context, identity string) (*models.Credential, error)
	InsertIfAbsent(ctx context.Context, identity, passwordHash string, createdAt time.Time) (*models.Credential, error)
}
