package credentials

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/google/uuid"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+credentials\s*\(id,\s*identity,\s*password_hash,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(identity\)\s*DO\s+NOTHING\s*$`
	selectQuery = `(?s)^SELECT\s+id,\s*identity,\s*password_hash,\s*created_at\s+FROM\s+credentials\s+WHERE\s+identity\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgresInsertIfAbsent_Inserted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 10, 27, 14, 5, 16, 0, time.FixedZone("CET", 3600))

	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "hash", created.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.InsertIfAbsent(context.Background(), "alice@example.com", "hash", created)
	if err != nil {
		t.Fatalf("InsertIfAbsent error: %v", err)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", got.ID)
	}
	if got.Identity != "alice@example.com" || got.PasswordHash != "hash" || got.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresInsertIfAbsent_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.InsertIfAbsent(context.Background(), "alice@example.com", "hash", time.Now())
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestPostgresInsertIfAbsent_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WillReturnError(errors.New("db down"))

	_, err := repo.InsertIfAbsent(context.Background(), "alice@example.com", "hash", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("backend failure must not look like a conflict")
	}
}

func TestPostgresInsertIfAbsent_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	_, err := repo.InsertIfAbsent(context.Background(), "alice@example.com", "hash", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*no count`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped rows-affected error, got %v", err)
	}
}

func TestPostgresFindByIdentity_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 10, 27, 14, 5, 16, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "identity", "password_hash", "created_at"}).
		AddRow("c-1", "alice@example.com", "hash", created)
	mock.ExpectQuery(selectQuery).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.FindByIdentity(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByIdentity error: %v", err)
	}
	if got.ID != "c-1" || got.PasswordHash != "hash" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestPostgresFindByIdentity_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIdentity(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresFindByIdentity_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("alice").
		WillReturnError(errors.New("db err"))

	_, err := repo.FindByIdentity(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
