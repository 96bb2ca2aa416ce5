package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

const (
	insertRe = `(?s)INSERT\s+INTO\s+users\s*\(username,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at`
	selectRe = `(?s)SELECT\s+id,\s*username,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		result  func(*sqlmock.ExpectedQuery)
		want    *models.User
		wantErr error
		errText string
	}{
		{
			name: "inserted",
			result: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-42", created))
			},
			want: &models.User{ID: "u-42", UserName: "Alice", PasswordHash: "salt$key", CreatedAt: created},
		},
		{
			name: "name taken",
			result: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_lower_idx"})
			},
			wantErr: common.ErrorAlreadyExists,
		},
		{
			name:    "db failure",
			result:  func(q *sqlmock.ExpectedQuery) { q.WillReturnError(errors.New("db down")) },
			errText: "insert user: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.result(mock.ExpectQuery(insertRe).WithArgs("Alice", "salt$key"))

			got, err := repo.Create(context.Background(), &models.User{UserName: "Alice", PasswordHash: "salt$key"})
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.EqualError(t, err, tt.errText)
			default:
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("Create() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestGetByUserName(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found in any case", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectRe).WithArgs("ALICE").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow("u-1", "Alice", "salt$key", created))

		got, err := repo.GetByUserName(context.Background(), "ALICE")
		require.NoError(t, err)
		require.Equal(t, &models.User{ID: "u-1", UserName: "Alice", PasswordHash: "salt$key", CreatedAt: created}, got)
	})

	t.Run("unknown", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectRe).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUserName(context.Background(), "ghost")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db failure", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectRe).WithArgs("alice").WillReturnError(errors.New("conn reset"))

		_, err := repo.GetByUserName(context.Background(), "alice")
		require.EqualError(t, err, "select user: conn reset")
	})
}
