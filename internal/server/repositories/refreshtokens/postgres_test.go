package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/stretchr/testify/require"
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
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	tok := models.RefreshToken{UserID: "u1", Token: "tok123", Expires: exp}

	t.Run("stored", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens\s*\(token,\s*user_id,\s*expires_at\)`).
			WithArgs("tok123", "u1", exp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), tok))
	})

	t.Run("db failure", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens`).WillReturnError(errors.New("insert failed"))

		require.EqualError(t, repo.Create(context.Background(), tok), "insert refresh token: insert failed")
	})
}

func TestConsume(t *testing.T) {
	exp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	const consumeRe = `DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+user_id,\s*expires_at`

	tests := []struct {
		name    string
		setup   func(q *sqlmock.ExpectedQuery)
		wantErr error
	}{
		{
			name: "redeemed",
			setup: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow("u1", exp))
			},
		},
		{
			name:    "unknown or already used",
			setup:   func(q *sqlmock.ExpectedQuery) { q.WillReturnError(sql.ErrNoRows) },
			wantErr: common.ErrorNotFound,
		},
		{
			name:    "db failure",
			setup:   func(q *sqlmock.ExpectedQuery) { q.WillReturnError(sql.ErrConnDone) },
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock.ExpectQuery(consumeRe).WithArgs("tok"))

			got, err := repo.Consume(context.Background(), "tok")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, &models.RefreshToken{UserID: "u1", Token: "tok", Expires: exp}, got)
		})
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+expires_at\s*<\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}
