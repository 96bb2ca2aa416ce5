package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/server/auth"
	"github.com/dmitrijs2005/paperswipe/internal/server/config"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg), rm, mock
}

func TestRegisterThenLogin(t *testing.T) {
	s, rm, _ := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "alice", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "id-alice", u.ID)
	require.NotContains(t, u.PasswordHash, "pw")

	pair, err := s.Login(ctx, " Alice", []byte("pw"))
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := s.UserIDFromAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "id-alice", userID)

	require.Contains(t, rm.refresh.tokens, pair.RefreshToken)
}

func TestRegister_Errors(t *testing.T) {
	s, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "  ", []byte("pw"))
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = s.Register(ctx, "bob", nil)
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = s.Register(ctx, "bob", []byte("pw"))
	require.NoError(t, err)
	_, err = s.Register(ctx, " Bob ", []byte("other"))
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin_Failures(t *testing.T) {
	s, rm, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", []byte("pw"))
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", []byte("wrong"))
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(ctx, "ghost", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	rm.users.byName["mallory"] = &models.User{ID: "m", UserName: "mallory", PasswordHash: "garbage"}
	_, err = s.Login(ctx, "mallory", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorInternal)

	rm.users.getErr = errors.New("db down")
	_, err = s.Login(ctx, "alice", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_TokenStoreFailure(t *testing.T) {
	s, rm, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", []byte("pw"))
	require.NoError(t, err)

	rm.refresh.createErr = errors.New("insert failed")
	_, err = s.Login(ctx, "alice", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_Rotates(t *testing.T) {
	s, rm, mock := newUserService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm.refresh.tokens["old"] = models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Minute)}

	pair, err := s.RefreshToken(context.Background(), "old")
	require.NoError(t, err)
	require.NotEqual(t, "old", pair.RefreshToken)
	require.NotContains(t, rm.refresh.tokens, "old")
	require.Equal(t, "u1", rm.refresh.tokens[pair.RefreshToken].UserID)

	userID, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}

func TestRefreshToken_RollsBackOnFailure(t *testing.T) {
	s, rm, mock := newUserService(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm.refresh.tokens["old"] = models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Minute)}
	rm.refresh.createErr = errors.New("insert failed")

	_, err := s.RefreshToken(context.Background(), "old")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_UnknownAndExpired(t *testing.T) {
	s, rm, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := s.RefreshToken(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	rm.refresh.tokens["stale"] = models.RefreshToken{UserID: "u1", Token: "stale", Expires: time.Now().Add(-time.Minute)}
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = s.RefreshToken(context.Background(), "stale")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	require.NotContains(t, rm.refresh.tokens, "stale")
}

func TestRefreshToken_SingleUse(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.refresh.tokens["old"] = models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Minute)}

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := s.RefreshToken(context.Background(), "old")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(context.Background(), "old")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestPurgeExpiredTokens(t *testing.T) {
	s, rm, _ := newUserService(t)
	rm.refresh.tokens["a"] = models.RefreshToken{Expires: time.Now().Add(-time.Hour)}
	rm.refresh.tokens["b"] = models.RefreshToken{Expires: time.Now().Add(time.Hour)}

	n, err := s.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Contains(t, rm.refresh.tokens, "b")
}
