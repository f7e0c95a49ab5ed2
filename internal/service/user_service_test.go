package service

import (
	"testing"

	"momcare-go/internal/repository"
	"momcare-go/pkg/token"

	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db := newTestDB(t)
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewHospitalRepository(db),
		jwtManager,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Register("mama01", "secret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "secret-pass", user.Password) // 密码以哈希形式存储

	// 用户名重复
	_, err = svc.Register("mama01", "another-pass")
	require.ErrorIs(t, err, ErrConflict)

	logged, pair, err := svc.Login("mama01", "secret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// 错误密码与不存在的用户返回同样的错误
	_, _, err = svc.Login("mama01", "wrong")
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = svc.Login("nobody", "wrong")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("", "secret-pass")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register("mama01", "123")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRefreshToken(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register("mama01", "secret-pass")
	require.NoError(t, err)
	_, pair, err := svc.Login("mama01", "secret-pass")
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	require.ErrorIs(t, err, ErrForbidden)
}
