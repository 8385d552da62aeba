package service

import (
	"context"
	"testing"

	"github.com/elsendo/elsendo-server/internal/dto"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture(t *testing.T, registerEnabled bool) (UserService, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	svc := NewUserService(repo, stubTokenManager{}, zap.NewNop(), &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: registerEnabled},
	})
	return svc, repo
}

func TestUserRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture(t, true)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "ana@example.com",
		Username:        "ana",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.NotZero(t, registered.UID)
	assert.NotEmpty(t, registered.Token)

	logged, err := svc.Login(ctx, &dto.UserLoginRequest{
		Email:    "ana@example.com",
		Password: "correct-horse",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, registered.UID, logged.UID)
	assert.NotEmpty(t, logged.Token)
}

func TestUserRegisterDisabled(t *testing.T) {
	svc, _ := newUserFixture(t, false)

	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email:           "ana@example.com",
		Username:        "ana",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserRegisterDisabled)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture(t, true)
	ctx := context.Background()

	params := &dto.UserCreateRequest{
		Email:           "dup@example.com",
		Username:        "first",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}
	_, err := svc.Register(ctx, params, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, params, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserEmailExists)
}

func TestUserLoginFailures(t *testing.T) {
	svc, _ := newUserFixture(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "bo@example.com",
		Username:        "bo",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "bo@example.com", Password: "wrong"}, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserPasswordWrong)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "nobody@example.com", Password: "x"}, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserNotFound)
}

func TestUserChangePassword(t *testing.T) {
	svc, _ := newUserFixture(t, true)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "cam@example.com",
		Username:        "cam",
		Password:        "old-password",
		ConfirmPassword: "old-password",
	}, "127.0.0.1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.UID, &dto.UserChangePasswordRequest{
		OldPassword:     "bad-old",
		Password:        "new-password",
		ConfirmPassword: "new-password",
	})
	assert.ErrorIs(t, err, code.ErrorUserPasswordWrong)

	err = svc.ChangePassword(ctx, registered.UID, &dto.UserChangePasswordRequest{
		OldPassword:     "old-password",
		Password:        "new-password",
		ConfirmPassword: "new-password",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "cam@example.com", Password: "new-password"}, "127.0.0.1")
	assert.NoError(t, err)
}
