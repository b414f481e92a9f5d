package service

import (
	"context"
	"testing"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserServiceForTest(userRepo *fakeUserRepo, registerEnabled bool) UserService {
	tokenManager := app.NewTokenManager(app.TokenConfig{
		SecretKey: "test-secret",
		Expiry:    time.Hour,
	})
	return NewUserService(userRepo, tokenManager, zap.NewNop(), &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: registerEnabled},
	})
}

func registerRequest() *dto.UserCreateRequest {
	return &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(newFakeUserRepo(), true)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.Token)

	// 邮箱登录
	logged, err := svc.Login(ctx, &dto.UserLoginRequest{
		Credentials: "alice@example.com",
		Password:    "secret-pass",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.UID, logged.UID)
	assert.NotEmpty(t, logged.Token)

	// 用户名登录
	logged, err = svc.Login(ctx, &dto.UserLoginRequest{
		Credentials: "alice",
		Password:    "secret-pass",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.UID, logged.UID)
}

func TestUserService_RegisterDisabled(t *testing.T) {
	svc := newUserServiceForTest(newFakeUserRepo(), false)

	_, err := svc.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, code.ErrorUserRegisterDisabled)
}

func TestUserService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(newFakeUserRepo(), true)

	bad := registerRequest()
	bad.Username = "a!"
	_, err := svc.Register(ctx, bad)
	assert.ErrorIs(t, err, code.ErrorUsernameNotValid)

	bad = registerRequest()
	bad.ConfirmPassword = "other"
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, code.ErrorUserPasswordNotMatch)
}

func TestUserService_RegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(newFakeUserRepo(), true)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	// 邮箱重复
	dup := registerRequest()
	dup.Username = "alice2"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, code.ErrorUserEmailAlreadyExists)

	// 用户名重复
	dup = registerRequest()
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, code.ErrorUserAlreadyExists)
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(newFakeUserRepo(), true)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{
		Credentials: "alice",
		Password:    "wrong",
	}, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserLoginFailed)

	// 不暴露用户是否存在
	_, err = svc.Login(ctx, &dto.UserLoginRequest{
		Credentials: "nobody",
		Password:    "wrong",
	}, "127.0.0.1")
	assert.ErrorIs(t, err, code.ErrorUserLoginFailed)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newUserServiceForTest(repo, true)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.UID, &dto.UserChangePasswordRequest{
		OldPassword:     "wrong",
		Password:        "new-secret",
		ConfirmPassword: "new-secret",
	})
	assert.ErrorIs(t, err, code.ErrorUserOldPasswordFailed)

	err = svc.ChangePassword(ctx, user.UID, &dto.UserChangePasswordRequest{
		OldPassword:     "secret-pass",
		Password:        "new-secret",
		ConfirmPassword: "new-secret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{
		Credentials: "alice",
		Password:    "new-secret",
	}, "127.0.0.1")
	require.NoError(t, err)
}

func TestUserService_GetInfo(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(newFakeUserRepo(), true)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	info, err := svc.GetInfo(ctx, user.UID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "alice@example.com", info.Email)

	// 不存在的用户返回空结果而非错误
	info, err = svc.GetInfo(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, info)
}
