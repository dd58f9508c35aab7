package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

func newAuthServiceForTest(t *testing.T) (AuthService, repository.UserRepository, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := setupServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(users, redisClient, AuthTokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		OTPTTL:        time.Minute,
	}, NewLogOTPSender(zerolog.Nop()), validate, zerolog.Nop())

	return svc, users, mini
}

func storedOTP(t *testing.T, mini *miniredis.Miniredis, userID, purpose string) string {
	t.Helper()
	code, err := mini.Get(fmt.Sprintf("jorhatx:otp:%s:%s", purpose, userID))
	require.NoError(t, err)
	return code
}

func TestAuthServiceRegisterVerifyAndLogin(t *testing.T) {
	svc, users, mini := newAuthServiceForTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		Password: "sw0rdfish!",
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", registered.Email)

	// Duplicate registration is rejected.
	_, err = svc.Register(ctx, dto.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "sw0rdfish!",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	// A wrong code does not verify.
	_, err = svc.VerifyOTP(ctx, dto.VerifyOTPRequest{UserID: registered.UserID, Code: "000000"})
	require.ErrorIs(t, err, ErrInvalidOTP)

	code := storedOTP(t, mini, registered.UserID, "verify")
	session, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{UserID: registered.UserID, Code: code})
	require.NoError(t, err)
	require.True(t, session.User.Verified)
	require.NotEmpty(t, session.Tokens.AccessToken)
	require.NotEmpty(t, session.Tokens.RefreshToken)

	// Codes are single use.
	_, err = svc.VerifyOTP(ctx, dto.VerifyOTPRequest{UserID: registered.UserID, Code: code})
	require.ErrorIs(t, err, ErrInvalidOTP)

	stored, err := users.ByID(ctx, registered.UserID)
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.NotEqual(t, "sw0rdfish!", stored.PasswordHash)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "asha@example.com", Password: "sw0rdfish!"})
	require.NoError(t, err)
	require.Equal(t, registered.UserID, login.User.ID)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsBannedAccounts(t *testing.T) {
	svc, users, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Banned",
		Email:    "banned@example.com",
		Password: "sw0rdfish!",
	})
	require.NoError(t, err)
	require.NoError(t, users.SetBanned(ctx, registered.UserID, true))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "banned@example.com", Password: "sw0rdfish!"})
	require.ErrorIs(t, err, ErrUserBanned)
}

func TestAuthServiceRefreshAndLogout(t *testing.T) {
	svc, _, mini := newAuthServiceForTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Ravi",
		Email:    "ravi@example.com",
		Password: "sw0rdfish!",
	})
	require.NoError(t, err)

	code := storedOTP(t, mini, registered.UserID, "verify")
	session, err := svc.VerifyOTP(ctx, dto.VerifyOTPRequest{UserID: registered.UserID, Code: code})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(ctx, session.Tokens.AccessToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Logout denylists the token; further refreshes fail.
	require.NoError(t, svc.Logout(ctx, session.Tokens.RefreshToken))
	_, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthServicePasswordResetFlow(t *testing.T) {
	svc, _, mini := newAuthServiceForTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Mira",
		Email:    "mira@example.com",
		Password: "old-password1",
	})
	require.NoError(t, err)

	started, err := svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "mira@example.com"})
	require.NoError(t, err)
	require.Equal(t, registered.UserID, started.UserID)

	code := storedOTP(t, mini, registered.UserID, "reset")
	require.NoError(t, svc.ResetPassword(ctx, dto.ResetPasswordRequest{
		UserID:      registered.UserID,
		Code:        code,
		NewPassword: "new-password1",
	}))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "mira@example.com", Password: "old-password1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "mira@example.com", Password: "new-password1"})
	require.NoError(t, err)
	require.Equal(t, registered.UserID, login.User.ID)
}

func TestAuthServiceProfileUpdates(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Original",
		Email:    "profile@example.com",
		Password: "sw0rdfish!",
	})
	require.NoError(t, err)

	name := "Updated Name"
	location := "Jorhat, Assam"
	updated, err := svc.UpdateProfile(ctx, registered.UserID, dto.ProfileUpdateRequest{
		Name:          &name,
		LocationLabel: &location,
	})
	require.NoError(t, err)
	require.Equal(t, "Updated Name", updated.Name)
	require.Equal(t, "Jorhat, Assam", updated.LocationLabel)

	me, err := svc.Me(ctx, registered.UserID)
	require.NoError(t, err)
	require.Equal(t, "Updated Name", me.Name)

	_, err = svc.Me(ctx, "missing-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}
