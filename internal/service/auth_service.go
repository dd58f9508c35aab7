package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

var (
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserBanned indicates the account has been banned by an admin.
	ErrUserBanned = errors.New("account is banned")
	// ErrEmailTaken indicates the email already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidOTP indicates a missing, expired or mismatched one-time code.
	ErrInvalidOTP = errors.New("invalid or expired code")
	// ErrInvalidRefreshToken indicates the refresh token failed verification.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserNotFound indicates no account exists for the identifier.
	ErrUserNotFound = errors.New("user not found")
)

const (
	otpPurposeVerify = "verify"
	otpPurposeReset  = "reset"
)

// AuthTokenConfig carries the secrets and lifetimes for issued sessions.
type AuthTokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	OTPTTL        time.Duration
}

// AuthService owns account lifecycle: registration with email OTP
// verification, email/password sessions, token refresh, logout and the
// OTP-based password reset flow.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.RegistrationResponse, error)
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.SessionResponse, error)
	ResendOTP(ctx context.Context, req dto.ResendOTPRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (dto.RegistrationResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	Me(ctx context.Context, userID string) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	redis     *redis.Client
	tokens    AuthTokenConfig
	sender    OTPSender
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service. redisClient stores OTP
// codes and the refresh-token denylist.
func NewAuthService(users repository.UserRepository, redisClient *redis.Client, tokens AuthTokenConfig, sender OTPSender, validate *validator.Validate, logger zerolog.Logger) AuthService {
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = 15 * time.Minute
	}
	if tokens.RefreshTTL <= 0 {
		tokens.RefreshTTL = 7 * 24 * time.Hour
	}
	if tokens.OTPTTL <= 0 {
		tokens.OTPTTL = 10 * time.Minute
	}

	return &authService{
		users:     users,
		redis:     redisClient,
		tokens:    tokens,
		sender:    sender,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.RegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegistrationResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return dto.RegistrationResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegistrationResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.RegistrationResponse{}, err
	}

	if err := s.issueOTP(ctx, user.ID, user.Email, otpPurposeVerify); err != nil {
		return dto.RegistrationResponse{}, err
	}

	return dto.RegistrationResponse{UserID: user.ID, Email: user.Email}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	if err := s.consumeOTP(ctx, req.UserID, req.Code, otpPurposeVerify); err != nil {
		return dto.SessionResponse{}, err
	}

	user, err := s.users.ByID(ctx, req.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionResponse{}, ErrUserNotFound
	}
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if !user.Verified {
		if err := s.users.SetVerified(ctx, user.ID, true); err != nil {
			return dto.SessionResponse{}, err
		}
		user.Verified = true
	}

	return s.openSession(user)
}

func (s *authService) ResendOTP(ctx context.Context, req dto.ResendOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.ByID(ctx, req.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return s.issueOTP(ctx, user.ID, user.Email, otpPurposeVerify)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	user, err := s.users.ByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.SessionResponse{}, ErrInvalidCredentials
	}

	if user.Banned {
		return dto.SessionResponse{}, ErrUserBanned
	}

	return s.openSession(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (dto.TokenPair, error) {
	claims, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return dto.TokenPair{}, err
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return dto.TokenPair{}, ErrInvalidRefreshToken
	}

	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, s.denylistKey(jti)).Result()
		if err != nil {
			return dto.TokenPair{}, err
		}
		if revoked > 0 {
			return dto.TokenPair{}, ErrInvalidRefreshToken
		}
	}

	subject, _ := claims["sub"].(string)
	user, err := s.users.ByID(ctx, subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return dto.TokenPair{}, err
	}

	if user.Banned {
		return dto.TokenPair{}, ErrUserBanned
	}

	return s.issueTokenPair(user)
}

// Logout revokes the refresh token by denylisting its id until expiry.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return err
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return ErrInvalidRefreshToken
	}

	if s.redis == nil {
		return nil
	}

	ttl := s.tokens.RefreshTTL
	if exp, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}

	return s.redis.Set(ctx, s.denylistKey(jti), "revoked", ttl).Err()
}

func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (dto.RegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegistrationResponse{}, err
	}

	user, err := s.users.ByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegistrationResponse{}, ErrUserNotFound
	}
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	if err := s.issueOTP(ctx, user.ID, user.Email, otpPurposeReset); err != nil {
		return dto.RegistrationResponse{}, err
	}

	return dto.RegistrationResponse{UserID: user.ID, Email: user.Email}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	if err := s.consumeOTP(ctx, req.UserID, req.Code, otpPurposeReset); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.SetPasswordHash(ctx, req.UserID, string(hash))
}

func (s *authService) Me(ctx context.Context, userID string) (dto.UserResponse, error) {
	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, ErrUserNotFound
	}
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.LocationLabel != nil {
		updates["location_label"] = strings.TrimSpace(*req.LocationLabel)
	}

	if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
		return dto.UserResponse{}, err
	}

	return s.Me(ctx, userID)
}

func (s *authService) openSession(user models.User) (dto.SessionResponse, error) {
	pair, err := s.issueTokenPair(user)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	return dto.SessionResponse{
		User:   dto.NewUserResponse(user),
		Tokens: pair,
	}, nil
}

func (s *authService) issueTokenPair(user models.User) (dto.TokenPair, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.tokens.AccessTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})
	accessToken, err := access.SignedString([]byte(s.tokens.AccessSecret))
	if err != nil {
		return dto.TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.tokens.RefreshTTL).Unix(),
	})
	refreshToken, err := refresh.SignedString([]byte(s.tokens.RefreshSecret))
	if err != nil {
		return dto.TokenPair{}, err
	}

	return dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *authService) parseRefreshToken(refreshToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(strings.TrimSpace(refreshToken), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.tokens.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, ErrInvalidRefreshToken
	}
	return claims, nil
}

func (s *authService) issueOTP(ctx context.Context, userID, email, purpose string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, s.otpKey(userID, purpose), code, s.tokens.OTPTTL).Err(); err != nil {
			return err
		}
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, email, code, purpose); err != nil {
			s.logger.Warn().Err(err).Str("purpose", purpose).Msg("failed to deliver one-time code")
			return err
		}
	}
	return nil
}

func (s *authService) consumeOTP(ctx context.Context, userID, code, purpose string) error {
	if s.redis == nil {
		return ErrInvalidOTP
	}

	key := s.otpKey(userID, purpose)
	stored, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	if stored != strings.TrimSpace(code) {
		return ErrInvalidOTP
	}

	// Codes are single use.
	return s.redis.Del(ctx, key).Err()
}

func (s *authService) otpKey(userID, purpose string) string {
	return fmt.Sprintf("jorhatx:otp:%s:%s", purpose, userID)
}

func (s *authService) denylistKey(jti string) string {
	return fmt.Sprintf("jorhatx:session:revoked:%s", jti)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
