package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storefront/api/internal/config"
	"storefront/api/internal/models"
	"storefront/api/internal/repository"
	"storefront/api/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the user repository the services need.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

// TokenStore persists refresh tokens. Rotate must be atomic: exactly one of
// any set of concurrent rotations of the same token may succeed.
type TokenStore interface {
	Store(ctx context.Context, token models.RefreshToken) error
	Rotate(ctx context.Context, oldToken string, next models.RefreshToken) error
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(users UserStore, tokens TokenStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, repository.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, refreshRow, err := s.issueTokens(user.Email)
	if err != nil {
		return TokenPair{}, err
	}

	// the refresh token is persisted before it is handed out; an unstored
	// token would never survive a rotation lookup
	if err := s.tokens.Store(ctx, refreshRow); err != nil {
		return TokenPair{}, err
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the old token
// out. The new pair is signed first and committed together with the delete
// of the old row, so a caller is never left without a valid refresh token:
// on any failure the old token row is untouched.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (TokenPair, error) {
	claims, err := security.ParseToken(oldToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	pair, refreshRow, err := s.issueTokens(claims.Email)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.tokens.Rotate(ctx, oldToken, refreshRow); err != nil {
		// ErrTokenNotFound: already rotated or never issued; reuse denied
		return TokenPair{}, err
	}

	return pair, nil
}

func (s *AuthService) issueTokens(email string) (TokenPair, models.RefreshToken, error) {
	accessToken, err := security.SignToken(s.cfg.Security.JWTAccessSecret, email, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return TokenPair{}, models.RefreshToken{}, err
	}

	refreshToken, err := security.SignToken(s.cfg.Security.JWTRefreshSecret, email, s.cfg.Security.JWTRefreshTTL)
	if err != nil {
		return TokenPair{}, models.RefreshToken{}, err
	}

	row := models.RefreshToken{
		Token:     refreshToken,
		UserEmail: email,
		ExpiresAt: time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, row, nil
}
