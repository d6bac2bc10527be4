package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/user/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/user/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/ratelimiter"
	"github.com/prajaktamali15/e-learning-platform/pkg/token"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

// LoginThrottle bounds failed logins per email inside Window. Zero MaxAttempts disables it.
type LoginThrottle struct {
	MaxAttempts int
	Window      time.Duration
}

type authService struct {
	repo        repository.UserRepository
	tokens      *token.Manager
	redisClient *redis.Client
	throttle    LoginThrottle
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, redisClient *redis.Client, throttle LoginThrottle) AuthService {
	return &authService{
		repo:        repo,
		tokens:      tokens,
		redisClient: redisClient,
		throttle:    throttle,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	role := entity.RoleStudent
	if input.Role != "" {
		parsed, ok := entity.ParseRole(input.Role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q: %w", input.Role, apperror.ErrBadRequest)
		}
		role = parsed
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user already exists: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := normalizeEmail(input.Email)

	if s.throttle.MaxAttempts > 0 {
		attempts, err := ratelimiter.Attempts(ctx, s.redisClient, ratelimiter.ScopeLogin, email)
		if err != nil {
			return nil, err
		}
		if attempts >= int64(s.throttle.MaxAttempts) {
			ttl, _ := ratelimiter.TTL(ctx, s.redisClient, ratelimiter.ScopeLogin, email)
			return nil, fmt.Errorf("too many failed logins, retry in %.0f seconds: %w", ttl.Seconds(), apperror.ErrRateLimitExceeded)
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, email)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, errInvalidCredentials
	}

	if s.throttle.MaxAttempts > 0 {
		_ = ratelimiter.Clear(ctx, s.redisClient, ratelimiter.ScopeLogin, email)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if s.throttle.MaxAttempts > 0 {
		_, _ = ratelimiter.Hit(ctx, s.redisClient, ratelimiter.ScopeLogin, email, s.throttle.Window)
	}
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        dto.NewUserResponse(user),
	}, nil
}
