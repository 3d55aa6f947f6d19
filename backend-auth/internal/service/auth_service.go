package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// dummyPassword is hashed once so logins for unknown emails spend the same
// time verifying as logins for real ones.
const dummyPassword = "autostore-timing-equalizer"

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	AccessTokenTTL    time.Duration
	MinPasswordLength int
	MaxPasswordLength int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates an account and returns a token for it
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login authenticates a user
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Me returns the stored view of a user
	Me(ctx context.Context, userID int64) (*dto.MeResponse, error)
	// SetActive activates or deactivates a user
	SetActive(ctx context.Context, userID int64, active bool) (*dto.UserStatusResponse, error)
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	issuer   auth.TokenIssuer
	config   AuthServiceConfig
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	issuer auth.TokenIssuer,
	config *AuthServiceConfig,
) AuthService {
	cfg := AuthServiceConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 60 * time.Minute
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}
	if cfg.MaxPasswordLength <= 0 {
		cfg.MaxPasswordLength = 72
	}
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		config:   cfg,
		now:      time.Now,
	}
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates role and password policy, then stores the user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	n := utf8.RuneCountInString(req.Password)
	if n < s.config.MinPasswordLength || n > s.config.MaxPasswordLength {
		return nil, s.weakPassword()
	}

	email := NormalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, s.weakPassword()
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = domain.DefaultFullName
	}

	now := s.now()
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	return s.issueFor(user)
}

func (s *authService) weakPassword() error {
	return &domain.PasswordPolicyError{Min: s.config.MinPasswordLength, Max: s.config.MaxPasswordLength}
}

// Login checks the password before the activation flag so a deactivated
// account is only revealed to someone who knows its password.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.verifyDummy(req.Password)
			return nil, domain.ErrInvalidCredentials
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	return s.issueFor(user)
}

// Me returns the stored record, not what the token claims
func (s *authService) Me(ctx context.Context, userID int64) (*dto.MeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.me")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}

	return &dto.MeResponse{
		ID:         user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		IsVerified: user.IsVerified,
		IsActive:   user.IsActive,
	}, nil
}

// SetActive activates or deactivates a user
func (s *authService) SetActive(ctx context.Context, userID int64, active bool) (*dto.UserStatusResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.set_active")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Bool("is_active", active))

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}
	return &dto.UserStatusResponse{UserID: userID, IsActive: active}, nil
}

func (s *authService) issueFor(user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.issuer.Issue(auth.Claims{
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(user.ID, 10),
		},
	}, s.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        string(user.Role),
	}, nil
}

func (s *authService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}
