// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TierID       *string
	TokenVersion int
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name, role string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	blacklist    Blacklist
	logger       *slog.Logger
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	blacklist Blacklist,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		blacklist:    blacklist,
		logger:       logger,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if core.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, req.Password)
	}

	return s.createAuthResponse(user)
}

func (s *Service) rehash(ctx context.Context, userID, password string) {
	hash, err := core.HashPassword(password)
	if err == nil {
		err = s.userProvider.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "password rehash failed",
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Email, passwordHash, req.Name, req.Role)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(user)
}

// Logout revokes the presented access token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, claims.TokenID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier. Role comes from the
// stored user so role changes apply to tokens already issued.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	if user.TierID != nil {
		claims.TierID = *user.TierID
	}

	return claims, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	issued, err := s.jwt.CreateAccessToken(user.ID, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken: issued.Token,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.jwt.AccessTokenTTL().Seconds()),
			ExpiresAt:   issued.ExpiresAt,
		},
	}, nil
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		TierID: u.TierID,
	}
}
