package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

const (
	tokenIssuer      = "videotube"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 10 * 24 * time.Hour
)

// TokenConfig holds the signing secrets and lifetimes of both token classes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type sessionClaims struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService implements ports.TokenService. The refresh token is kept on
// the user record, so clearing that field revokes every outstanding refresh
// token of the user.
type TokenService struct {
	users         ports.UserRepository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
	log           zerolog.Logger
}

func NewTokenService(users ports.UserRepository, cfg TokenConfig, log zerolog.Logger) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		users:         users,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
		log:           log,
	}
}

// Issue signs a fresh token pair for the user and stores the refresh token,
// overwriting any previous one.
func (s *TokenService) Issue(ctx context.Context, userID string) (ports.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ports.TokenPair{}, domain.Wrap(domain.ErrInternal, "something went wrong while generating access and refresh token", err)
	}

	pair, err := s.sign(user)
	if err != nil {
		return ports.TokenPair{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return ports.TokenPair{}, domain.Wrap(domain.ErrInternal, "something went wrong while generating access and refresh token", err)
	}
	return pair, nil
}

// VerifyAccess returns the user id embedded in a valid access token.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	claims, err := s.parse(token, s.accessSecret, tokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyRefresh checks the signature and expiry and that token is the one
// currently stored for the user.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (string, error) {
	user, err := s.verifyRefresh(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Rotate exchanges a valid refresh token for a new pair. The stored token is
// replaced only if it still equals the presented one, so a refresh token can
// be exchanged at most once.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	user, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return ports.TokenPair{}, err
	}

	pair, err := s.sign(user)
	if err != nil {
		return ports.TokenPair{}, err
	}

	swapped, err := s.users.SwapRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return ports.TokenPair{}, domain.Wrap(domain.ErrInternal, "something went wrong while generating access and refresh token", err)
	}
	if !swapped {
		s.log.Warn().Str("user_id", user.ID).Msg("refresh token rotated concurrently")
		return ports.TokenPair{}, domain.ErrTokenRevoked
	}
	return pair, nil
}

// Revoke clears the stored refresh token.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return domain.Wrap(domain.ErrInternal, "failed to revoke session", err)
	}
	return nil
}

func (s *TokenService) verifyRefresh(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token, s.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("verify refresh: %w", err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(token)) != 1 {
		return nil, domain.ErrTokenRevoked
	}
	return user, nil
}

func (s *TokenService) sign(user *domain.User) (ports.TokenPair, error) {
	now := s.now().UTC()

	access := sessionClaims{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: s.registered(user.ID, now, s.accessTTL),
	}
	refresh := sessionClaims{
		TokenType:        tokenTypeRefresh,
		RegisteredClaims: s.registered(user.ID, now, s.refreshTTL),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.accessSecret)
	if err != nil {
		return ports.TokenPair{}, domain.Wrap(domain.ErrInternal, "failed to sign access token", err)
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.refreshSecret)
	if err != nil {
		return ports.TokenPair{}, domain.Wrap(domain.ErrInternal, "failed to sign refresh token", err)
	}

	return ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *TokenService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) parse(token string, secret []byte, tokenType string) (*sessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
