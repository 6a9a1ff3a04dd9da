package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// AuthService implements registration, login, logout and token refresh.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenService
	media  ports.MediaStore
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, media ports.MediaStore, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, media: media, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, domain.ErrMissingFields
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		return nil, domain.ErrUserExists
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	if in.AvatarPath == "" {
		return nil, domain.ErrAvatarRequired
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("avatar upload failed")
		return nil, domain.NewError(domain.ErrValidation, "error while uploading avatar")
	}

	var coverURL, coverKey string
	if in.CoverImagePath != "" {
		cover, err := s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("cover image upload failed, continuing without it")
		} else {
			coverURL, coverKey = cover.URL, cover.Key
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		PasswordHash: hash,
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Uploaded objects are not cleaned up; log their keys for manual removal.
		s.log.Warn().Err(err).
			Str("username", username).
			Str("avatar_key", avatar.Key).
			Str("cover_image_key", coverKey).
			Msg("user not created, uploaded media orphaned")
		return nil, fmt.Errorf("register: %w", err)
	}

	stored, err := s.users.FindByID(ctx, created.ID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, "something went wrong while registering the user", err)
	}

	s.log.Info().Str("user_id", stored.ID).Str("username", stored.Username).Msg("user registered")
	return stored.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return nil, domain.ErrIdentityRequired
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{User: user.Public(), Tokens: tokens}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// Refresh rotates the presented refresh token. Every failure is reported as
// unauthorized, keeping the reason of the underlying error.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return ports.TokenPair{}, domain.ErrMissingToken
	}

	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return ports.TokenPair{}, err
		}
		return ports.TokenPair{}, domain.Wrap(domain.ErrUnauthorized, reasonOf(err, "invalid refresh token"), err)
	}
	return pair, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewError(domain.ErrValidation, "password is too long")
		}
		return "", domain.Wrap(domain.ErrInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// reasonOf returns the client-safe message carried by err, or fallback.
func reasonOf(err error, fallback string) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
