package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

var errWrongOldPassword = domain.NewError(domain.ErrUnauthorized, "invalid old password")

// AccountService edits the authenticated user's own record.
type AccountService struct {
	users ports.UserRepository
	media ports.MediaStore
	log   zerolog.Logger
}

func NewAccountService(users ports.UserRepository, media ports.MediaStore, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, media: media, log: log}
}

// ChangePassword replaces the stored hash after checking the old password.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return domain.ErrMissingFields
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return errWrongOldPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// UpdateDetails applies a partial update of full name and/or email.
func (s *AccountService) UpdateDetails(ctx context.Context, userID string, in ports.UpdateDetailsInput) (*domain.User, error) {
	in.FullName = trimmedOrNil(in.FullName)
	in.Email = trimmedOrNil(in.Email)
	if in.FullName == nil && in.Email == nil {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.UpdateDetails(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("update details: %w", err)
	}
	return user.Public(), nil
}

// UpdateImage uploads the staged file and points the given image slot at it.
func (s *AccountService) UpdateImage(ctx context.Context, userID string, kind domain.ImageKind, localPath string) (*domain.User, error) {
	if localPath == "" {
		if kind == domain.ImageCoverImage {
			return nil, domain.ErrCoverImageRequired
		}
		return nil, domain.ErrAvatarRequired
	}

	media, err := s.media.Upload(ctx, localPath)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("image upload failed")
		return nil, domain.NewError(domain.ErrValidation, "error while uploading "+imageLabel(kind))
	}

	user, err := s.users.UpdateImage(ctx, userID, kind, media.URL)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	return user.Public(), nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func imageLabel(kind domain.ImageKind) string {
	if kind == domain.ImageCoverImage {
		return "cover image"
	}
	return "avatar"
}
