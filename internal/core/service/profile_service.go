package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// ProfileService serves the channel profile and watch history read models.
type ProfileService struct {
	profiles ports.ProfileRepository
}

func NewProfileService(profiles ports.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}

	profile, err := s.profiles.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	return profile, nil
}

// WatchHistory never returns nil on success: a user without history gets an
// empty slice.
func (s *ProfileService) WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error) {
	videos, err := s.profiles.WatchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	if videos == nil {
		videos = []domain.WatchedVideo{}
	}
	return videos, nil
}
