package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// TokenPair is one access + refresh token issuance.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues, verifies, rotates and revokes session tokens.
type TokenService interface {
	Issue(ctx context.Context, userID string) (TokenPair, error)
	VerifyAccess(token string) (string, error)
	VerifyRefresh(ctx context.Context, token string) (string, error)
	Rotate(ctx context.Context, refreshToken string) (TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

// RegisterInput carries the registration form. AvatarPath and CoverImagePath
// point at staged local files; empty means the part was not sent.
type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

// AuthService covers registration and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}
