package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/infrastructure/db/memory"
)

var testTokenConfig = TokenConfig{
	AccessSecret:  "access-secret",
	AccessTTL:     time.Minute,
	RefreshSecret: "refresh-secret",
	RefreshTTL:    time.Hour,
}

func newTokenFixture(t *testing.T) (*TokenService, *memory.DB, *domain.User) {
	t.Helper()
	db := memory.New()
	user, err := db.Create(context.Background(), &domain.User{
		Username: "alice",
		Email:    "alice@x.com",
		FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewTokenService(db, testTokenConfig, zerolog.Nop()), db, user
}

func TestTokenService_IssueAndVerifyAccess(t *testing.T) {
	svc, db, user := newTokenFixture(t)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	id, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected identity %s, got %s", user.ID, id)
	}

	stored, _ := db.FindByID(ctx, user.ID)
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token not persisted on the user record")
	}
}

func TestTokenService_AccessTokenCarriesProfileClaims(t *testing.T) {
	svc, _, user := newTokenFixture(t)

	pair, err := svc.Issue(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(pair.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte(testTokenConfig.AccessSecret), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "alice" || claims.Email != "alice@x.com" || claims.TokenType != tokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_TokenClassesAreNotInterchangeable(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.VerifyAccess(pair.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := svc.VerifyRefresh(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestTokenService_VerifyAccess_Expired(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	base := time.Now()
	svc.now = func() time.Time { return base }

	pair, err := svc.Issue(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return base.Add(testTokenConfig.AccessTTL + time.Minute) }
	if _, err := svc.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := svc.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expired token must be unauthorized, got %v", err)
	}
}

func TestTokenService_VerifyAccess_Garbage(t *testing.T) {
	svc, _, _ := newTokenFixture(t)

	if _, err := svc.VerifyAccess("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := svc.VerifyAccess("  "); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestTokenService_VerifyAccess_WrongSecret(t *testing.T) {
	svc, db, user := newTokenFixture(t)
	other := NewTokenService(db, TokenConfig{AccessSecret: "other", RefreshSecret: "other"}, zerolog.Nop())

	pair, err := other.Issue(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Rotate_InvalidatesPreviousToken(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	second, err := svc.Rotate(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("rotation must produce a new refresh token")
	}

	if _, err := svc.Rotate(ctx, first.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on reuse, got %v", err)
	}

	if _, err := svc.Rotate(ctx, second.RefreshToken); err != nil {
		t.Fatalf("current refresh token should still rotate: %v", err)
	}
}

func TestTokenService_Revoke(t *testing.T) {
	svc, db, user := newTokenFixture(t)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, user.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	stored, _ := db.FindByID(ctx, user.ID)
	if stored.RefreshToken != "" {
		t.Fatalf("expected stored refresh token to be cleared")
	}
	if _, err := svc.Rotate(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after revoke, got %v", err)
	}
}

func TestTokenService_Issue_UnknownUser(t *testing.T) {
	svc, _, _ := newTokenFixture(t)

	if _, err := svc.Issue(context.Background(), "missing"); !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestTokenService_VerifyRefresh_UserGone(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	fresh := NewTokenService(memory.New(), testTokenConfig, zerolog.Nop())
	if _, err := fresh.VerifyRefresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

// lostRaceRepo simulates another request rotating the token between the
// check and the swap.
type lostRaceRepo struct {
	*memory.DB
}

func (r lostRaceRepo) SwapRefreshToken(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func TestTokenService_Rotate_LostRace(t *testing.T) {
	_, db, user := newTokenFixture(t)
	svc := NewTokenService(lostRaceRepo{db}, testTokenConfig, zerolog.Nop())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Rotate(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}
