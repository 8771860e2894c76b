package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// AuthenticateInput carries either credential form; Token wins when both are
// present.
type AuthenticateInput struct {
	Token     string
	QuickCode string
}

// AuthenticateUseCase resolves a bearer token or quick code to a session.
// A nil session with a nil error means "not authenticated"; errors are
// reserved for infrastructure failures.
type AuthenticateUseCase struct {
	Repo     repository.UserRepository
	Sessions repository.SessionStore
	Now      func() time.Time
}

func NewAuthenticateUseCase(repo repository.UserRepository, sessions repository.SessionStore) *AuthenticateUseCase {
	return &AuthenticateUseCase{Repo: repo, Sessions: sessions, Now: time.Now}
}

func (uc *AuthenticateUseCase) Execute(ctx context.Context, in AuthenticateInput) (*auth.Session, error) {
	if in.Token != "" {
		return uc.byToken(ctx, in.Token)
	}
	if in.QuickCode != "" {
		return uc.byQuickCode(ctx, in.QuickCode)
	}
	return nil, nil
}

func (uc *AuthenticateUseCase) byToken(ctx context.Context, token string) (*auth.Session, error) {
	sess, err := uc.Sessions.Find(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := uc.Now()
	if sess.Expired(now) {
		// Lazy cleanup: expired sessions are removed on first access.
		_ = uc.Sessions.Delete(ctx, token)
		return nil, nil
	}

	// Access touches LastUsedAt only; ExpiresAt stays fixed from creation.
	sess.LastUsedAt = now
	if err := uc.Sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return sess, nil
}

func (uc *AuthenticateUseCase) byQuickCode(ctx context.Context, code string) (*auth.Session, error) {
	user, err := uc.Repo.FindUserByQuickCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Quick codes have no expiry; the synthesized session is not persisted
	// and carries no bearer token.
	return &auth.Session{
		Username:   user.Username,
		LastUsedAt: uc.Now(),
	}, nil
}
