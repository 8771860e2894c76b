package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// VerifyInput redeems a registration code.
type VerifyInput struct {
	Email string
	Code  string
}

// VerifyUseCase promotes a pending verification into a permanent user and
// issues a session. Codes are single-use: the pending record is deleted on
// success, so a replay fails like any other mismatch.
type VerifyUseCase struct {
	Repo     repository.UserRepository
	Sessions repository.SessionStore
	Now      func() time.Time
}

func NewVerifyUseCase(repo repository.UserRepository, sessions repository.SessionStore) *VerifyUseCase {
	return &VerifyUseCase{Repo: repo, Sessions: sessions, Now: time.Now}
}

func (uc *VerifyUseCase) Execute(ctx context.Context, in VerifyInput) (*auth.Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Code == "" {
		return nil, ErrInvalidOrExpiredCode
	}

	pending, err := uc.Repo.FindPendingByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if pending.Expired(uc.Now()) {
		// Expired attempts are deleted, never promoted.
		_ = uc.Repo.DeletePending(ctx, email)
		return nil, ErrInvalidOrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(in.Code)) != 1 {
		return nil, ErrInvalidOrExpiredCode
	}

	quickCode, err := uniqueQuickCode(ctx, uc.Repo)
	if err != nil {
		return nil, err
	}

	user := auth.User{
		Email:        pending.Email,
		Username:     pending.Username,
		PasswordHash: pending.PasswordHash,
		QuickCode:    quickCode,
		CreatedAt:    uc.Now(),
	}
	if _, err := uc.Repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := uc.Repo.DeletePending(ctx, email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return issueSession(ctx, uc.Sessions, user.Username, uc.Now())
}
