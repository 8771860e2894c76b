package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// LoginInput carries a password login attempt. The identifier may be either
// a username or an email address.
type LoginInput struct {
	UsernameOrEmail string
	Password        string
}

// LoginUseCase checks the credential and issues a session. Every mismatch
// fails with the same ErrInvalidCredentials.
type LoginUseCase struct {
	Repo     repository.UserRepository
	Sessions repository.SessionStore
	Now      func() time.Time
}

func NewLoginUseCase(repo repository.UserRepository, sessions repository.SessionStore) *LoginUseCase {
	return &LoginUseCase{Repo: repo, Sessions: sessions, Now: time.Now}
}

func (uc *LoginUseCase) Execute(ctx context.Context, in LoginInput) (*auth.Session, error) {
	ident := strings.TrimSpace(in.UsernameOrEmail)
	if ident == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := uc.Repo.FindUserByUsername(ctx, ident)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = uc.Repo.FindUserByEmail(ctx, strings.ToLower(ident))
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return issueSession(ctx, uc.Sessions, user.Username, uc.Now())
}
