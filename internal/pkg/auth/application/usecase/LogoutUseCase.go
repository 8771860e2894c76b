package usecase

import (
	"context"
	"fmt"

	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// LogoutUseCase deletes the session row for the token. Logging out an
// already-deleted token is a no-op.
type LogoutUseCase struct {
	Sessions repository.SessionStore
}

func NewLogoutUseCase(sessions repository.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{Sessions: sessions}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := uc.Sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
