package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// RegenerateQuickCodeUseCase replaces the user's quick code with a fresh
// unique one, invalidating the previous code immediately.
type RegenerateQuickCodeUseCase struct {
	Repo repository.UserRepository
}

func NewRegenerateQuickCodeUseCase(repo repository.UserRepository) *RegenerateQuickCodeUseCase {
	return &RegenerateQuickCodeUseCase{Repo: repo}
}

func (uc *RegenerateQuickCodeUseCase) Execute(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}

	code, err := uniqueQuickCode(ctx, uc.Repo)
	if err != nil {
		return "", err
	}

	if err := uc.Repo.UpdateQuickCode(ctx, username, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return code, nil
}
