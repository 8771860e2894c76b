package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	qport "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/port"
	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/task"
	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// RegisterInput carries a new registration attempt.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// RegisterUseCase stores a pending verification and enqueues the code email.
// A repeat attempt for the same email replaces the prior pending record.
// Hexagonal: depends on repository and queue ports only.
type RegisterUseCase struct {
	Repo  repository.UserRepository
	Queue qport.Client
	Now   func() time.Time
}

func NewRegisterUseCase(repo repository.UserRepository, queue qport.Client) *RegisterUseCase {
	return &RegisterUseCase{Repo: repo, Queue: queue, Now: time.Now}
}

// Execute validates the attempt, rejects identifiers taken by verified
// users, and stores the pending record before enqueueing delivery so a
// failed enqueue never loses the code.
func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("a valid email is required")
	}
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	if len(in.Password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := uc.Repo.FindUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if _, err := uc.Repo.FindUserByUsername(ctx, username); err == nil {
		return "", ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	code, err := randomDigits(quickCodeDigits)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	pending := auth.PendingVerification{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Code:         code,
		ExpiresAt:    uc.Now().Add(VerificationTTL),
	}
	if err := uc.Repo.UpsertPending(ctx, pending); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	payload, err := json.Marshal(task.SendVerificationEmailPayload{
		Email:    email,
		Username: username,
		Code:     code,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The pending record survives an enqueue failure: the attempt stays
	// redeemable and a re-register resends without losing state.
	if _, err := uc.Queue.Enqueue(ctx, qport.Task{
		Type:    task.SendVerificationEmailTaskType,
		Payload: payload,
	}, qport.EnqueueOption{Queue: "mail", MaxRetry: 10}); err != nil {
		return "", fmt.Errorf("%w: enqueue verification email: %v", ErrPersistence, err)
	}

	return pending.Email, nil
}
