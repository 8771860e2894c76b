package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// SessionTTL is how long an issued session stays valid. Fixed from creation;
// access never extends it.
const SessionTTL = 7 * 24 * time.Hour

// VerificationTTL is the window in which a registration code can be redeemed.
const VerificationTTL = 15 * time.Minute

const quickCodeDigits = 6

// randomDigits returns n crypto-random ASCII digits.
func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random digits: %w", err)
	}
	for i, b := range buf {
		buf[i] = '0' + b%10
	}
	return string(buf), nil
}

// uniqueQuickCode generates a quick code no verified user currently holds.
// The 10^6 space makes collisions rare; a handful of retries is plenty.
func uniqueQuickCode(ctx context.Context, repo repository.UserRepository) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomDigits(quickCodeDigits)
		if err != nil {
			return "", err
		}
		_, err = repo.FindUserByQuickCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	return "", fmt.Errorf("%w: quick code space exhausted", ErrPersistence)
}

// issueSession creates and stores a bearer session for username.
func issueSession(ctx context.Context, store repository.SessionStore, username string, now time.Time) (*auth.Session, error) {
	s := auth.Session{
		Token:      uuid.NewString(),
		Username:   username,
		ExpiresAt:  now.Add(SessionTTL),
		LastUsedAt: now,
	}
	if err := store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &s, nil
}
