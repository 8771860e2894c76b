package repository

import (
	"context"
	"errors"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
)

// ErrNotFound reports a missing user or pending record in a typed way so
// usecases can tell absence apart from infrastructure failures.
var ErrNotFound = errors.New("repository: not found")

// UserRepository defines persistence operations for verified users and
// pending verifications. Implementations must be safe for concurrent use.
type UserRepository interface {
	CreateUser(ctx context.Context, u auth.User) (string, error)
	FindUserByUsername(ctx context.Context, username string) (*auth.User, error)
	FindUserByEmail(ctx context.Context, email string) (*auth.User, error)
	FindUserByQuickCode(ctx context.Context, code string) (*auth.User, error)
	UpdateQuickCode(ctx context.Context, username string, code string) error
	UpdateAvatar(ctx context.Context, username string, avatarBase64 *string) error

	// UpsertPending stores the attempt, replacing a prior live record for
	// the same email.
	UpsertPending(ctx context.Context, p auth.PendingVerification) error
	FindPendingByEmail(ctx context.Context, email string) (*auth.PendingVerification, error)
	DeletePending(ctx context.Context, email string) error
}
