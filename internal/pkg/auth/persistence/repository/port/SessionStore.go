package repository

import (
	"context"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
)

// SessionStore persists issued sessions keyed by token. Expiry is checked by
// the caller, not the store: an expired session stays readable until the
// credential-store logic deletes it lazily on access.
type SessionStore interface {
	Save(ctx context.Context, s auth.Session) error
	Find(ctx context.Context, token string) (*auth.Session, error)
	Delete(ctx context.Context, token string) error
}
