package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) CreateUser(ctx context.Context, u auth.User) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgUserRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, quick_code, avatar_base64, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text
	`, u.Email, u.Username, u.PasswordHash, u.QuickCode, u.AvatarBase64, u.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgUserRepository) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.findUser(ctx, "username = $1", username)
}

func (r *PgUserRepository) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findUser(ctx, "email = $1", email)
}

func (r *PgUserRepository) FindUserByQuickCode(ctx context.Context, code string) (*auth.User, error) {
	return r.findUser(ctx, "quick_code = $1", code)
}

func (r *PgUserRepository) findUser(ctx context.Context, where string, arg string) (*auth.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var u auth.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, username, password_hash, quick_code, avatar_base64, created_at
		FROM users
		WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.QuickCode, &u.AvatarBase64, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) UpdateQuickCode(ctx context.Context, username string, code string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE users SET quick_code = $2 WHERE username = $1",
		username, code,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) UpdateAvatar(ctx context.Context, username string, avatarBase64 *string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE users SET avatar_base64 = $2 WHERE username = $1",
		username, avatarBase64,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) UpsertPending(ctx context.Context, p auth.PendingVerification) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pending_verifications (email, username, password_hash, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email)
		DO UPDATE SET username = EXCLUDED.username,
		              password_hash = EXCLUDED.password_hash,
		              code = EXCLUDED.code,
		              expires_at = EXCLUDED.expires_at
	`, p.Email, p.Username, p.PasswordHash, p.Code, p.ExpiresAt)
	return err
}

func (r *PgUserRepository) FindPendingByEmail(ctx context.Context, email string) (*auth.PendingVerification, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var p auth.PendingVerification
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, username, password_hash, code, expires_at
		FROM pending_verifications
		WHERE email = $1
	`, email).Scan(&p.ID, &p.Email, &p.Username, &p.PasswordHash, &p.Code, &p.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgUserRepository) DeletePending(ctx context.Context, email string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM pending_verifications WHERE email = $1", email)
	return err
}
