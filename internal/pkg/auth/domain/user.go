package auth

import "time"

// User is a verified account allowed to invoke bridge operations.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	QuickCode    string    `db:"quick_code"`
	AvatarBase64 *string   `db:"avatar_base64"`
	CreatedAt    time.Time `db:"created_at"`
}

// PendingVerification is a time-limited unverified registration attempt.
// At most one live record exists per email; a new attempt replaces it.
type PendingVerification struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Code         string    `db:"code"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Expired reports whether the record is past its verification window.
func (p PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Session is a bearer credential issued on login or verification. Expiry is
// fixed at creation; access updates LastUsedAt only.
type Session struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Expired reports whether the session is past its expiry. A session is
// accepted up to and including ExpiresAt.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
