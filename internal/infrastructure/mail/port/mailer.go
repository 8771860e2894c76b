package port

import "context"

// Mailer delivers plain-text mail to a single recipient. Implementations must
// be safe for concurrent use; delivery is best-effort and callers decide
// whether a failure is retried.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}
