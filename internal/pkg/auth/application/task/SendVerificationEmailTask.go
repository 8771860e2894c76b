package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mailport "github.com/sparxmathsalternative/damnis/internal/infrastructure/mail/port"
	qport "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/port"
)

// SendVerificationEmailTaskType is the queue task name for delivering a
// registration verification code.
const SendVerificationEmailTaskType = "auth:send_verification"

// SendVerificationEmailPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type SendVerificationEmailPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Code     string `json:"code"`
}

// RegisterSendVerificationEmailTask binds the task handler to the provided
// server. A returned error signals retry per the queue adapter's policy; the
// pending verification record is untouched either way, so delivery failures
// stay recoverable.
func RegisterSendVerificationEmailTask(srv qport.Server, mailer mailport.Mailer) {
	srv.Register(SendVerificationEmailTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendVerificationEmailPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			return err
		}

		body := fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. It expires in 15 minutes.\n",
			p.Username, p.Code,
		)

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		return mailer.Send(ctx, p.Email, "Your verification code", body)
	})
}
