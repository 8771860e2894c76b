package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// webhookSink posts into a channel through a platform webhook under an
// impersonated display identity.
type webhookSink struct {
	id      string
	ownerID string
	url     string
	client  *http.Client
}

func newWebhookSink(wh wireWebhook, client *http.Client) *webhookSink {
	return &webhookSink{id: wh.ID, ownerID: wh.OwnerID, url: wh.URL, client: client}
}

// Ensure interface compliance at compile time
var _ platform.Sink = (*webhookSink)(nil)

func (s *webhookSink) OwnerID() string { return s.ownerID }

type webhookPost struct {
	Content      string `json:"content"`
	Username     string `json:"username,omitempty"`
	AvatarBase64 string `json:"avatar_base64,omitempty"`
}

func (s *webhookSink) Post(ctx context.Context, m platform.SinkMessage) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(webhookPost{
		Content:      m.Content,
		Username:     m.Username,
		AvatarBase64: m.AvatarBase64,
	}); err != nil {
		return fmt.Errorf("sink %s: encode: %w", s.id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &buf)
	if err != nil {
		return fmt.Errorf("sink %s: request: %w", s.id, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink %s: post: %w", s.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sink %s: post: unexpected status %d", s.id, resp.StatusCode)
	}
	return nil
}
