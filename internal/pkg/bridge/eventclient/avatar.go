package eventclient

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
)

// maxAvatarBytes caps the avatar payload; platform avatars are small, and a
// misbehaving upstream must not bloat the message cache.
const maxAvatarBytes = 1 << 20

// fetchAvatarBase64 downloads the avatar at url and returns it base64
// encoded. Any failure yields nil: enrichment is best-effort and never
// aborts caching of the message.
func fetchAvatarBase64(ctx context.Context, client *http.Client, url string) *string {
	if url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("avatar fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		logger.Warn("avatar read failed", zap.String("url", url), zap.Error(err))
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return &encoded
}
