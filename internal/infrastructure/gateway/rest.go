package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// REST implements platform.Client over the platform's HTTP API. It carries
// only the calls the bridge needs: guild/channel/member queries and sink
// (webhook) management.
type REST struct {
	base   string
	token  string
	client *http.Client
}

// NewRESTFromEnv constructs a REST client from PLATFORM_API_URL and BOT_TOKEN.
func NewRESTFromEnv() (*REST, error) {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("PLATFORM_API_URL")), "/")
	if base == "" {
		return nil, errors.New("gateway: PLATFORM_API_URL environment variable is not set")
	}
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return nil, errors.New("gateway: BOT_TOKEN environment variable is not set")
	}
	return &REST{
		base:   base,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Ensure interface compliance at compile time
var _ platform.Client = (*REST)(nil)

type wireGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IconURL     string `json:"icon_url"`
	MemberCount int    `json:"member_count"`
}

type wireChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type wireMember struct {
	wireUser
	Roles []wireRole `json:"roles"`
}

type wireWebhook struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
	URL     string `json:"url"`
}

func (r *REST) Guilds(ctx context.Context) ([]platform.Guild, error) {
	var raw []wireGuild
	if err := r.get(ctx, "/guilds", &raw); err != nil {
		return nil, err
	}
	out := make([]platform.Guild, 0, len(raw))
	for _, g := range raw {
		out = append(out, platform.Guild{ID: g.ID, Name: g.Name, IconURL: g.IconURL, MemberCount: g.MemberCount})
	}
	return out, nil
}

func (r *REST) Channels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	var raw []wireChannel
	if err := r.get(ctx, "/guilds/"+guildID+"/channels", &raw); err != nil {
		return nil, err
	}
	out := make([]platform.Channel, 0, len(raw))
	for _, c := range raw {
		out = append(out, platform.Channel{ID: c.ID, Name: c.Name, Type: c.Type, Category: c.Category})
	}
	return out, nil
}

func (r *REST) Member(ctx context.Context, guildID string, userID string) (platform.Member, error) {
	var raw wireMember
	if err := r.get(ctx, "/guilds/"+guildID+"/members/"+userID, &raw); err != nil {
		return platform.Member{}, err
	}
	return platform.Member{User: toUser(raw.wireUser), Roles: toRoles(raw.Roles)}, nil
}

func (r *REST) Sinks(ctx context.Context, channelID string) ([]platform.Sink, error) {
	var raw []wireWebhook
	if err := r.get(ctx, "/channels/"+channelID+"/webhooks", &raw); err != nil {
		return nil, err
	}
	out := make([]platform.Sink, 0, len(raw))
	for _, wh := range raw {
		out = append(out, newWebhookSink(wh, r.client))
	}
	return out, nil
}

func (r *REST) CreateSink(ctx context.Context, channelID string, name string) (platform.Sink, error) {
	var created wireWebhook
	if err := r.post(ctx, "/channels/"+channelID+"/webhooks", map[string]string{"name": name}, &created); err != nil {
		return nil, err
	}
	return newWebhookSink(created, r.client), nil
}

func (r *REST) get(ctx context.Context, path string, out interface{}) error {
	return r.do(ctx, http.MethodGet, path, nil, out)
}

func (r *REST) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return r.do(ctx, http.MethodPost, path, body, out)
}

func (r *REST) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+path, &buf)
	if err != nil {
		return fmt.Errorf("gateway: request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bot "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return platform.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("gateway: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}
