// Package gateway implements the platform ports over the platform's real
// transports: a websocket event stream and a REST surface for queries and
// sink management.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	readWait   = 60 * time.Second

	// closeAuthFailed is the close code the platform sends when the bot
	// credential is rejected; reconnecting would loop forever.
	closeAuthFailed = 4004
)

// Gateway is the websocket event-stream connection. It satisfies
// platform.Gateway: each Connect dials a fresh session whose reader
// goroutine decodes frames into a new events channel, so the owner can
// reconnect after a dropped session by calling Connect again.
type Gateway struct {
	url   string
	token string

	mu     sync.Mutex
	ws     *websocket.Conn
	events chan platform.Event

	latencyNS atomic.Int64
	pingSent  atomic.Int64

	shutdown chan struct{}
	once     sync.Once
}

// NewGatewayFromEnv constructs a Gateway from GATEWAY_URL and BOT_TOKEN.
func NewGatewayFromEnv() (*Gateway, error) {
	url := strings.TrimSpace(os.Getenv("GATEWAY_URL"))
	if url == "" {
		return nil, errors.New("gateway: GATEWAY_URL environment variable is not set")
	}
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return nil, errors.New("gateway: BOT_TOKEN environment variable is not set")
	}
	return &Gateway{
		url:      url,
		token:    token,
		shutdown: make(chan struct{}),
	}, nil
}

// Ensure interface compliance at compile time
var _ platform.Gateway = (*Gateway)(nil)

// Connect dials the gateway and starts the read and keepalive loops for a
// new session. A rejected credential surfaces as platform.ErrAuthRejected;
// any other dial failure is transient and may be retried.
func (g *Gateway) Connect(ctx context.Context) error {
	select {
	case <-g.shutdown:
		return errors.New("gateway: closed")
	default:
	}

	header := http.Header{}
	header.Set("Authorization", "Bot "+g.token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, g.url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("gateway: %w: %v", platform.ErrAuthRejected, err)
		}
		return fmt.Errorf("gateway: dial: %w", err)
	}

	ws.SetReadLimit(1 << 20)
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		if sent := g.pingSent.Load(); sent > 0 {
			g.latencyNS.Store(time.Now().UnixNano() - sent)
		}
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})

	events := make(chan platform.Event, 128)
	g.mu.Lock()
	g.ws = ws
	g.events = events
	g.mu.Unlock()

	go g.readLoop(ws, events)
	go g.pingLoop(ws)
	return nil
}

// Events returns the event stream of the current session; nil before the
// first Connect.
func (g *Gateway) Events() <-chan platform.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.events
}

// Latency reports the last measured ping round trip.
func (g *Gateway) Latency() time.Duration {
	return time.Duration(g.latencyNS.Load())
}

// Close tears down the current connection and prevents further Connects;
// the events channel is closed by the read loop once the transport is gone.
func (g *Gateway) Close() error {
	g.once.Do(func() {
		close(g.shutdown)
		g.mu.Lock()
		ws := g.ws
		g.mu.Unlock()
		if ws != nil {
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
				time.Now().Add(writeWait))
			_ = ws.Close()
		}
	})
	return nil
}

// frame is the envelope of every gateway event.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type readyPayload struct {
	User       wireUser `json:"user"`
	GuildCount int      `json:"guild_count"`
}

type wireUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bot         bool   `json:"bot"`
}

type wireRole struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type messagePayload struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    wireUser   `json:"author"`
	Roles     []wireRole `json:"roles"`
	ChannelID string     `json:"channel_id"`
	GuildID   string     `json:"guild_id"`
	Timestamp time.Time  `json:"timestamp"`
}

// readLoop decodes frames from one session's connection into its events
// channel and closes the channel when the session ends.
func (g *Gateway) readLoop(ws *websocket.Conn, events chan platform.Event) {
	defer close(events)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			_ = ws.Close()
			select {
			case <-g.shutdown:
				return // deliberate shutdown, no disconnect event
			default:
			}
			fatal := websocket.IsCloseError(err, closeAuthFailed)
			events <- platform.DisconnectEvent{Err: err, Fatal: fatal}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Warn("gateway: undecodable frame", zap.Error(err))
			continue
		}

		switch f.Type {
		case "ready":
			var p readyPayload
			if err := json.Unmarshal(f.Data, &p); err != nil {
				logger.Warn("gateway: bad ready payload", zap.Error(err))
				continue
			}
			events <- platform.ReadyEvent{
				Self:       toUser(p.User),
				GuildCount: p.GuildCount,
			}

		case "message_create":
			var p messagePayload
			if err := json.Unmarshal(f.Data, &p); err != nil {
				logger.Warn("gateway: bad message payload", zap.Error(err))
				continue
			}
			events <- platform.MessageEvent{
				ID:        p.ID,
				Content:   p.Content,
				Author:    platform.Member{User: toUser(p.Author), Roles: toRoles(p.Roles)},
				ChannelID: p.ChannelID,
				GuildID:   p.GuildID,
				Timestamp: p.Timestamp,
			}

		default:
			// Unknown event types are skipped so protocol additions do not
			// break older bridges.
		}
	}
}

// pingLoop keeps one session's connection alive; it exits when the write
// fails, which happens as soon as the connection is gone.
func (g *Gateway) pingLoop(ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-g.shutdown:
			return
		case <-ticker.C:
			g.pingSent.Store(time.Now().UnixNano())
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toUser(u wireUser) platform.User {
	return platform.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bot:         u.Bot,
	}
}

func toRoles(roles []wireRole) []platform.Role {
	out := make([]platform.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, platform.Role{ID: r.ID, Name: r.Name, Color: r.Color})
	}
	return out
}
