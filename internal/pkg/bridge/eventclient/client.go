// Package eventclient owns the single gateway connection and the goroutine
// that is allowed to drive it. Inbound messages are enriched and appended to
// the message cache; dispatched tasks from synchronous callers execute on
// the same goroutine between events.
package eventclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/dispatch"
	bridge "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/domain"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// State is the connection lifecycle of the event client.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateFailed // terminal: credentials rejected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

const everyoneRole = "@everyone"

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = time.Minute
)

// CommandHandler receives every cached inbound message for downstream
// command processing. It runs on the event-loop goroutine and must not block.
type CommandHandler func(m bridge.Message)

// Client runs the event loop. All mutable status fields are read through
// atomics so request handlers never block on the loop.
type Client struct {
	gateway    platform.Gateway
	dispatcher *dispatch.Dispatcher
	cache      *cache.MessageCache
	onCommand  CommandHandler

	httpClient *http.Client

	state      atomic.Int32
	guildCount atomic.Int64

	mu        sync.RWMutex
	self      platform.User
	startedAt time.Time

	// reconnect backoff bounds; shrunk in tests.
	baseDelay time.Duration
	maxDelay  time.Duration
}

// New constructs a Client around the given gateway, dispatcher and cache.
// onCommand may be nil.
func New(gw platform.Gateway, d *dispatch.Dispatcher, mc *cache.MessageCache, onCommand CommandHandler) *Client {
	return &Client{
		gateway:    gw,
		dispatcher: d,
		cache:      mc,
		onCommand:  onCommand,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseDelay:  reconnectBaseDelay,
		maxDelay:   reconnectMaxDelay,
	}
}

// Run connects the gateway and drives the event loop until the context is
// canceled or the credential is rejected. Dropped sessions and transient
// dial failures are retried with exponential backoff; only an auth
// rejection is terminal. It must be the only goroutine that touches the
// gateway after Connect.
func (c *Client) Run(ctx context.Context) error {
	delay := c.baseDelay

	for {
		c.setState(StateConnecting)
		if err := c.gateway.Connect(ctx); err != nil {
			if errors.Is(err, platform.ErrAuthRejected) {
				c.setState(StateFailed)
				return fmt.Errorf("eventclient: connect: %w", err)
			}
			if ctx.Err() != nil {
				c.setState(StateDisconnected)
				return ctx.Err()
			}
			logger.Warn("gateway connect failed",
				zap.Duration("retry_in", delay), zap.Error(err))
			if err := sleep(ctx, delay); err != nil {
				c.setState(StateDisconnected)
				return err
			}
			delay = nextDelay(delay, c.maxDelay)
			continue
		}
		delay = c.baseDelay

		reconnect, err := c.session(ctx)
		if !reconnect {
			return err
		}
		c.setState(StateConnecting)
		if err := sleep(ctx, delay); err != nil {
			c.setState(StateDisconnected)
			return err
		}
		delay = nextDelay(delay, c.maxDelay)
	}
}

// session drains one gateway session. It reports reconnect=true when the
// session ended for a retryable reason (dropped connection, closed stream).
func (c *Client) session(ctx context.Context) (reconnect bool, err error) {
	for {
		select {
		case <-ctx.Done():
			c.setState(StateDisconnected)
			_ = c.gateway.Close()
			return false, ctx.Err()

		case ev, ok := <-c.gateway.Events():
			if !ok {
				logger.Warn("gateway stream closed, reconnecting")
				return true, nil
			}
			done, err := c.handleEvent(ctx, ev)
			if err != nil {
				return false, err
			}
			if done {
				return true, nil
			}

		case inv := <-c.dispatcher.Queue():
			inv.Run(ctx)
		}
	}
}

// handleEvent processes one gateway event. done=true asks for a reconnect;
// a non-nil error ends the run loop.
func (c *Client) handleEvent(ctx context.Context, ev platform.Event) (done bool, err error) {
	switch e := ev.(type) {
	case platform.ReadyEvent:
		c.mu.Lock()
		c.self = e.Self
		c.startedAt = time.Now()
		c.mu.Unlock()
		c.guildCount.Store(int64(e.GuildCount))
		c.setState(StateReady)
		logger.Info("gateway session ready",
			zap.String("user", e.Self.Username),
			zap.Int("guilds", e.GuildCount))

	case platform.MessageEvent:
		c.handleMessage(ctx, e)

	case platform.DisconnectEvent:
		if e.Fatal {
			c.setState(StateFailed)
			logger.Error("gateway rejected credentials", zap.Error(e.Err))
			return false, fmt.Errorf("eventclient: fatal disconnect: %w", e.Err)
		}
		logger.Warn("gateway disconnected, reconnecting", zap.Error(e.Err))
		return true, nil
	}
	return false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func nextDelay(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}

func (c *Client) handleMessage(ctx context.Context, e platform.MessageEvent) {
	// Never cache the bridge's own output; sinks post under our identity and
	// would otherwise feed back into the stream.
	if self := c.SelfID(); self != "" && e.Author.ID == self {
		return
	}

	m := bridge.Message{
		ID:        e.ID,
		Content:   e.Content,
		Timestamp: e.Timestamp,
		ChannelID: e.ChannelID,
		Author: bridge.Author{
			ID:          e.Author.ID,
			Username:    e.Author.Username,
			DisplayName: e.Author.DisplayName,
			// Best-effort: a failed fetch leaves the avatar nil.
			AvatarBase64: fetchAvatarBase64(ctx, c.httpClient, e.Author.AvatarURL),
			Roles:        filterRoles(e.Author.Roles),
		},
	}
	if e.GuildID != "" {
		gid := e.GuildID
		m.GuildID = &gid
	}

	c.cache.Append(e.ChannelID, m)

	if c.onCommand != nil {
		c.onCommand(m)
	}
}

// filterRoles drops the implicit everyone pseudo-role and converts to the
// domain shape.
func filterRoles(roles []platform.Role) []bridge.Role {
	out := make([]bridge.Role, 0, len(roles))
	for _, r := range roles {
		if r.Name == everyoneRole {
			continue
		}
		out = append(out, bridge.Role{ID: r.ID, Name: r.Name, Color: r.Color})
	}
	return out
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Ready reports whether the gateway session is established.
func (c *Client) Ready() bool {
	return c.State() == StateReady
}

// Latency reports the gateway heartbeat round trip.
func (c *Client) Latency() time.Duration {
	return c.gateway.Latency()
}

// GuildCount reports the number of guilds from the last ready event.
func (c *Client) GuildCount() int {
	return int(c.guildCount.Load())
}

// SelfID is the platform user ID of the bridge account, empty before ready.
func (c *Client) SelfID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.self.ID
}

// Self returns the bridge account identity from the last ready event.
func (c *Client) Self() platform.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.self
}

// StartedAt is when the current session became ready; zero before then.
func (c *Client) StartedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedAt
}
