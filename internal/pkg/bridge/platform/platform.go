// Package platform defines the ports through which the bridge talks to the
// chat platform. The wire protocol behind them is an external concern; the
// bridge only depends on these contracts.
package platform

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports an unknown guild, channel or member.
var ErrNotFound = errors.New("platform: not found")

// ErrAuthRejected reports that the platform refused the bridge credential.
// Unlike transient dial or network failures, it must not be retried.
var ErrAuthRejected = errors.New("platform: credentials rejected")

// User is the platform identity of an account.
type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Bot         bool
}

// Role is a named role within a guild.
type Role struct {
	ID    string
	Name  string
	Color string
}

// Member is a user seen through a guild, carrying its role list. The role
// list may include the implicit everyone role; consumers filter it.
type Member struct {
	User
	Roles []Role
}

// Guild is a server the bridge account belongs to.
type Guild struct {
	ID          string
	Name        string
	IconURL     string
	MemberCount int
}

// Channel is a text channel within a guild.
type Channel struct {
	ID       string
	Name     string
	Type     string
	Category string
}

// Event is a tagged union of gateway events. Exactly one of the concrete
// types below is delivered per event.
type Event interface{ isEvent() }

// ReadyEvent is delivered once the gateway session is established.
type ReadyEvent struct {
	Self       User
	GuildCount int
}

// MessageEvent is delivered for every message posted in a channel the
// bridge account can read, including messages the bridge posted itself.
type MessageEvent struct {
	ID        string
	Content   string
	Author    Member
	ChannelID string
	GuildID   string
	Timestamp time.Time
}

// DisconnectEvent is delivered when the gateway connection drops. Fatal
// disconnects (rejected credentials) must not be retried.
type DisconnectEvent struct {
	Err   error
	Fatal bool
}

func (ReadyEvent) isEvent()      {}
func (MessageEvent) isEvent()    {}
func (DisconnectEvent) isEvent() {}

// Gateway is the long-lived event stream connection.
type Gateway interface {
	// Connect establishes a session. It returns once the transport is up;
	// events (including the initial ReadyEvent) arrive on Events. After a
	// disconnect Connect may be called again for a fresh session; a
	// credential rejection is reported as ErrAuthRejected.
	Connect(ctx context.Context) error

	// Events returns the event stream of the current session. The channel
	// is closed when the session ends; a later Connect supplies a new one.
	Events() <-chan Event

	// Latency reports the most recent heartbeat round-trip time.
	Latency() time.Duration

	Close() error
}

// SinkMessage is an outbound post made through a sink under an impersonated
// display identity.
type SinkMessage struct {
	Content      string
	Username     string
	AvatarBase64 string
}

// Sink is an outbound-post handle bound to one channel. The platform may
// hold several sinks per channel owned by different accounts.
type Sink interface {
	// OwnerID is the platform user ID of the account that created the sink.
	OwnerID() string

	Post(ctx context.Context, m SinkMessage) error
}

// Client exposes the platform query and sink-management surface consumed by
// the synchronous API. Implementations must be safe for concurrent use.
type Client interface {
	Guilds(ctx context.Context) ([]Guild, error)
	Channels(ctx context.Context, guildID string) ([]Channel, error)
	Member(ctx context.Context, guildID string, userID string) (Member, error)
	Sinks(ctx context.Context, channelID string) ([]Sink, error)
	CreateSink(ctx context.Context, channelID string, name string) (Sink, error)
}
