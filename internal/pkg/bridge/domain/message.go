package bridge

import "time"

// Role is a platform role held by a message author. The implicit everyone
// pseudo-role is filtered out before a Role list is built.
type Role struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Author identifies who wrote a message, enriched best-effort with an avatar.
type Author struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	DisplayName  string  `json:"display_name"`
	AvatarBase64 *string `json:"avatar_base64"`
	Roles        []Role  `json:"roles"`
}

// Message is an immutable record of one inbound platform message. Once
// appended to the message cache it is never mutated.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	ChannelID string    `json:"channel_id"`
	GuildID   *string   `json:"guild_id"`
}
