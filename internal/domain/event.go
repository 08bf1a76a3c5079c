package domain

import "encoding/json"

// CommandType is the closed set of client-to-server command tags. The
// dispatcher switches on these; free-form strings never reach handlers.
type CommandType string

const (
	CmdUserRegister  CommandType = "user:register"
	CmdThoughtsLoad  CommandType = "thoughts:load"
	CmdThoughtCreate CommandType = "thought:create"
	CmdThoughtReact  CommandType = "thought:react"
	CmdUserReactions CommandType = "thoughts:get_user_reactions"
	CmdHeartbeat     CommandType = "h"
)

// EventType is the closed set of server-to-client event tags.
type EventType string

const (
	EventThoughtsList     EventType = "thoughts:list"
	EventThoughtNew       EventType = "thought:new"
	EventReactionUpdated  EventType = "thought:reaction_updated"
	EventUserReactions    EventType = "thoughts:user_reactions"
	EventSessionDuplicate EventType = "session:duplicate"
)

// Command is the wire envelope for client commands. Payload stays raw until
// the dispatcher knows which shape to decode it into.
type Command struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Event is the wire envelope for everything the server emits, both direct
// responses and room broadcasts.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type RegisterPayload struct {
	UserID string `json:"userId"`
}

type LoadPayload struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type CreatePayload struct {
	UserID       string  `json:"userId"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar"`
	Content      string  `json:"content"`
	ImageURL     *string `json:"imageUrl"`
}

type ReactPayload struct {
	ThoughtID string `json:"thoughtId"`
	UserID    string `json:"userId"`
}

type UserReactionsPayload struct {
	UserID     string   `json:"userId"`
	ThoughtIDs []string `json:"thoughtIds"`
}

// ReactionUpdate is broadcast after a toggle with the re-read counter value.
type ReactionUpdate struct {
	ThoughtID      string `json:"thoughtId"`
	RelatableCount int64  `json:"relatableCount"`
}

// DuplicateSession is sent to the superseded connection before it is closed.
type DuplicateSession struct {
	Message string `json:"message"`
}
