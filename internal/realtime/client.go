package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/mehfilhq/mehfil/internal/domain"
	"github.com/mehfilhq/mehfil/internal/usecase"
)

// Publisher delivers a feed event to every member of the broadcast scope.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

const sendBufferSize = 32

var connSeq atomic.Uint64

// Client wraps one accepted websocket connection. Commands from a single
// connection are dispatched in arrival order by the read loop; outbound
// events are serialized through the send channel and written by the write
// loop alone.
type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan domain.Event
	done      chan struct{}
	closeOnce sync.Once

	hub       *Hub
	feed      *usecase.FeedUsecase
	publisher Publisher
}

func NewClient(conn *websocket.Conn, hub *Hub, feed *usecase.FeedUsecase, publisher Publisher) *Client {
	return &Client{
		id:        fmt.Sprintf("conn-%d", connSeq.Add(1)),
		conn:      conn,
		send:      make(chan domain.Event, sendBufferSize),
		done:      make(chan struct{}),
		hub:       hub,
		feed:      feed,
		publisher: publisher,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an event for this connection without blocking. Returns false
// when the connection is closing or its buffer is full.
func (c *Client) Send(event domain.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Close signals the write loop to drain queued events and shut the
// underlying connection. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Run pumps the connection until it closes: reads are dispatched from a
// spawned goroutine, writes happen on the calling goroutine.
func (c *Client) Run(ctx context.Context) {
	go c.readLoop(ctx)
	c.writeLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.hub.Unregister(c)

	for {
		var cmd domain.Command
		err := c.conn.ReadJSON(&cmd)
		if err != nil {

			wsErr, ok := err.(*websocket.CloseError)
			if ok {
				if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
					slog.DebugContext(
						ctx, "WebSocket closed",
						slog.String("error", wsErr.Error()),
						slog.String("connection", c.id),
						slog.String("module", "socket"),
					)
				}
			} else {
				select {
				case <-c.done:
					// closed on purpose, nothing to report
				default:
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("connection", c.id),
						slog.String("module", "socket"),
					)
				}
			}

			return
		}

		c.dispatch(ctx, cmd)
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.conn.Close()
			return
		case <-c.done:
			// flush whatever is queued, then close; the duplicate-session
			// notice rides this path
			for {
				select {
				case event := <-c.send:
					if err := c.conn.WriteJSON(event); err != nil {
						c.conn.Close()
						return
					}
				default:
					c.conn.Close()
					return
				}
			}
		case event := <-c.send:
			err := c.conn.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("connection", c.id),
					slog.String("module", "socket"),
				)
				c.hub.Unregister(c)
				return
			}
		}
	}
}

// dispatch routes one decoded command. Malformed commands are dropped after
// logging; nothing is echoed back to the caller (pending product sign-off
// on surfacing validation errors, see DESIGN.md).
func (c *Client) dispatch(ctx context.Context, cmd domain.Command) {
	switch cmd.Type {
	case domain.CmdHeartbeat:
		// keepalive, nothing to do

	case domain.CmdUserRegister:
		var payload domain.RegisterPayload
		if !c.decode(ctx, cmd, &payload) {
			return
		}
		c.handleRegister(ctx, payload)

	case domain.CmdThoughtsLoad:
		var payload domain.LoadPayload
		if !c.decode(ctx, cmd, &payload) {
			return
		}
		c.handleLoad(ctx, payload)

	case domain.CmdThoughtCreate:
		var payload domain.CreatePayload
		if !c.decode(ctx, cmd, &payload) {
			return
		}
		c.handleCreate(ctx, payload)

	case domain.CmdThoughtReact:
		var payload domain.ReactPayload
		if !c.decode(ctx, cmd, &payload) {
			return
		}
		c.handleReact(ctx, payload)

	case domain.CmdUserReactions:
		var payload domain.UserReactionsPayload
		if !c.decode(ctx, cmd, &payload) {
			return
		}
		c.handleUserReactions(ctx, payload)

	default:
		slog.InfoContext(
			ctx, "Unknown command type",
			slog.String("type", string(cmd.Type)),
			slog.String("connection", c.id),
			slog.String("module", "socket"),
		)
	}
}

func (c *Client) handleRegister(ctx context.Context, payload domain.RegisterPayload) {
	if payload.UserID == "" {
		slog.WarnContext(
			ctx, "Dropping register command without user id",
			slog.String("connection", c.id),
			slog.String("module", "socket"),
		)
		return
	}

	evicted := c.hub.registry.Register(payload.UserID, c)
	if evicted != nil {
		evicted.Send(domain.Event{
			Type: domain.EventSessionDuplicate,
			Payload: domain.DuplicateSession{
				Message: "Your account connected from another session. This connection will be closed.",
			},
		})
		evicted.Close()

		slog.InfoContext(
			ctx, "Evicted duplicate session",
			slog.String("userId", payload.UserID),
			slog.String("old", evicted.ID()),
			slog.String("new", c.id),
			slog.String("module", "socket"),
		)
	}
}

func (c *Client) handleLoad(ctx context.Context, payload domain.LoadPayload) {
	thoughts, err := c.feed.List(ctx, payload.Limit, payload.Offset)
	if err != nil {
		// degrade to an empty page, the feed stays available
		slog.ErrorContext(
			ctx, "Failed to load thoughts",
			slog.String("error", err.Error()),
			slog.String("connection", c.id),
			slog.String("module", "socket"),
		)
		thoughts = []domain.Thought{}
	}
	if thoughts == nil {
		thoughts = []domain.Thought{}
	}

	c.Send(domain.Event{Type: domain.EventThoughtsList, Payload: thoughts})
}

func (c *Client) handleCreate(ctx context.Context, payload domain.CreatePayload) {
	thought, err := c.feed.Create(ctx, usecase.CreateThoughtInput{
		UserID:       payload.UserID,
		AuthorName:   payload.AuthorName,
		AuthorAvatar: payload.AuthorAvatar,
		Content:      payload.Content,
		ImageURL:     payload.ImageURL,
	})
	if err != nil {
		c.logCommandFailure(ctx, "create thought", err)
		return
	}

	c.broadcast(ctx, domain.Event{Type: domain.EventThoughtNew, Payload: thought})
}

func (c *Client) handleReact(ctx context.Context, payload domain.ReactPayload) {
	count, err := c.feed.ToggleReaction(ctx, payload.ThoughtID, payload.UserID)
	if err != nil {
		c.logCommandFailure(ctx, "toggle reaction", err)
		return
	}

	c.broadcast(ctx, domain.Event{
		Type: domain.EventReactionUpdated,
		Payload: domain.ReactionUpdate{
			ThoughtID:      payload.ThoughtID,
			RelatableCount: count,
		},
	})
}

func (c *Client) handleUserReactions(ctx context.Context, payload domain.UserReactionsPayload) {
	ids, err := c.feed.UserReactions(ctx, payload.UserID, payload.ThoughtIDs)
	if err != nil {
		slog.ErrorContext(
			ctx, "Failed to look up user reactions",
			slog.String("error", err.Error()),
			slog.String("connection", c.id),
			slog.String("module", "socket"),
		)
		ids = []string{}
	}

	c.Send(domain.Event{Type: domain.EventUserReactions, Payload: ids})
}

func (c *Client) broadcast(ctx context.Context, event domain.Event) {
	err := c.publisher.Publish(ctx, event)
	if err != nil {
		slog.ErrorContext(
			ctx, "Failed to publish feed event",
			slog.String("error", err.Error()),
			slog.String("event", string(event.Type)),
			slog.String("module", "socket"),
		)
	}
}

func (c *Client) decode(ctx context.Context, cmd domain.Command, v any) bool {
	err := json.Unmarshal(cmd.Payload, v)
	if err != nil {
		slog.WarnContext(
			ctx, "Dropping malformed command payload",
			slog.String("type", string(cmd.Type)),
			slog.String("error", err.Error()),
			slog.String("connection", c.id),
			slog.String("module", "socket"),
		)
		return false
	}
	return true
}

func (c *Client) logCommandFailure(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	// validation failures are dropped quietly, persistence failures are loud;
	// neither reaches the client and no broadcast fires
	level := slog.LevelError
	if errors.Is(err, domain.ErrValidation) {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, fmt.Sprintf("Failed to %s", op),
		slog.String("error", err.Error()),
		slog.String("connection", c.id),
		slog.String("module", "socket"),
	)
}
