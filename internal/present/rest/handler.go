package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mehfilhq/mehfil/internal/config"
	"github.com/mehfilhq/mehfil/internal/present/rest/presenter"
	"github.com/mehfilhq/mehfil/internal/realtime"
	"github.com/mehfilhq/mehfil/internal/usecase"
)

type Handler struct {
	config    config.Server
	hub       *realtime.Hub
	feed      *usecase.FeedUsecase
	publisher realtime.Publisher
}

func NewHandler(
	config config.Server,
	hub *realtime.Hub,
	feed *usecase.FeedUsecase,
	publisher realtime.Publisher,
) *Handler {
	return &Handler{
		config:    config,
		hub:       hub,
		feed:      feed,
		publisher: publisher,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/realtime", h.handleRealtime)
	e.GET("/health", h.handleHealth)
	e.GET("/stats", h.handleStats)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime admits a connection against the capacity ceiling, upgrades
// it, and runs its pumps until disconnect. Rejection happens before the
// handshake completes, so an over-capacity attempt never reaches a handler.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.hub.Len() >= h.config.MaxConnections {
		slog.Warn(
			"Rejecting connection over capacity",
			slog.Int("live", h.hub.Len()),
			slog.Int("ceiling", h.config.MaxConnections),
			slog.String("module", "socket"),
		)
		return presenter.ServiceUnavailable(c, "server is at connection capacity, please try again later")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}

	client := realtime.NewClient(ws, h.hub, h.feed, h.publisher)
	h.hub.Register(client)

	slog.Debug(
		"Connection accepted",
		slog.String("connection", client.ID()),
		slog.Int("live", h.hub.Len()),
		slog.String("module", "socket"),
	)

	client.Run(c.Request().Context())
	return nil
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleStats(c echo.Context) error {
	return presenter.OK(c, echo.Map{
		"connections": h.hub.Len(),
		"feedRoom":    h.hub.RoomSize(realtime.RoomGlobalFeed),
	})
}
