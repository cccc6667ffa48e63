package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/config"
	ws "github.com/eduinsight/dropout-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams persisted predictions to dashboard consumers.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// PredictionStream godoc
// WS /ws/v1/predictions/stream
// Upgrades to WebSocket and relays every prediction published on the
// live Redis channel until the client disconnects.
func (h *WSHandler) PredictionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.ChannelKey.PredictionsLive)
	defer sub.Close()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Dashboard consumer connected")

	// Reader goroutine: the stream is server-push only, but reading is
	// required to notice client disconnects and control frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	msgs := sub.Channel()
	for {
		select {
		case <-done:
			h.log.Debug().Msg("Consumer disconnected")
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				ws.WriteError(conn, "live channel closed")
				return
			}
			event := ws.PredictionEvent{
				Event:   ws.EventPrediction,
				Payload: json.RawMessage(msg.Payload),
			}
			if err := ws.WriteTyped(conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Write to consumer failed")
				return
			}
		}
	}
}
