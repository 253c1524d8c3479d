package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/internal/tracing"
	"github.com/harun/nanoboard/pkg/auth"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// handleWatch upgrades to a websocket and streams workspace changes until
// either side goes away.
func (s *Server) handleWatch(c *gin.Context) {
	logger := tracing.LoggerFromContext(c.Request.Context(), s.logger)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		id = time.Now().Format("20060102150405.000000000")
	}
	client := &WatchClient{
		ID:          id,
		Conn:        conn,
		ConnectedAt: time.Now(),
		IPAddress:   auth.ClientKey(c.Request),
	}

	events, cancel := s.hub.Subscribe()
	s.clients.add(client)
	s.metrics.AddWatchClients(1)
	logger.Info().Str("clientId", id).Msg("Watch client connected")

	defer func() {
		cancel()
		s.clients.remove(id)
		s.metrics.AddWatchClients(-1)
		_ = conn.Close()
		logger.Info().Str("clientId", id).Msg("Watch client disconnected")
	}()

	// Nothing is expected from the client; reading surfaces close frames
	// and dead peers.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(1024)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				client.Close("watcher stopped")
				return
			}
			if err := client.Send(string(ev.Event), ev.Path); err != nil {
				logger.Debug().Err(err).Str("clientId", id).Msg("Failed to push watch event")
				return
			}
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWatchClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clients": s.clients.Snapshot()})
}
