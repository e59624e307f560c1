package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/presence"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	maxViewLength  = 100
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// PresenceSubscriber delivers presence change events of a project.
type PresenceSubscriber interface {
	Subscribe(ctx context.Context, projectID uuid.UUID) *redis.PubSub
}

// StreamMessage is what the server writes on a presence stream.
type StreamMessage struct {
	Type     string                `json:"type"`
	Presence *dto.PresenceResponse `json:"presence,omitempty"`
}

const streamMessagePresence = "PRESENCE"

// StreamPresence godoc
// @Summary      Stream a project's presence
// @Description  Upgrades to a WebSocket. While open, the server reports the caller as present and pushes
// @Description  the project's presence on every poll. Send {"view":"mixer"} to change the reported view.
// @Tags         presence
// @Param        projectId path string true "Project ID (UUID)"
// @Param        view query string false "Initial view label"
// @Param        token query string false "Access token when headers cannot be set"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /projects/{projectId}/presence/stream [get]
func (h *PresenceHandler) StreamPresence(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	if _, err := h.projectService.GetProject(c.Request.Context(), projectID); err != nil {
		handleServiceError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade presence stream", zap.Error(err))
		return
	}

	s := &presenceSession{
		handler:   h,
		conn:      conn,
		projectID: projectID,
		user:      user,
		send:      make(chan []byte, 16),
		done:      make(chan struct{}),
	}
	s.run(clampView(c.Query("view")))
}

// presenceSession is one open stream. It owns a heartbeat for the caller
// and a poller that feeds snapshots to the socket.
type presenceSession struct {
	handler   *PresenceHandler
	conn      *websocket.Conn
	projectID uuid.UUID
	user      domain.User

	send chan []byte
	done chan struct{}
	wg   sync.WaitGroup
}

func (s *presenceSession) run(view string) {
	h := s.handler
	logger := h.logger.With(
		zap.String("project_id", s.projectID.String()),
		zap.String("user_email", s.user.Email),
	)

	h.metrics.PresenceSessionOpened()
	logger.Info("Presence stream connected", zap.String("view", view))

	heartbeat := presence.NewHeartbeat(h.presence, s.projectID, s.user, view, h.cfg.Heartbeat, logger)
	poller := presence.NewPoller(h.presence, s.projectID, s.push, h.cfg.Poll, logger)

	s.wg.Add(1)
	go s.writePump()

	heartbeat.Start()
	poller.Start()

	var pubsub *redis.PubSub
	if h.cfg.Events != nil {
		pubsub = h.cfg.Events.Subscribe(context.Background(), s.projectID)
		s.wg.Add(1)
		go s.forwardEvents(pubsub, logger)
	}

	s.readPump(heartbeat, logger)

	close(s.done)
	heartbeat.Stop()
	poller.Stop()
	if pubsub != nil {
		_ = pubsub.Close()
	}
	s.wg.Wait()
	_ = s.conn.Close()

	h.metrics.PresenceSessionClosed()
	logger.Info("Presence stream disconnected")
}

// readPump applies view changes until the socket closes.
func (s *presenceSession) readPump(heartbeat *presence.Heartbeat, logger *zap.Logger) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Presence stream error", zap.Error(err))
			}
			return
		}

		var msg dto.StreamViewMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Debug("Ignoring malformed stream message", zap.Error(err))
			continue
		}
		heartbeat.SetView(clampView(msg.View))
	}
}

func (s *presenceSession) writePump() {
	defer s.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}

// forwardEvents refreshes the snapshot whenever another writer changes
// the project's presence.
func (s *presenceSession) forwardEvents(pubsub *redis.PubSub, logger *zap.Logger) {
	defer s.wg.Done()
	ch := pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.handler.refreshTimeout())
			snap, err := s.handler.presence.ListPresence(ctx, s.projectID)
			cancel()
			if err != nil {
				logger.Warn("presence refresh after event failed", zap.Error(err))
				continue
			}
			s.push(snap)
		}
	}
}

// refreshTimeout bounds an event-driven snapshot read. An unset poll
// timeout falls back to the presence default, like the poller itself.
func (h *PresenceHandler) refreshTimeout() time.Duration {
	timeout := h.cfg.Poll.CallTimeout
	if timeout <= 0 {
		timeout = presence.DefaultCallTimeout
	}
	return timeout + time.Second
}

// push queues a snapshot. When the client falls behind the snapshot is
// dropped; the next poll carries a newer one.
func (s *presenceSession) push(snap *presence.Snapshot) {
	payload, err := json.Marshal(StreamMessage{
		Type:     streamMessagePresence,
		Presence: dto.ToPresenceResponse(snap),
	})
	if err != nil {
		s.handler.logger.Error("Failed to encode presence snapshot", zap.Error(err))
		return
	}
	select {
	case s.send <- payload:
	case <-s.done:
	default:
	}
}

// clampView keeps at most maxViewLength characters without splitting one.
func clampView(view string) string {
	if utf8.RuneCountInString(view) <= maxViewLength {
		return view
	}
	return string([]rune(view)[:maxViewLength])
}
