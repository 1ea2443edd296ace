package ws

import (
	"chatline/auth"
	"chatline/domain"
	"chatline/domain/event"
	"chatline/observability"
	"chatline/runtime"
	"chatline/transport/ratelimiter"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxFrameBytes = 64 * 1024
	writeTimeout  = 10 * time.Second
)

// envelope is the wire frame in both directions: an event name plus its
// JSON payload. Unknown inbound events are rejected, not ignored.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type sendMessagePayload struct {
	RecipientID      string `json:"recipient_user_id"`
	Content          string `json:"content"`
	CorrelationToken string `json:"correlation_token"`
}

type readReceiptPayload struct {
	SenderID string `json:"sender_user_id"`
}

type typingPayload struct {
	RecipientID string `json:"recipient_user_id"`
}

// Handler upgrades authenticated HTTP requests to websocket connections
// and runs one session per connection until the peer goes away.
type Handler struct {
	log         *slog.Logger
	coordinator *runtime.Coordinator
	monitoring  *observability.MonitoringManager
	limiter     *ratelimiter.PerUserLimiter
	upgrader    websocket.Upgrader
	bufferSize  int
}

func NewHandler(log *slog.Logger, coordinator *runtime.Coordinator,
	monitoring *observability.MonitoringManager, limiter *ratelimiter.PerUserLimiter,
	allowedOrigins []string, bufferSize int) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		log:         log,
		coordinator: coordinator,
		monitoring:  monitoring,
		limiter:     limiter,
		bufferSize:  bufferSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || allowed[origin]
			},
		},
	}
}

// ServeHTTP handles GET /ws. The caller must be authenticated already;
// auth.Middleware runs before the upgrade, so a bad token costs a plain
// 401 instead of a half-open socket.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	session := runtime.NewSession(h.log, h.bufferSize, h.monitoring)
	h.log.Info("websocket connected", "session_id", session.ID, "user_id", userID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.writeLoop(conn, session)
	h.readLoop(ctx, conn, session, userID)

	h.coordinator.Disconnect(ctx, session)
	_ = conn.Close()
	h.log.Info("websocket disconnected", "session_id", session.ID, "user_id", userID)
}

// writeLoop drains the session event buffer onto the socket. A write
// failure closes the connection; the read loop then observes the error
// and tears the session down.
func (h *Handler) writeLoop(conn *websocket.Conn, session *runtime.Session) {
	for {
		select {
		case e, ok := <-session.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(outboundEnvelope{Event: string(e.EventName()), Data: e}); err != nil {
				_ = conn.Close()
				return
			}
		case <-session.Done():
			return
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, session *runtime.Session, userID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if !h.limiter.Allow(userID, time.Now()) {
			h.monitoring.FrameRejected()
			h.sendError(session, "rate limit exceeded")
			continue
		}

		var frame envelope
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.monitoring.FrameRejected()
			h.sendError(session, "malformed frame")
			continue
		}

		if err := h.dispatch(ctx, session, userID, frame); err != nil {
			h.monitoring.FrameRejected()
			h.sendError(session, err.Error())
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, session *runtime.Session, userID string, frame envelope) error {
	switch event.Name(frame.Event) {
	case event.AnnounceOnlineName:
		return h.coordinator.Announce(ctx, session, userID)

	case event.SendMessageName:
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return err
		}
		_, err := h.coordinator.Send(ctx, userID, p.RecipientID, p.Content, p.CorrelationToken)
		return err

	case event.ReadReceiptName:
		var p readReceiptPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return err
		}
		return h.coordinator.MarkRead(ctx, userID, p.SenderID)

	case event.TypingStartName, event.TypingStopName:
		var p typingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return err
		}
		h.coordinator.RelayTyping(ctx, domain.TypingSignal{
			SenderID:    userID,
			RecipientID: p.RecipientID,
			Started:     event.Name(frame.Event) == event.TypingStartName,
		})
		return nil

	default:
		return errUnknownEvent(frame.Event)
	}
}

func (h *Handler) sendError(session *runtime.Session, message string) {
	_ = session.Consume(context.Background(), event.WireError{Message: message})
}

type unknownEventError string

func errUnknownEvent(name string) error { return unknownEventError(name) }

func (e unknownEventError) Error() string { return "unknown event: " + string(e) }
