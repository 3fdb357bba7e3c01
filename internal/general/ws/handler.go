package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second

	authWindow   = 10 * time.Second
	readDeadline = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Gateway handles WebSocket connections with JWT auth and routes client
// frames to the order service and room registry.
type Gateway struct {
	logger   *logger.Logger
	jwtMgr   *jwt.Manager
	orders   ports.OrderService
	registry *Registry
}

// NewGateway creates a Gateway bound to the shared registry.
func NewGateway(logger *logger.Logger, jwtMgr *jwt.Manager, orders ports.OrderService, registry *Registry) *Gateway {
	return &Gateway{
		logger:   logger,
		jwtMgr:   jwtMgr,
		orders:   orders,
		registry: registry,
	}
}

// Connect upgrades the request, authenticates the first frame, then runs the
// read loop until the client goes away.
func (gw *Gateway) Connect(w http.ResponseWriter, r *http.Request) {
	// 1) Upgrade HTTP -> WS
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gw.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()

	// 2) Set auth deadline
	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(authWindow)); err != nil {
		gw.logger.Error(r.Context(), "ws_set_deadline_failed", "Failed to set initial read deadline", err, nil)
		gw.sendAuthError(conn, "internal server error")
		return
	}

	// 3) First frame must be the auth message
	mt, first, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			gw.logger.Error(r.Context(), "ws_auth_timeout", "Client disconnected before authentication", err, nil)
		} else {
			gw.logger.Error(r.Context(), "ws_auth_read_failed", "Failed to read auth message", err, nil)
		}
		gw.sendAuthError(conn, "authentication timeout: please send auth message within 10 seconds")
		return
	}

	if mt != websocket.TextMessage {
		gw.logger.Error(r.Context(), "ws_auth_invalid_format", "Auth message must be text format", nil, nil)
		gw.sendAuthError(conn, "auth message must be in text format")
		return
	}

	res, err := jwt.ValidateWSAuth(first, gw.jwtMgr, user.RoleCustomer, user.RoleRider, user.RoleAdmin)
	if err != nil {
		gw.logger.Error(r.Context(), "ws_auth_failed", "Invalid auth message or token", err, nil)
		gw.sendAuthError(conn, "authentication failed: invalid token")
		return
	}

	sess := newSession(conn, res.Claims.Subject, res.Claims.Role)

	// 4) Send authentication success message
	if err := gw.sendAuthSuccess(sess); err != nil {
		gw.logger.Error(r.Context(), "ws_auth_success_failed", "Failed to send auth success message", err, nil)
		return
	}

	gw.logger.Info(r.Context(), "ws_connected", "WebSocket connected",
		map[string]any{"user_id": sess.UserID(), "role": sess.Role().String()})

	// 5) Reset read deadline after auth
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	// 6) Ping loop; a failed ping closes the socket to unblock the reader
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			if err := sess.ping(); err != nil {
				_ = conn.Close()
				gw.logger.Error(r.Context(), "ws_ping_failed", "Failed to send ping", err,
					map[string]any{"user_id": sess.UserID()})
				return
			}
		}
	}()

	// 7) Leave every joined room on exit
	defer gw.registry.UnsubscribeAll(sess.ID())

	// 8) Per-connection throttle marker for location spam
	var lastLocAt time.Time

	// 9) Read loop: route messages
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				gw.logger.Error(r.Context(), "ws_unexpected_close", "Connection closed unexpectedly", err,
					map[string]any{"user_id": sess.UserID()})
				sess.writeClose(websocket.CloseInternalServerErr, "internal error")
			} else {
				gw.logger.Info(r.Context(), "ws_connection_closed", "Connection closed normally",
					map[string]any{"user_id": sess.UserID()})
				sess.writeClose(websocket.CloseNormalClosure, "bye")
			}
			break
		}

		// Minimal envelope
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}

		if err := json.Unmarshal(payload, &msg); err != nil {
			gw.sendError(sess, "bad_json", "invalid message payload")
			continue
		}

		switch msg.Type {
		case "join_order":
			gw.handleJoinOrder(r.Context(), sess, msg.Data)

		case "location_update":
			gw.handleLocationUpdate(r.Context(), sess, msg.Data, &lastLocAt)

		case "update_status":
			gw.handleUpdateStatus(r.Context(), sess, msg.Data)

		default:
			gw.sendError(sess, "unknown_type", "unknown message type")
		}
	}
}

// sendAuthError writes an auth failure directly to the raw connection, since
// no session exists yet.
func (gw *Gateway) sendAuthError(conn *websocket.Conn, message string) {
	payload, err := json.Marshal(map[string]any{
		"type":    "auth_error",
		"error":   message,
		"success": false,
	})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

// sendAuthSuccess confirms authentication to the client.
func (gw *Gateway) sendAuthSuccess(sess *wsSession) error {
	payload, err := json.Marshal(map[string]any{
		"type":      "auth_success",
		"message":   "Authentication successful",
		"success":   true,
		"user_id":   sess.UserID(),
		"role":      sess.Role().String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return sess.Send(payload)
}

func (gw *Gateway) sendError(sess Session, code, message string) {
	payload, err := json.Marshal(map[string]any{
		"type":    "error",
		"code":    code,
		"message": message,
	})
	if err != nil {
		return
	}
	_ = sess.Send(payload)
}

func (gw *Gateway) sendAck(sess Session, ackType, orderID, status string) {
	msg := map[string]any{"type": ackType, "order_id": orderID}
	if status != "" {
		msg["status"] = status
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = sess.Send(payload)
}
