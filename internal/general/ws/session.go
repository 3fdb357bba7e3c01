package ws

import (
	"sync"
	"time"

	"lunchbox/internal/domain/user"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one authenticated client connection as the registry sees it.
// The concrete type wraps a gorilla conn; tests substitute lightweight fakes.
type Session interface {
	ID() string
	UserID() string
	Role() user.Role
	Send(payload []byte) error
}

// wsSession wraps a gorilla connection with its own write lock so concurrent
// fan-out, acks and pings never interleave frames.
type wsSession struct {
	id     string
	userID string
	role   user.Role

	conn    *websocket.Conn
	writeMu sync.Mutex
}

var _ Session = (*wsSession)(nil)

func newSession(conn *websocket.Conn, userID string, role user.Role) *wsSession {
	return &wsSession{
		id:     uuid.New().String(),
		userID: userID,
		role:   role,
		conn:   conn,
	}
}

func (s *wsSession) ID() string      { return s.id }
func (s *wsSession) UserID() string  { return s.userID }
func (s *wsSession) Role() user.Role { return s.role }

// Send writes one text frame under the session's write lock.
func (s *wsSession) Send(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// ping sends a control frame under the same lock as data frames.
func (s *wsSession) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(ctrlTimeout))
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
}

// writeClose sends a close control frame with the given code and reason.
func (s *wsSession) writeClose(code int, reason string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsCloseAckWindow),
	)
}
