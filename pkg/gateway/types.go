package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// WatchMessage is pushed to watch clients for every workspace change.
type WatchMessage struct {
	Event     string `json:"event"`
	Path      string `json:"path"`
	Seq       int64  `json:"seq"`
	Timestamp int64  `json:"timestamp"`
}

// ClientInfo describes a connected watch client
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connectedAt"`
	IPAddress   string    `json:"ipAddress"`
	Sent        int64     `json:"sent"`
}

// WatchClient is one websocket subscribed to workspace changes. Writes are
// serialized because gorilla connections allow a single concurrent writer.
type WatchClient struct {
	ID          string
	Conn        *websocket.Conn
	ConnectedAt time.Time
	IPAddress   string

	writeMu sync.Mutex
	seq     int64
}

// Send writes one event, stamping it with the client's sequence number.
func (c *WatchClient) Send(event, path string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.seq++
	msg := WatchMessage{
		Event:     event,
		Path:      path,
		Seq:       c.seq,
		Timestamp: time.Now().UnixMilli(),
	}
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(msg)
}

// Ping keeps intermediaries from timing the connection out.
func (c *WatchClient) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a close frame and drops the connection.
func (c *WatchClient) Close(reason string) {
	c.writeMu.Lock()
	_ = c.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, reason), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = c.Conn.Close()
}

func (c *WatchClient) info() ClientInfo {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ClientInfo{
		ID:          c.ID,
		ConnectedAt: c.ConnectedAt,
		IPAddress:   c.IPAddress,
		Sent:        c.seq,
	}
}
