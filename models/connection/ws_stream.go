package connection

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WsStream turns a websocket connection into the byte stream frames
// are read from, so browser clients speak the same protocol as TCP
// clients. Each Write is sent as one binary message; reads continue
// across message boundaries.
type WsStream struct {
	conn   *websocket.Conn
	reader io.Reader
	readMu sync.Mutex
}

var _ Conn = (*WsStream)(nil)

func NewWsStream(conn *websocket.Conn) *WsStream {
	return &WsStream{conn: conn}
}

func (ws *WsStream) Read(p []byte) (int, error) {
	ws.readMu.Lock()
	defer ws.readMu.Unlock()

	for {
		if ws.reader == nil {
			msgType, reader, err := ws.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					return 0, io.EOF
				}
				return 0, err
			}
			// text and binary both carry frame bytes
			if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
				continue
			}
			ws.reader = reader
		}

		n, err := ws.reader.Read(p)
		if err == io.EOF {
			ws.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (ws *WsStream) Write(p []byte) (int, error) {
	if err := ws.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (ws *WsStream) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = ws.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return ws.conn.Close()
}

func (ws *WsStream) SetReadDeadline(t time.Time) error {
	return ws.conn.SetReadDeadline(t)
}

func (ws *WsStream) SetWriteDeadline(t time.Time) error {
	return ws.conn.SetWriteDeadline(t)
}

func (ws *WsStream) RemoteAddr() net.Addr {
	return ws.conn.RemoteAddr()
}
