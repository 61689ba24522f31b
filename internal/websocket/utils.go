package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// Idle connections are dropped after this long without a message.
	readWait = 5 * time.Minute
	// Largest client message accepted; convert requests are tiny.
	maxMessageSize = 4096
)

// ErrMalformedMessage marks a frame that is not a JSON object. The
// connection is still usable after it.
var ErrMalformedMessage = errors.New("malformed message")

// Prepare applies read limits to a freshly upgraded connection.
func Prepare(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, seq int64, code, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Seq:   seq,
		Code:  code,
		Error: errMsg,
	})
}

// ReadMessage reads one text frame and reports its action. The raw bytes are
// returned for decoding into the action's request type.
func ReadMessage(conn *websocket.Conn) (Action, []byte, error) {
	conn.SetReadDeadline(time.Now().Add(readWait))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", nil, err
	}

	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", data, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return env.Action, data, nil
}
