package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
	maxFrameSize = 4096
)

// clientMessage: frame dari client, {"event": "joinPaymentRoom", "data": 12}.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Serve upgrade koneksi lalu jalanin read/write pump sampai client putus.
// Namespace "user" otomatis join room user si pemilik token; namespace
// payment/product join/leave-nya diinisiasi client.
func Serve(hub *Hub, log *zap.Logger, ns RoomKind, userID int64, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	send := make(chan []byte, sendBuffer)
	if ns == RoomUser {
		hub.Join(RoomUser, strconv.FormatInt(userID, 10), send)
	}

	go writePump(conn, send)
	readPump(hub, log, ns, conn, send)
}

func readPump(hub *Hub, log *zap.Logger, ns RoomKind, conn *websocket.Conn, send chan []byte) {
	defer func() {
		hub.LeaveAll(send)
		close(send)
	}()
	conn.SetReadLimit(maxFrameSize)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue // frame aneh diabaikan saja
		}
		id, ok := roomID(msg.Data)
		if !ok {
			continue
		}
		switch {
		case ns == RoomPayment && msg.Event == "joinPaymentRoom":
			hub.Join(RoomPayment, id, send)
		case ns == RoomPayment && msg.Event == "leavePaymentRoom":
			hub.Leave(RoomPayment, id, send)
		case ns == RoomProduct && msg.Event == "joinProductRoom":
			hub.Join(RoomProduct, id, send)
		case ns == RoomProduct && msg.Event == "leaveProductRoom":
			hub.Leave(RoomProduct, id, send)
		default:
			if log != nil {
				log.Debug("unknown ws event", zap.String("event", msg.Event), zap.String("namespace", string(ns)))
			}
		}
	}
}

func writePump(conn *websocket.Conn, send chan []byte) {
	defer conn.Close()
	for b := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// roomID menerima id numerik maupun string ("12" atau 12).
func roomID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var asNum int64
	if err := json.Unmarshal(raw, &asNum); err == nil {
		return strconv.FormatInt(asNum, 10), true
	}
	var asStr string
	if err := json.Unmarshal(raw, &asStr); err == nil && asStr != "" {
		return asStr, true
	}
	return "", false
}
