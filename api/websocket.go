package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/tickerlens/internal/insight"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; restrict in production
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WSMessage is the frame exchanged over the insight WebSocket. The client
// sends {"type":"insight","ticker":"AAPL"}; the server streams stage frames
// followed by one result or error frame.
type WSMessage struct {
	Type   string      `json:"type"`
	Ticker string      `json:"ticker,omitempty"`
	Stage  string      `json:"stage,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// handleInsightWS runs the insight pipeline per incoming ticker message and
// streams stage transitions back on the same connection. Progress reporting
// is synchronous with the pipeline, so all writes happen from this
// goroutine and need no locking.
func (s *Server) handleInsightWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			if !writeWS(conn, WSMessage{Type: "pong"}) {
				return
			}
		case "insight":
			if msg.Ticker == "" {
				if !writeWS(conn, WSMessage{Type: "error", Error: "ticker is required"}) {
					return
				}
				continue
			}
			if !s.streamInsight(conn, msg.Ticker, r) {
				return
			}
		}
	}
}

// streamInsight runs one pipeline pass, emitting stage frames as it goes.
// Returns false when the connection is no longer writable.
func (s *Server) streamInsight(conn *websocket.Conn, ticker string, r *http.Request) bool {
	alive := true
	resp, err := s.svc.FetchInsightsWithProgress(r.Context(), ticker, func(st insight.Stage) {
		if alive {
			alive = writeWS(conn, WSMessage{Type: "stage", Ticker: ticker, Stage: string(st)})
		}
	})
	if !alive {
		return false
	}
	if err != nil {
		return writeWS(conn, WSMessage{Type: "error", Ticker: ticker, Error: err.Error()})
	}
	return writeWS(conn, WSMessage{Type: "result", Ticker: ticker, Data: resp})
}

func writeWS(conn *websocket.Conn, msg WSMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket marshal error: %v", err)
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false
	}
	return true
}
