package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/havenlabs/solace/internal/backend"
	"github.com/havenlabs/solace/internal/orchestrator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatMessage is one inbound message on the /ws chat stream.
type ChatMessage struct {
	Text    string          `json:"text"`
	Context backend.Context `json:"context"`
}

// ChatReply is one outbound frame on the /ws chat stream.
type ChatReply struct {
	SessionID string               `json:"session_id"`
	Turn      int                  `json:"turn"`
	Result    *orchestrator.Result `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// chatHandler runs an interactive analysis session over a WebSocket. Each
// inbound text message produces one full analysis frame. The prior turn
// count carries across the session so backends see conversation depth.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log.Info().Str("session_id", sessionID).Msg("chat session started")

	turn := 0
	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("chat read error")
			}
			return
		}

		turn++
		msg.Context.PriorSessions = turn - 1

		reply := ChatReply{SessionID: sessionID, Turn: turn}
		result, err := s.engine.Process(r.Context(), msg.Text, msg.Context)
		if err != nil {
			reply.Error = err.Error()
		} else {
			reply.Result = result
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("chat write error")
			return
		}
	}
}
