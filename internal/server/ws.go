package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clauselens/clauselens/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "ask", "load" or "clear"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
	Source    string `json:"source,omitempty"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type        string   `json:"type"` // "answer", "loaded", "cleared" or "error"
	SessionID   string   `json:"session_id"`
	Content     string   `json:"content,omitempty"`
	Chunks      int      `json:"chunks,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "ask":
			s.handleWSAsk(conn, r, req)
		case "load":
			s.handleWSLoad(conn, r, req)
		case "clear":
			s.handleWSClear(conn, req)
		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

// wsSession resolves or creates the session for a websocket message.
func (s *Server) wsSession(conn *websocket.Conn, id string) (*session.Session, bool) {
	if id == "" {
		created, err := s.sessions.Create()
		if err != nil {
			s.sendWSError(conn, "", "failed to create session: "+err.Error())
			return nil, false
		}
		return created, true
	}
	existing, found := s.sessions.Get(id)
	if !found {
		s.sendWSError(conn, id, "unknown session: "+id)
		return nil, false
	}
	return existing, true
}

func (s *Server) handleWSAsk(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.Content == "" {
		s.sendWSError(conn, req.SessionID, "content is required")
		return
	}
	sess, ok := s.wsSession(conn, req.SessionID)
	if !ok {
		return
	}

	answer, err := sess.Ask(r.Context(), req.Content)
	if err != nil {
		s.sendWSError(conn, sess.ID, "answering failed: "+err.Error())
		return
	}
	s.persist(sess)

	s.sendWS(conn, chatResponse{
		Type:        "answer",
		SessionID:   sess.ID,
		Content:     answer,
		Suggestions: sess.Suggestions(),
	})
}

func (s *Server) handleWSLoad(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.Content == "" {
		s.sendWSError(conn, req.SessionID, "content is required")
		return
	}
	sess, ok := s.wsSession(conn, req.SessionID)
	if !ok {
		return
	}
	source := req.Source
	if source == "" {
		source = "uploaded"
	}

	n, err := sess.LoadDocument(r.Context(), source, req.Content)
	if err != nil {
		s.sendWSError(conn, sess.ID, "indexing failed: "+err.Error())
		return
	}
	s.sendWS(conn, chatResponse{Type: "loaded", SessionID: sess.ID, Chunks: n})
}

func (s *Server) handleWSClear(conn *websocket.Conn, req chatRequest) {
	sess, ok := s.wsSession(conn, req.SessionID)
	if !ok {
		return
	}
	sess.ClearConversation()
	s.sendWS(conn, chatResponse{Type: "cleared", SessionID: sess.ID})
}

func (s *Server) sendWS(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, msg string) {
	s.sendWS(conn, chatResponse{Type: "error", SessionID: sessionID, Content: msg})
}
