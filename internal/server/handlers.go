package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/clauselens/clauselens/internal/memory"
	"github.com/clauselens/clauselens/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sessionFrom resolves the session named in the request, writing the
// error response itself when it cannot.
func (s *Server) sessionFrom(w http.ResponseWriter, id string) (*session.Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session: "+id)
		return nil, false
	}
	return sess, true
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating session: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID})
}

type loadDocumentRequest struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Text      string `json:"text"`
}

type loadDocumentResponse struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Chunks    int    `json:"chunks"`
	Index     string `json:"index"`
}

func (s *Server) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	var req loadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Source == "" {
		req.Source = "uploaded"
	}

	// An omitted session id starts a fresh session.
	var (
		sess *session.Session
		ok   bool
	)
	if req.SessionID == "" {
		var err error
		sess, err = s.sessions.Create()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "creating session: "+err.Error())
			return
		}
	} else if sess, ok = s.sessionFrom(w, req.SessionID); !ok {
		return
	}

	n, err := sess.LoadDocument(r.Context(), req.Source, req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "indexing document: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, loadDocumentResponse{
		SessionID: sess.ID,
		Source:    req.Source,
		Chunks:    n,
		Index:     sess.IndexName(),
	})
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	HTML      bool   `json:"html"`
}

type askResponse struct {
	SessionID  string `json:"session_id"`
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	sess, ok := s.sessionFrom(w, req.SessionID)
	if !ok {
		return
	}

	answer, err := sess.Ask(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusBadGateway, "answering query: "+err.Error())
		return
	}

	s.persist(sess)

	resp := askResponse{SessionID: sess.ID, Answer: answer}
	if req.HTML {
		html, err := RenderMarkdown(answer)
		if err != nil {
			log.Printf("server: rendering answer: %v", err)
		} else {
			resp.AnswerHTML = html
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// persist saves the session's conversation when a store is configured.
func (s *Server) persist(sess *session.Session) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveConversation(ctx, sess.ID, sess.DocumentSource(), sess.History(0)); err != nil {
		log.Printf("server: persisting session %s: %v", sess.ID, err)
	}
}

type historyTurn struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Agent     string    `json:"agent"`
}

type historyResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []historyTurn `json:"turns"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "n must be an integer")
			return
		}
	}

	turns := sess.History(n)
	out := historyResponse{SessionID: sess.ID, Turns: make([]historyTurn, 0, len(turns))}
	for _, turn := range turns {
		out.Turns = append(out.Turns, historyTurn{
			Timestamp: turn.Timestamp,
			User:      turn.UserInput,
			Agent:     turn.AgentResponse,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type suggestionsResponse struct {
	SessionID   string                 `json:"session_id"`
	Suggestions []string               `json:"suggestions"`
	FollowUp    memory.FollowUpContext `json:"follow_up"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{
		SessionID:   sess.ID,
		Suggestions: sess.Suggestions(),
		FollowUp:    sess.FollowUp(),
	})
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, ok := s.sessionFrom(w, req.SessionID)
	if !ok {
		return
	}
	sess.ClearConversation()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
