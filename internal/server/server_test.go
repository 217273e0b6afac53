package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/clauselens/clauselens/internal/db"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/session"
)

// scriptedProvider returns canned replies in order.
type scriptedProvider struct {
	replies []string
	next    int
}

func (p *scriptedProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	reply := "ok"
	if p.next < len(p.replies) {
		reply = p.replies[p.next]
		p.next++
	}
	return &llm.CompletionResponse{Content: reply}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

const sampleText = `TERMINATION. Either party may terminate this Agreement upon thirty days written notice. PAYMENT. Invoices are due within thirty days.`

func newTestServer(t *testing.T, provider llm.Provider, store *db.DB) *Server {
	t.Helper()
	return New(Config{Port: 0}, session.NewManager(session.Options{Provider: provider}), store)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{}, nil)
	rec := postJSON(t, srv, "/api/sessions", nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[sessionResponse](t, rec)
	if resp.SessionID == "" {
		t.Error("empty session id")
	}
}

func TestLoadDocument_CreatesSessionWhenOmitted(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{}, nil)
	rec := postJSON(t, srv, "/api/documents", loadDocumentRequest{Source: "msa.txt", Text: sampleText})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[loadDocumentResponse](t, rec)
	if resp.SessionID == "" || resp.Chunks == 0 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Index == "" {
		t.Error("index strategy missing from response")
	}
}

func TestLoadDocument_Validation(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{}, nil)

	rec := postJSON(t, srv, "/api/documents", loadDocumentRequest{Source: "a.txt"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing text: status = %d", rec.Code)
	}

	rec = postJSON(t, srv, "/api/documents", loadDocumentRequest{SessionID: "nope", Text: "hello"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d", rec.Code)
	}

	rec = postJSON(t, srv, "/api/documents", loadDocumentRequest{Text: "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank document: status = %d", rec.Code)
	}
}

func TestAskAndHistory(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"respond", "**Hello**, ask me about your document."}}
	store, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	srv := newTestServer(t, provider, store)

	created := decode[sessionResponse](t, postJSON(t, srv, "/api/sessions", nil))

	rec := postJSON(t, srv, "/api/ask", askRequest{SessionID: created.SessionID, Query: "hi", HTML: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("ask status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[askResponse](t, rec)
	if !strings.Contains(resp.Answer, "Hello") {
		t.Errorf("answer = %q", resp.Answer)
	}
	if !strings.Contains(resp.AnswerHTML, "<strong>Hello</strong>") {
		t.Errorf("answer_html = %q", resp.AnswerHTML)
	}

	// The turn must be visible over the history endpoint.
	req := httptest.NewRequest(http.MethodGet, "/api/history?session_id="+created.SessionID, nil)
	histRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(histRec, req)
	if histRec.Code != http.StatusOK {
		t.Fatalf("history status = %d", histRec.Code)
	}
	hist := decode[historyResponse](t, histRec)
	if len(hist.Turns) != 1 || hist.Turns[0].User != "hi" {
		t.Errorf("history = %+v", hist)
	}

	// And persisted in the store.
	saved, err := store.LoadConversation(context.Background(), created.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 {
		t.Errorf("persisted %d turns, want 1", len(saved))
	}
}

func TestAsk_Validation(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{}, nil)

	rec := postJSON(t, srv, "/api/ask", askRequest{SessionID: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing query: status = %d", rec.Code)
	}

	rec = postJSON(t, srv, "/api/ask", askRequest{Query: "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing session: status = %d", rec.Code)
	}
}

func TestSuggestionsAndClear(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"respond", "answer"}}
	srv := newTestServer(t, provider, nil)

	created := decode[sessionResponse](t, postJSON(t, srv, "/api/sessions", nil))
	postJSON(t, srv, "/api/ask", askRequest{SessionID: created.SessionID, Query: "what about the termination clause?"})

	req := httptest.NewRequest(http.MethodGet, "/api/suggestions?session_id="+created.SessionID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions status = %d", rec.Code)
	}
	sugg := decode[suggestionsResponse](t, rec)
	if len(sugg.Suggestions) == 0 {
		t.Error("no suggestions returned")
	}

	clearRec := postJSON(t, srv, "/api/clear", clearRequest{SessionID: created.SessionID})
	if clearRec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", clearRec.Code)
	}

	histReq := httptest.NewRequest(http.MethodGet, "/api/history?session_id="+created.SessionID, nil)
	histRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(histRec, histReq)
	hist := decode[historyResponse](t, histRec)
	if len(hist.Turns) != 0 {
		t.Errorf("history survived clear: %+v", hist.Turns)
	}
}

func TestWebSocketChat(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"respond", "hello from the agent"}}
	srv := newTestServer(t, provider, nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Load a document on a fresh session.
	if err := conn.WriteJSON(chatRequest{Type: "load", Content: sampleText, Source: "msa.txt"}); err != nil {
		t.Fatal(err)
	}
	var loaded chatResponse
	if err := conn.ReadJSON(&loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Type != "loaded" || loaded.SessionID == "" || loaded.Chunks == 0 {
		t.Fatalf("load response = %+v", loaded)
	}

	// Ask on the same session.
	if err := conn.WriteJSON(chatRequest{Type: "ask", SessionID: loaded.SessionID, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	var answer chatResponse
	if err := conn.ReadJSON(&answer); err != nil {
		t.Fatal(err)
	}
	if answer.Type != "answer" || answer.Content != "hello from the agent" {
		t.Fatalf("ask response = %+v", answer)
	}
	if len(answer.Suggestions) == 0 {
		t.Error("answer carried no suggestions")
	}

	// Unknown message types are rejected without closing the socket.
	if err := conn.WriteJSON(chatRequest{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	var errResp chatResponse
	if err := conn.ReadJSON(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Type != "error" {
		t.Fatalf("expected error response, got %+v", errResp)
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Notice\n\n- thirty days")
	if err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<li>thirty days</li>") {
		t.Errorf("html = %q", html)
	}
}
