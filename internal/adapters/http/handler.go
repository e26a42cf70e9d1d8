package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/agronova/internal/app/conversation"
	"github.com/PabloGalante/agronova/internal/domain"
	"github.com/PabloGalante/agronova/internal/observability"
)

type Server struct {
	svc *conversation.Service
	now func() time.Time
}

func NewServer(svc *conversation.Service) http.Handler {
	s := &Server{svc: svc, now: time.Now}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /topics → catalog (GET)
	mux.HandleFunc("/topics", s.handleTopics)

	// /chat → stateless turn, caller keeps the history (POST)
	mux.HandleFunc("/chat", s.handleChat)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}          → GET: session + transcript, DELETE: end session
	// /sessions/{id}/messages → POST: send message
	// /sessions/{id}/topic    → PUT: select topic, DELETE: clear topic
	// /sessions/{id}/reset    → POST: reset transcript
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type topicResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	SamplePrompts []string `json:"sample_prompts"`
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string       `json:"message"`
	Feature *string      `json:"feature"`
	History []messageDTO `json:"history"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type sessionResponse struct {
	ID        string       `json:"id"`
	Topic     string       `json:"topic,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []messageDTO `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageDTO `json:"user_message"`
	AssistantMessage messageDTO `json:"assistant_message"`
	Failed           bool       `json:"failed"`
	FailureKind      string     `json:"failure_kind,omitempty"`
}

type selectTopicRequest struct {
	Topic string `json:"topic"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /topics
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	all := s.svc.Topics()
	out := make([]topicResponse, 0, len(all))
	for _, t := range all {
		out = append(out, topicResponse{
			ID:            string(t.ID),
			Title:         t.Label,
			Description:   t.Description,
			Icon:          t.Icon,
			SamplePrompts: t.SamplePrompts,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": out})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}[/messages|/topic|/reset]
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])

	if id == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		case http.MethodDelete:
			s.handleDeleteSession(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	switch parts[1] {
	case "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendMessage(w, r, id)
	case "topic":
		switch r.Method {
		case http.MethodPut:
			s.handleSelectTopic(w, r, id)
		case http.MethodDelete:
			s.handleClearTopic(w, r, id)
		default:
			methodNotAllowed(w)
		}
	case "reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleReset(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var topic domain.TopicID
	if req.Feature != nil {
		topic = domain.TopicID(*req.Feature)
	}

	res, err := s.svc.Respond(r.Context(), req.Message, topic, fromMessageDTOs(req.History))
	if err != nil {
		if errors.Is(err, conversation.ErrInputRejected) {
			badRequest(w, "No message provided")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  res.AssistantMessage.Content,
		Timestamp: s.now(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.StartSession(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		s.sessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.EndSession(r.Context(), id); err != nil {
		s.sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), id, req.Text)
	if err != nil {
		s.sessionError(w, r, err)
		return
	}

	resp := sendMessageResponse{
		UserMessage:      toMessageDTO(out.UserMessage),
		AssistantMessage: toMessageDTO(out.AssistantMessage),
	}
	if out.Failure != nil {
		resp.Failed = true
		resp.FailureKind = string(out.Failure.Kind)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req selectTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	topic := strings.TrimSpace(req.Topic)
	var (
		session *domain.Session
		err     error
	)
	if topic == "" {
		session, err = s.svc.ClearTopic(r.Context(), id)
	} else {
		session, err = s.svc.SelectTopic(r.Context(), id, domain.TopicID(topic))
	}
	if err != nil {
		s.sessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleClearTopic(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.ClearTopic(r.Context(), id)
	if err != nil {
		s.sessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.ResetSession(r.Context(), id)
	if err != nil {
		s.sessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, conversation.ErrInputRejected):
		badRequest(w, "text is required")
	case errors.Is(err, conversation.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		internalError(w, r, err)
	}
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	resp := sessionResponse{
		ID:        string(s.ID),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt(),
		Messages:  toMessageDTOs(s.Transcript()),
	}
	if topic, ok := s.Topic(); ok {
		resp.Topic = string(topic)
	}
	return resp
}

func toMessageDTO(m domain.Message) messageDTO {
	return messageDTO{Role: string(m.Role), Content: m.Content}
}

func toMessageDTOs(msgs []domain.Message) []messageDTO {
	out := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m))
	}
	return out
}

func fromMessageDTOs(msgs []messageDTO) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, domain.Message{Role: domain.ParseRole(m.Role), Content: m.Content})
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
