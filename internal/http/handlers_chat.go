package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"chitieu/internal/chat"
	applog "chitieu/internal/log"
)

const (
	sessionCookie   = "session_id"
	maxChatBodySize = 16 << 10
	maxMessageRunes = 1000
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	message := sanitizeInput(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len([]rune(message)) > maxMessageRunes {
		writeError(w, http.StatusBadRequest, "Message is too long")
		return
	}

	sessionID := s.sessionID(r)
	reply, err := s.chat.Handle(r.Context(), sessionID, s.userID, message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		logger.ErrorContext(r.Context(), "Chat turn failed",
			applog.NewFields().WithSession(sessionID, s.userID).WithError(err).ToSlice()...)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.setSessionCookie(w, sessionID)
	writeJSON(w, http.StatusOK, reply)
}

// sessionID returns the caller's session cookie, minting a new ID when the
// cookie is missing or malformed.
func (s *Server) sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}
	return uuid.NewString()
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
