package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"github.com/naijafloodwatch/backend/internal/domain"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "nfw_session"

	stateKey = "state"
)

// NewSessionStore creates the in-memory store holding per-browser dashboard state.
func NewSessionStore(cfg session.Config) *session.Store {
	cfg.KeyLookup = "cookie:" + SessionCookie
	cfg.KeyGenerator = uuid.NewString
	cfg.CookieHTTPOnly = true
	cfg.CookieSameSite = "Lax"
	return session.New(cfg)
}

// loadState returns the fiber session and the dashboard state stored in it.
// A missing or unreadable state starts over from a fresh session.
func (h *Handler) loadState(c *fiber.Ctx) (*session.Session, *domain.Session, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil, nil, fmt.Errorf("http: failed to load session: %w", err)
	}

	state := domain.NewSession()
	raw, ok := sess.Get(stateKey).(string)
	if !ok || raw == "" {
		return sess, state, nil
	}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		h.logger.Warn("discarding unreadable session state", "session", sess.ID(), "error", err)
		return sess, domain.NewSession(), nil
	}
	return sess, state, nil
}

func (h *Handler) saveState(sess *session.Session, state *domain.Session) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("http: failed to encode session state: %w", err)
	}
	sess.Set(stateKey, string(raw))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("http: failed to save session: %w", err)
	}
	return nil
}
