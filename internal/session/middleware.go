package session

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "form_session"

type contextKey string

const sessionIDKey contextKey = "sessionID"

// Middleware attaches a session id to every request, issuing a cookie when needed.
type Middleware struct {
	tokens *TokenService
	maxAge int
}

func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{
		tokens: tokens,
		maxAge: int(tokens.lifetime.Seconds()),
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		refresh := false

		if cookie, err := r.Cookie(CookieName); err == nil {
			claims, err := m.tokens.ValidateToken(cookie.Value)
			if err == nil {
				sessionID = claims.SessionID
				refresh = m.tokens.NeedsRefresh(claims)
			} else {
				log.Debug().Err(err).Msg("Invalid session cookie, starting new session")
			}
		}

		if sessionID == "" {
			newID, err := NewSessionID()
			if err != nil {
				log.Error().Err(err).Msg("Failed to generate session ID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			sessionID = newID
			refresh = true
		}

		if refresh {
			if err := m.issueCookie(w, sessionID); err != nil {
				log.Error().Err(err).Msg("Failed to sign session token")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// issueCookie signs a fresh token for sessionID, sliding its expiry forward.
func (m *Middleware) issueCookie(w http.ResponseWriter, sessionID string) error {
	token, err := m.tokens.GenerateToken(sessionID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   m.maxAge,
	})

	return nil
}

// IDFromContext returns the session id set by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

