package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/trackexport/internal/core"
	"github.com/JonMunkholm/trackexport/internal/logging"
)

type sessionCtxKey struct{}

// WithRequestMetadata records the client IP and User-Agent for fetch history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequester(ctx, core.Requester{IP: clientIP(r), UserAgent: r.UserAgent()})
}

// sessionMiddleware resolves the browser session from its cookie, creating
// one and setting the cookie when missing or expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.service.Session(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		ctx = logging.WithSession(ctx, sess.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session attached by sessionMiddleware.
func sessionFrom(r *http.Request) *core.Session {
	sess, _ := r.Context().Value(sessionCtxKey{}).(*core.Session)
	return sess
}
