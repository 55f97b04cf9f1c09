package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voterguide-backend/internal/platform/ctxutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"github.com/yungbote/voterguide-backend/internal/services"
)

const DefaultSessionCookie = "voter-guide-session"

type SessionMiddleware struct {
	log        *logger.Logger
	sessions   services.SessionService
	cookieName string
	secure     bool
}

func NewSessionMiddleware(log *logger.Logger, sessions services.SessionService, cookieName string, secure bool) *SessionMiddleware {
	cookieName = strings.TrimSpace(cookieName)
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionMiddleware{
		log:        log.With("Middleware", "SessionMiddleware"),
		sessions:   sessions,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Attach resolves the session cookie into the request context. A missing
// or invalid cookie is replaced with a freshly issued one.
func (sm *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		if raw, err := c.Cookie(sm.cookieName); err == nil && raw != "" {
			parsed, perr := sm.sessions.Parse(raw)
			if perr != nil {
				sm.log.Debug("Session cookie rejected", "error", perr)
			}
			sid = parsed
		}
		if sid == "" {
			id, token, err := sm.sessions.Issue()
			if err != nil {
				sm.log.Error("Session issue failed", "error", err)
				c.Next()
				return
			}
			sid = id
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sm.cookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(sm.sessions.TTL().Seconds()),
				HttpOnly: true,
				Secure:   sm.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sid))
		c.Next()
	}
}
