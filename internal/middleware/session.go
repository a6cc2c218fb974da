package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	"github.com/noah-isme/course-enrollment-portal/pkg/response"
)

// ContextSessionKey is the gin context key storing the loaded *models.Session.
const ContextSessionKey = "portalSession"

type sessionManager interface {
	NewID() string
	Issue(id string) (string, time.Time, error)
	Parse(token string) (string, error)
	Load(ctx context.Context, id string) (*models.Session, error)
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
}

// Session resolves the signed session cookie, starting a new session when it
// is missing or invalid, and attaches the session state to the request.
func Session(sessions sessionManager, opts SessionOptions, logger *zap.Logger) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "portal_session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		var id string
		if token, err := c.Cookie(opts.CookieName); err == nil && token != "" {
			if parsed, parseErr := sessions.Parse(token); parseErr == nil {
				id = parsed
			} else {
				logger.Debug("discarding invalid session cookie", zap.Error(parseErr))
			}
		}
		if id == "" {
			id = sessions.NewID()
		}

		// Reissue on every request so active sessions slide forward.
		token, expiresAt, err := sessions.Issue(id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     opts.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		session, err := sessions.Load(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(service.WithSessionID(c.Request.Context(), id))
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session attached by Session.
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
