// Package session keeps the OAuth access token of a browser principal in a
// server-side store keyed by a signed session id cookie, and implements the
// GitHub OAuth web flow around it.
package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"

	"github.com/naka-gawa/github-insights/internal/config"
)

// CookieName is the name of the session id cookie.
const CookieName = "session"

const (
	tokenKey      = "token"
	stateKey      = "state"
	redirectToKey = "redirect_to"
)

// Middleware installs the in-memory session store. Only the signed session id
// reaches the browser; values stay in process memory.
func Middleware(cfg config.SessionConfig) gin.HandlerFunc {
	store := memstore.NewStore([]byte(cfg.SecretKey))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(CookieName, store)
}

// Token returns the access token stored in the session, or "".
func Token(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(tokenKey).(string)
	return token
}

// SetToken stores the access token in the session.
func SetToken(c *gin.Context, token string) error {
	s := sessions.Default(c)
	s.Set(tokenKey, token)
	return s.Save()
}

// pop reads and removes a string value. The caller saves the session.
func pop(s sessions.Session, key string) string {
	v, _ := s.Get(key).(string)
	s.Delete(key)
	return v
}
