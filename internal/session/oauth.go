package session

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/naka-gawa/github-insights/internal/config"
)

// DefaultRedirect is where /auth sends the browser when no target was saved.
const DefaultRedirect = "/"

// OAuth runs the GitHub OAuth web flow.
type OAuth struct {
	conf   *oauth2.Config
	logger *zap.SugaredLogger
}

// NewOAuth creates the OAuth flow for the configured GitHub application.
func NewOAuth(cfg config.GitHubConfig, logger *zap.SugaredLogger) *OAuth {
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
		logger: logger,
	}
}

// RegisterRoutes mounts the login, relogin, callback and logout endpoints.
func (o *OAuth) RegisterRoutes(r gin.IRouter) {
	r.GET("/login", o.Login)
	r.GET("/relogin", o.Relogin)
	r.GET("/auth", o.Callback)
	r.GET("/logout", o.Logout)
}

// Login redirects to the GitHub authorize page.
func (o *OAuth) Login(c *gin.Context) {
	o.authorize(c)
}

// Relogin drops the current session and forces GitHub to ask for credentials again.
func (o *OAuth) Relogin(c *gin.Context) {
	sessions.Default(c).Clear()
	o.authorize(c, oauth2.SetAuthURLParam("prompt", "login"))
}

func (o *OAuth) authorize(c *gin.Context, opts ...oauth2.AuthCodeOption) {
	state := uuid.NewString()
	s := sessions.Default(c)
	s.Set(stateKey, state)
	s.Set(redirectToKey, safeRedirect(c.Query("redirect_to")))
	if err := s.Save(); err != nil {
		o.logger.Errorw("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to save session"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, o.conf.AuthCodeURL(state, opts...))
}

// Callback exchanges the authorization code for an access token and stores it
// in the session.
func (o *OAuth) Callback(c *gin.Context) {
	s := sessions.Default(c)
	expected := pop(s, stateKey)
	redirectTo := pop(s, redirectToKey)

	if expected == "" || c.Query("state") != expected {
		o.logger.Warnw("OAuth state mismatch")
		_ = s.Save()
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid OAuth state"})
		return
	}

	token, err := o.conf.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil || token.AccessToken == "" {
		o.logger.Warnw("OAuth code exchange failed", "error", err)
		_ = s.Save()
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "access token not obtained"})
		return
	}

	if err := SetToken(c, token.AccessToken); err != nil {
		o.logger.Errorw("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to save session"})
		return
	}
	if redirectTo == "" {
		redirectTo = DefaultRedirect
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectTo)
}

// Logout drops the stored token and expires the session cookie.
func (o *OAuth) Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	// The store forgets values on expiry only by cookie name, so the cleared
	// values are written under the session id first.
	err := s.Save()
	if err == nil {
		s.Options(sessions.Options{Path: "/", MaxAge: -1})
		err = s.Save()
	}
	if err != nil {
		o.logger.Errorw("failed to clear session", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}

// safeRedirect only accepts same-site absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultRedirect
	}
	return target
}
