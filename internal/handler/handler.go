// Package handler provides the HTTP handlers of the insights API.
package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
	"github.com/naka-gawa/github-insights/internal/session"
	"github.com/naka-gawa/github-insights/internal/usecase"
)

// Handler serves every report endpoint. A fresh gateway is built per
// request for the request's principal.
type Handler struct {
	factory       gateway.Factory
	fallbackToken string
	defaultOrg    string
	opts          usecase.Options
	logger        *zap.SugaredLogger
}

// Config carries the handler dependencies.
type Config struct {
	Factory gateway.Factory
	// FallbackToken is used when a request has no session. May be empty.
	FallbackToken string
	DefaultOrg    string
	Options       usecase.Options
	Logger        *zap.SugaredLogger
}

// New creates a new handler instance.
func New(cfg Config) *Handler {
	return &Handler{
		factory:       cfg.Factory,
		fallbackToken: cfg.FallbackToken,
		defaultOrg:    cfg.DefaultOrg,
		opts:          cfg.Options,
		logger:        cfg.Logger,
	}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.GET("/repositories", h.ListRepositories)
	r.GET("/repositories/statistics", h.RepositoryStatistics)
	r.GET("/repository/:repo_name", h.RepositoryDetail)
	r.GET("/repository/:repo_name/statistics", h.RepositoryDetailStatistics)

	r.GET("/orgs/teams", h.DefaultOrgTeams)
	r.GET("/orgs/:org_name/teams", h.OrgTeams)

	r.GET("/users/statistics", h.UserStatistics)
	r.GET("/users/activity", h.UserActivity)
	r.GET("/perfil", h.Profile)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fetcher resolves the principal of the request and builds its gateway. The
// session token wins. sessionOnly disables the GITHUB_TOKEN fallback.
func (h *Handler) fetcher(c *gin.Context, sessionOnly bool) (gateway.Fetcher, error) {
	token := session.Token(c)
	if token == "" && !sessionOnly {
		token = h.fallbackToken
	}
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	f, err := h.factory(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return f, nil
}

// ListRepositories handles GET /repositories.
func (h *Handler) ListRepositories(c *gin.Context) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "repositories", err)
		return
	}
	resp, err := usecase.NewRepositoryAggregator(f, h.logger, h.opts).ListRepositories(c.Request.Context())
	if err != nil {
		h.fail(c, "repositories", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RepositoryStatistics handles GET /repositories/statistics.
func (h *Handler) RepositoryStatistics(c *gin.Context) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "repositories statistics", err)
		return
	}
	resp, err := usecase.NewRepositoryAggregator(f, h.logger, h.opts).Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, "repositories statistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RepositoryDetail handles GET /repository/:repo_name. The bot_breakdown
// query flag enables grouping of bot pull requests by language.
func (h *Handler) RepositoryDetail(c *gin.Context) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "repository detail", err)
		return
	}
	breakdown := c.Query("bot_breakdown") == "true"
	resp, err := usecase.NewRepositoryAggregator(f, h.logger, h.opts).Detail(c.Request.Context(), c.Param("repo_name"), breakdown)
	if err != nil {
		h.fail(c, "repository detail", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RepositoryDetailStatistics handles GET /repository/:repo_name/statistics.
func (h *Handler) RepositoryDetailStatistics(c *gin.Context) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "repository detail statistics", err)
		return
	}
	resp, err := usecase.NewRepositoryAggregator(f, h.logger, h.opts).DetailStatistics(c.Request.Context(), c.Param("repo_name"))
	if err != nil {
		h.fail(c, "repository detail statistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DefaultOrgTeams handles GET /orgs/teams.
func (h *Handler) DefaultOrgTeams(c *gin.Context) {
	h.teams(c, h.defaultOrg)
}

// OrgTeams handles GET /orgs/:org_name/teams.
func (h *Handler) OrgTeams(c *gin.Context) {
	h.teams(c, c.Param("org_name"))
}

func (h *Handler) teams(c *gin.Context, org string) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "teams", err)
		return
	}
	resp, err := usecase.NewTeamRoster(f, h.logger).Fetch(c.Request.Context(), org)
	if err != nil {
		h.fail(c, "teams", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UserStatistics handles GET /users/statistics.
func (h *Handler) UserStatistics(c *gin.Context) {
	f, err := h.fetcher(c, false)
	if err != nil {
		h.fail(c, "users statistics", err)
		return
	}
	resp, err := usecase.NewUserAggregator(f, h.logger, h.opts).Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, "users statistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UserActivity handles GET /users/activity. Requires a session.
func (h *Handler) UserActivity(c *gin.Context) {
	f, err := h.fetcher(c, true)
	if err != nil {
		h.fail(c, "users activity", err)
		return
	}
	resp, err := usecase.NewUserAggregator(f, h.logger, h.opts).Activity(c.Request.Context())
	if err != nil {
		h.fail(c, "users activity", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile handles GET /perfil. Requires a session.
func (h *Handler) Profile(c *gin.Context) {
	f, err := h.fetcher(c, true)
	if err != nil {
		h.fail(c, "profile", err)
		return
	}
	resp, err := usecase.NewUserAggregator(f, h.logger, h.opts).Profile(c.Request.Context())
	if err != nil {
		h.fail(c, "profile", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
