package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
)

// TeamRoster fetches the teams of an organization.
type TeamRoster struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
}

// NewTeamRoster creates a new TeamRoster instance.
func NewTeamRoster(fetcher gateway.Fetcher, logger *zap.SugaredLogger) *TeamRoster {
	return &TeamRoster{fetcher: fetcher, logger: logger}
}

// Fetch returns every team of org with its members. Any remote failure
// aborts the whole roster.
func (r *TeamRoster) Fetch(ctx context.Context, org string) (*domain.TeamsResponse, error) {
	r.logger.Debugw("Teams called", "org", org)
	teams, err := r.fetcher.FetchTeams(ctx, org)
	if err != nil {
		r.logger.Errorw("Teams failed", "org", org, "error", err)
		return nil, &domain.UpstreamError{Op: "error getting teams", Err: err}
	}
	resp := domain.NewTeamsResponse(teams)
	r.logger.Infow("Teams completed", "org", org, "total_teams", resp.TotalTeams)
	return resp, nil
}
