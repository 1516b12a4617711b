package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
)

// UserAggregator builds the per-owner and per-principal reports.
type UserAggregator struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
	opts    Options
}

// NewUserAggregator creates a new UserAggregator instance.
func NewUserAggregator(fetcher gateway.Fetcher, logger *zap.SugaredLogger, opts Options) *UserAggregator {
	return &UserAggregator{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

type ownerContribution struct {
	languages *domain.Weights
	actions   int
}

// Statistics groups the principal's repositories by owner login.
func (a *UserAggregator) Statistics(ctx context.Context) (*domain.UsersStats, error) {
	a.logger.Debugw("UserStatistics called")
	repos, err := listRepositories(ctx, a.fetcher, "error getting user repositories")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	now := a.opts.Now()
	contributions := forEachRepository(ctx, a.opts.Concurrency, repos, func(ctx context.Context, repo domain.RepositoryRef) ownerContribution {
		var c ownerContribution
		if langs, err := a.fetcher.FetchLanguages(ctx, repo.Owner, repo.Name); err != nil {
			partials.report(repo, "languages", err)
		} else {
			c.languages = langs
		}
		if actions, err := a.actionsToday(ctx, repo, now); err != nil {
			partials.report(repo, "actions", err)
		} else {
			c.actions = actions
		}
		return c
	})

	result := &domain.UsersStats{UsersStatistics: make(map[string]*domain.UserStat)}
	languages := make(map[string]*domain.Weights)
	for i, repo := range repos {
		stat, ok := result.UsersStatistics[repo.Owner]
		if !ok {
			stat = &domain.UserStat{}
			result.UsersStatistics[repo.Owner] = stat
			languages[repo.Owner] = domain.NewWeights()
		}
		stat.ReposCount++
		stat.ActionsPerDay += contributions[i].actions
		languages[repo.Owner].Merge(contributions[i].languages)
	}
	for owner, stat := range result.UsersStatistics {
		stat.Languages = domain.PercentageMap(domain.Normalize(languages[owner]))
	}

	a.logger.Infow("UserStatistics completed", "owners", len(result.UsersStatistics), "partial_failures", partials.total())
	return result, nil
}

// actionsToday counts open pull requests, issues and commits created on the
// calendar day of now. Any failure voids the whole count.
func (a *UserAggregator) actionsToday(ctx context.Context, repo domain.RepositoryRef, now time.Time) (int, error) {
	count := 0
	prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateOpen)
	if err != nil {
		return 0, err
	}
	for _, pr := range prs {
		if sameDay(pr.CreatedAt, now) {
			count++
		}
	}
	issues, err := a.fetcher.FetchIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		return 0, err
	}
	for _, iss := range issues {
		if sameDay(iss.CreatedAt, now) {
			count++
		}
	}
	dates, err := a.fetcher.FetchCommitDates(ctx, repo.Owner, repo.Name, startOfDay(now))
	if err != nil {
		return 0, err
	}
	for _, d := range dates {
		if sameDay(d, now) {
			count++
		}
	}
	return count, nil
}

// Activity lists the events of every repository of the principal, tagged
// with the principal's disk usage.
func (a *UserAggregator) Activity(ctx context.Context) ([]domain.Event, error) {
	a.logger.Debugw("Activity called")
	account, err := a.fetcher.FetchAuthenticatedUser(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "error getting user events", Err: err}
	}
	repos, err := listRepositories(ctx, a.fetcher, "error getting user events")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	perRepo := forEachRepository(ctx, a.opts.Concurrency, repos, func(ctx context.Context, repo domain.RepositoryRef) []domain.RepoEvent {
		events, err := a.fetcher.FetchRepositoryEvents(ctx, repo.Owner, repo.Name)
		if err != nil {
			partials.report(repo, "events", err)
			return nil
		}
		return events
	})

	events := []domain.Event{}
	for _, repoEvents := range perRepo {
		for _, e := range repoEvents {
			events = append(events, domain.NewEvent(e, account.DiskUsage))
		}
	}

	a.logger.Infow("Activity completed", "events", len(events), "partial_failures", partials.total())
	return events, nil
}

// Profile returns the authenticated principal's profile.
func (a *UserAggregator) Profile(ctx context.Context) (*domain.Profile, error) {
	account, err := a.fetcher.FetchAuthenticatedUser(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "error getting profile", Err: err}
	}
	profile := domain.NewProfile(*account)
	return &profile, nil
}
