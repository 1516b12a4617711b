package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
)

// CreatedAtLayout renders creation timestamps inside detail strings.
const CreatedAtLayout = "2006-01-02 15:04:05-07:00"

// OthersBucket collects bot pull requests whose labels name no repository language.
const OthersBucket = "Others"

// RepositoryAggregator builds the repository reports of one principal.
type RepositoryAggregator struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
	opts    Options
}

// NewRepositoryAggregator creates a new RepositoryAggregator instance.
func NewRepositoryAggregator(fetcher gateway.Fetcher, logger *zap.SugaredLogger, opts Options) *RepositoryAggregator {
	return &RepositoryAggregator{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// ListRepositories returns every repository with its last commit date and state.
func (a *RepositoryAggregator) ListRepositories(ctx context.Context) ([]domain.RepositorySummary, error) {
	a.logger.Debugw("ListRepositories called")
	repos, err := listRepositories(ctx, a.fetcher, "error getting repositories")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	now := a.opts.Now()
	summaries := forEachRepository(ctx, a.opts.Concurrency, repos, func(ctx context.Context, repo domain.RepositoryRef) domain.RepositorySummary {
		last := a.lastCommitDate(ctx, repo, partials)
		return domain.RepositorySummary{
			Name:        repo.Name,
			Owner:       repo.Owner,
			State:       domain.Classify(last, now),
			CreateDate:  repo.CreatedAt,
			LastUseDate: last,
		}
	})

	a.logger.Infow("ListRepositories completed", "count", len(summaries), "partial_failures", partials.total())
	return summaries, nil
}

// repositoryContribution is what one repository adds to the statistics summary.
type repositoryContribution struct {
	state         domain.State
	issues        int
	prsOpen       int
	prsClosed     int
	prsBot        int
	collaborators []string
	languages     *domain.Weights
}

// Statistics aggregates counts across every repository of the principal.
// Per-repository failures are logged and contribute nothing.
func (a *RepositoryAggregator) Statistics(ctx context.Context) (*domain.RepositoryStatsSummary, error) {
	a.logger.Debugw("Statistics called")
	repos, err := listRepositories(ctx, a.fetcher, "error getting repository statistics")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	now := a.opts.Now()
	contributions := forEachRepository(ctx, a.opts.Concurrency, repos, func(ctx context.Context, repo domain.RepositoryRef) repositoryContribution {
		return a.contribution(ctx, repo, now, partials)
	})

	summary := &domain.RepositoryStatsSummary{Repositories: len(repos)}
	collaborators := make(map[string]struct{})
	languages := domain.NewWeights()
	for _, c := range contributions {
		switch c.state {
		case domain.StateActive:
			summary.RepositoriesActive++
		case domain.StateInactive:
			summary.RepositoriesInactive++
		}
		summary.Issues += c.issues
		summary.PRsOpen += c.prsOpen
		summary.PRsClosed += c.prsClosed
		summary.PRsDependabot += c.prsBot
		for _, login := range c.collaborators {
			collaborators[login] = struct{}{}
		}
		languages.Merge(c.languages)
	}
	summary.Collaborators = len(collaborators)
	summary.PercentagesLanguages = domain.LabeledPercentages(domain.Normalize(languages))

	a.logger.Infow("Statistics completed",
		"repositories", summary.Repositories,
		"collaborators", summary.Collaborators,
		"partial_failures", partials.total(),
	)
	return summary, nil
}

func (a *RepositoryAggregator) contribution(ctx context.Context, repo domain.RepositoryRef, now time.Time, partials *partialFailures) repositoryContribution {
	var c repositoryContribution

	if issues, err := a.fetcher.FetchIssues(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "issues", err)
	} else {
		c.issues = len(issues)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateOpen); err != nil {
		partials.report(repo, "open pull requests", err)
	} else {
		c.prsOpen = len(prs)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateClosed); err != nil {
		partials.report(repo, "closed pull requests", err)
	} else {
		c.prsClosed = len(prs)
	}
	if logins, err := a.fetcher.FetchCollaborators(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "collaborators", err)
	} else {
		c.collaborators = logins
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateAll); err != nil {
		partials.report(repo, "pull requests", err)
	} else {
		c.prsBot = len(a.botPullRequests(prs))
	}
	if langs, err := a.fetcher.FetchLanguages(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "languages", err)
	} else {
		c.languages = langs
	}
	c.state = domain.Classify(a.lastCommitDate(ctx, repo, partials), now)
	return c
}

// lastCommitDate degrades any failure to an unknown date.
func (a *RepositoryAggregator) lastCommitDate(ctx context.Context, repo domain.RepositoryRef, partials *partialFailures) *time.Time {
	last, err := a.fetcher.FetchLastCommitDate(ctx, repo.Owner, repo.Name)
	if err != nil {
		partials.report(repo, "last commit", err)
		return nil
	}
	return last
}

func (a *RepositoryAggregator) botPullRequests(prs []domain.PullRequest) []domain.PullRequest {
	var bots []domain.PullRequest
	for _, pr := range prs {
		if a.opts.isBot(pr.Author) {
			bots = append(bots, pr)
		}
	}
	return bots
}

// findRepository scans the principal's repositories for name. The first
// repository with that exact name wins.
func (a *RepositoryAggregator) findRepository(ctx context.Context, name, op string) (domain.RepositoryRef, error) {
	repos, err := listRepositories(ctx, a.fetcher, op)
	if err != nil {
		return domain.RepositoryRef{}, err
	}
	repo, ok := findRepository(repos, name)
	if !ok {
		return domain.RepositoryRef{}, &domain.NotFoundError{Kind: "Repository", Name: name}
	}
	return repo, nil
}

// Detail describes a single repository. When botBreakdown is set, bot pull
// requests are grouped by the repository language named in their labels.
func (a *RepositoryAggregator) Detail(ctx context.Context, name string, botBreakdown bool) (*domain.RepositoryDetail, error) {
	a.logger.Debugw("Detail called", "repository", name, "bot_breakdown", botBreakdown)
	repo, err := a.findRepository(ctx, name, "error getting repository detail")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	detail := &domain.RepositoryDetail{
		Name:                repo.Name,
		Description:         repo.Description,
		Collaborators:       []string{},
		PRsOpen:             []string{},
		PRsClosed:           []string{},
		PRsDependabot:       map[string][]domain.BotPullRequest{},
		IssuesDetails:       []string{},
		BranchesDetails:     []string{},
		LanguagesPercentage: []string{},
	}

	if logins, err := a.fetcher.FetchCollaborators(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "collaborators", err)
	} else {
		detail.Collaborators = append(detail.Collaborators, logins...)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateOpen); err != nil {
		partials.report(repo, "open pull requests", err)
	} else {
		detail.PRsOpen = describePullRequests(prs)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateClosed); err != nil {
		partials.report(repo, "closed pull requests", err)
	} else {
		detail.PRsClosed = describePullRequests(prs)
	}
	if branches, err := a.fetcher.FetchBranches(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "branches", err)
	} else {
		for _, b := range branches {
			detail.BranchesDetails = append(detail.BranchesDetails, fmt.Sprintf("Branch name: %s --- Owner: %s", b, repo.Owner))
		}
	}
	if issues, err := a.fetcher.FetchIssues(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "issues", err)
	} else {
		for _, iss := range issues {
			detail.IssuesDetails = append(detail.IssuesDetails, describeIssue(iss))
		}
	}
	langs, err := a.fetcher.FetchLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		partials.report(repo, "languages", err)
	} else {
		detail.LanguagesPercentage = domain.LabeledPercentages(domain.Normalize(langs))
	}

	if botBreakdown {
		if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateAll); err != nil {
			partials.report(repo, "pull requests", err)
		} else {
			detail.PRsDependabot = groupByLanguage(a.botPullRequests(prs), langs)
		}
	}

	a.logger.Infow("Detail completed", "repository", name, "partial_failures", partials.total())
	return detail, nil
}

// DetailStatistics returns the totals of a single repository.
func (a *RepositoryAggregator) DetailStatistics(ctx context.Context, name string) (*domain.RepositoryDetailStats, error) {
	a.logger.Debugw("DetailStatistics called", "repository", name)
	repo, err := a.findRepository(ctx, name, "error getting repository detail statistics")
	if err != nil {
		return nil, err
	}

	partials := newPartialFailures(a.logger)
	stats := &domain.RepositoryDetailStats{PercentagesLanguages: []string{}}

	if logins, err := a.fetcher.FetchCollaborators(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "collaborators", err)
	} else {
		stats.Collaborators = len(logins)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateOpen); err != nil {
		partials.report(repo, "open pull requests", err)
	} else {
		stats.PRsOpen = len(prs)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateClosed); err != nil {
		partials.report(repo, "closed pull requests", err)
	} else {
		stats.PRsClosed = len(prs)
	}
	if issues, err := a.fetcher.FetchIssues(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "issues", err)
	} else {
		stats.Issues = len(issues)
	}
	if branches, err := a.fetcher.FetchBranches(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "branches", err)
	} else {
		stats.Branches = len(branches)
	}
	if prs, err := a.fetcher.FetchPullRequests(ctx, repo.Owner, repo.Name, gateway.PRStateAll); err != nil {
		partials.report(repo, "pull requests", err)
	} else {
		stats.PRsDependabot = len(a.botPullRequests(prs))
	}
	if langs, err := a.fetcher.FetchLanguages(ctx, repo.Owner, repo.Name); err != nil {
		partials.report(repo, "languages", err)
	} else {
		stats.PercentagesLanguages = domain.LabeledPercentages(domain.Normalize(langs))
	}

	a.logger.Infow("DetailStatistics completed", "repository", name, "partial_failures", partials.total())
	return stats, nil
}

func describePullRequests(prs []domain.PullRequest) []string {
	out := make([]string, 0, len(prs))
	for _, pr := range prs {
		assignee := pr.Assignee
		if assignee == "" {
			assignee = "N/A"
		}
		out = append(out, fmt.Sprintf("Pull #%d: %s. Assigned to: %s, created on: %s",
			pr.Number, pr.Title, assignee, pr.CreatedAt.Format(CreatedAtLayout)))
	}
	return out
}

func describeIssue(iss domain.Issue) string {
	return fmt.Sprintf("Issue #%d Title: %s --- Description: %s --- Type: %s",
		iss.Number, iss.Title, iss.Body, strings.Join(iss.Labels, ", "))
}

// groupByLanguage buckets pull requests under the first label matching a
// repository language, case-insensitively, or under OthersBucket.
func groupByLanguage(prs []domain.PullRequest, langs *domain.Weights) map[string][]domain.BotPullRequest {
	groups := map[string][]domain.BotPullRequest{}
	known := langs.Categories()
	for _, pr := range prs {
		bucket := OthersBucket
	labels:
		for _, label := range pr.Labels {
			for _, lang := range known {
				if strings.EqualFold(label, lang) {
					bucket = lang
					break labels
				}
			}
		}
		groups[bucket] = append(groups[bucket], domain.BotPullRequest{
			Number:    pr.Number,
			Title:     pr.Title,
			URL:       pr.URL,
			CreatedAt: pr.CreatedAt.Format(CreatedAtLayout),
		})
	}
	return groups
}
