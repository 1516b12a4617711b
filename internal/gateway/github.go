// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-insights/internal/domain"
)

// Pull request states accepted by FetchPullRequests.
const (
	PRStateOpen   = "open"
	PRStateClosed = "closed"
	PRStateAll    = "all"
)

const perPage = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub
// on behalf of a single principal.
type Fetcher interface {
	ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error)
	FetchLastCommitDate(ctx context.Context, owner, repo string) (*time.Time, error)
	FetchCommitDates(ctx context.Context, owner, repo string, since time.Time) ([]time.Time, error)
	FetchPullRequests(ctx context.Context, owner, repo, state string) ([]domain.PullRequest, error)
	FetchIssues(ctx context.Context, owner, repo string) ([]domain.Issue, error)
	FetchCollaborators(ctx context.Context, owner, repo string) ([]string, error)
	FetchLanguages(ctx context.Context, owner, repo string) (*domain.Weights, error)
	FetchBranches(ctx context.Context, owner, repo string) ([]string, error)
	FetchRepositoryEvents(ctx context.Context, owner, repo string) ([]domain.RepoEvent, error)
	FetchAuthenticatedUser(ctx context.Context) (*domain.Account, error)
	// FetchTeams resolves an organization and returns its teams with members.
	FetchTeams(ctx context.Context, org string) ([]domain.Team, error)
}

// Factory builds a Fetcher authenticated with the given access token.
type Factory func(token string) (Fetcher, error)

// Config tunes the HTTP stack shared by every gateway.
type Config struct {
	// RateLimitMaxSleep caps a single wait on a secondary rate limit.
	RateLimitMaxSleep time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.SugaredLogger
}

// orgTeamsQuery lists an organization's teams with the first page of members.
type orgTeamsQuery struct {
	Organization struct {
		Teams struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				DatabaseID int64 `graphql:"databaseId"`
				Name       string
				Slug       string
				Members    struct {
					PageInfo struct {
						HasNextPage bool
						EndCursor   githubv4.String
					}
					Nodes []teamMemberNode
				} `graphql:"members(first: 100)"`
			}
		} `graphql:"teams(first: 50, after: $cursor)"`
	} `graphql:"organization(login: $login)"`
}

// teamMembersQuery continues the member list of a single team.
type teamMembersQuery struct {
	Organization struct {
		Team struct {
			Members struct {
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
				Nodes []teamMemberNode
			} `graphql:"members(first: 100, after: $cursor)"`
		} `graphql:"team(slug: $slug)"`
	} `graphql:"organization(login: $login)"`
}

type teamMemberNode struct {
	DatabaseID int64 `graphql:"databaseId"`
	Login      string
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, cfg Config, logger *zap.SugaredLogger) (Fetcher, error) {
	waiter, err := newRateLimitWaiter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newGateway(token, waiter, logger), nil
}

// NewFactory returns a Factory producing GitHubGateway instances. Gateways
// built for the same token share one rate limit waiter, so concurrent
// requests of a principal back off together.
func NewFactory(cfg Config, logger *zap.SugaredLogger) Factory {
	waiters := &waiterPool{cfg: cfg, logger: logger, byToken: map[string]http.RoundTripper{}}
	return func(token string) (Fetcher, error) {
		waiter, err := waiters.get(token)
		if err != nil {
			return nil, err
		}
		return newGateway(token, waiter, logger), nil
	}
}

type waiterPool struct {
	cfg     Config
	logger  *zap.SugaredLogger
	mu      sync.Mutex
	byToken map[string]http.RoundTripper
}

func (p *waiterPool) get(token string) (http.RoundTripper, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.byToken[token]; ok {
		return w, nil
	}
	w, err := newRateLimitWaiter(p.cfg, p.logger)
	if err != nil {
		return nil, err
	}
	p.byToken[token] = w
	return w, nil
}

func newRateLimitWaiter(cfg Config, logger *zap.SugaredLogger) (http.RoundTripper, error) {
	maxSleep := cfg.RateLimitMaxSleep
	if maxSleep <= 0 {
		maxSleep = time.Hour
	}
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(maxSleep, nil),
		github_ratelimit.WithLimitDetectedCallback(func(cb *github_ratelimit.CallbackContext) {
			logger.Warnw("secondary rate limit detected", "sleep_until", cb.SleepUntil)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	return waiter, nil
}

// newGateway authenticates every call with token on top of the waiter.
func newGateway(token string, waiter http.RoundTripper, logger *zap.SugaredLogger) *GitHubGateway {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}
}

// collectPages follows NextPage links until the last page.
func collectPages[T any](list func(opts github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	opts := github.ListOptions{PerPage: perPage}
	all := []T{}
	for {
		items, resp, err := list(opts)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (g *GitHubGateway) ListRepositories(ctx context.Context) ([]domain.RepositoryRef, error) {
	g.logger.Debugw("listing repositories of the authenticated user")
	repos, err := collectPages(func(lo github.ListOptions) ([]*github.Repository, *github.Response, error) {
		return g.restClient.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	refs := make([]domain.RepositoryRef, 0, len(repos))
	for _, r := range repos {
		refs = append(refs, domain.RepositoryRef{
			Owner:       r.GetOwner().GetLogin(),
			Name:        r.GetName(),
			Description: r.GetDescription(),
			CreatedAt:   r.GetCreatedAt().Time,
		})
	}
	g.logger.Debugw("listed repositories", "count", len(refs))
	return refs, nil
}

// FetchLastCommitDate returns the committer date of the newest commit on the
// default branch, or nil when the repository has no commits.
func (g *GitHubGateway) FetchLastCommitDate(ctx context.Context, owner, repo string) (*time.Time, error) {
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s/%s: %w", owner, repo, err)
	}
	if len(commits) == 0 {
		return nil, nil
	}
	date := commits[0].GetCommit().GetCommitter().GetDate().Time
	if date.IsZero() {
		return nil, nil
	}
	return &date, nil
}

// FetchCommitDates returns the author dates of commits made since the given time.
func (g *GitHubGateway) FetchCommitDates(ctx context.Context, owner, repo string, since time.Time) ([]time.Time, error) {
	commits, err := collectPages(func(lo github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
		return g.restClient.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{Since: since, ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s/%s: %w", owner, repo, err)
	}
	dates := make([]time.Time, 0, len(commits))
	for _, c := range commits {
		dates = append(dates, c.GetCommit().GetAuthor().GetDate().Time)
	}
	return dates, nil
}

func (g *GitHubGateway) FetchPullRequests(ctx context.Context, owner, repo, state string) ([]domain.PullRequest, error) {
	prs, err := collectPages(func(lo github.ListOptions) ([]*github.PullRequest, *github.Response, error) {
		return g.restClient.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{State: state, ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s pull requests of %s/%s: %w", state, owner, repo, err)
	}
	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, domain.PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			URL:       pr.GetHTMLURL(),
			Author:    pr.GetUser().GetLogin(),
			Assignee:  pr.GetAssignee().GetLogin(),
			Labels:    labelNames(pr.Labels),
			CreatedAt: pr.GetCreatedAt().Time,
		})
	}
	return out, nil
}

// FetchIssues returns the open issues of a repository. Pull requests, which
// the issues endpoint also reports, are skipped.
func (g *GitHubGateway) FetchIssues(ctx context.Context, owner, repo string) ([]domain.Issue, error) {
	issues, err := collectPages(func(lo github.ListOptions) ([]*github.Issue, *github.Response, error) {
		return g.restClient.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issues of %s/%s: %w", owner, repo, err)
	}
	out := make([]domain.Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.IsPullRequest() {
			continue
		}
		out = append(out, domain.Issue{
			Number:    iss.GetNumber(),
			Title:     iss.GetTitle(),
			Body:      iss.GetBody(),
			Labels:    labelNames(iss.Labels),
			CreatedAt: iss.GetCreatedAt().Time,
		})
	}
	return out, nil
}

func (g *GitHubGateway) FetchCollaborators(ctx context.Context, owner, repo string) ([]string, error) {
	users, err := collectPages(func(lo github.ListOptions) ([]*github.User, *github.Response, error) {
		return g.restClient.Repositories.ListCollaborators(ctx, owner, repo, &github.ListCollaboratorsOptions{ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators of %s/%s: %w", owner, repo, err)
	}
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.GetLogin())
	}
	return logins, nil
}

func (g *GitHubGateway) FetchLanguages(ctx context.Context, owner, repo string) (*domain.Weights, error) {
	langs, _, err := g.restClient.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages of %s/%s: %w", owner, repo, err)
	}
	return domain.WeightsFromMap(langs), nil
}

func (g *GitHubGateway) FetchBranches(ctx context.Context, owner, repo string) ([]string, error) {
	branches, err := collectPages(func(lo github.ListOptions) ([]*github.Branch, *github.Response, error) {
		return g.restClient.Repositories.ListBranches(ctx, owner, repo, &github.BranchListOptions{ListOptions: lo})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of %s/%s: %w", owner, repo, err)
	}
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.GetName())
	}
	return names, nil
}

func (g *GitHubGateway) FetchRepositoryEvents(ctx context.Context, owner, repo string) ([]domain.RepoEvent, error) {
	events, err := collectPages(func(lo github.ListOptions) ([]*github.Event, *github.Response, error) {
		return g.restClient.Activity.ListRepositoryEvents(ctx, owner, repo, &lo)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events of %s/%s: %w", owner, repo, err)
	}
	out := make([]domain.RepoEvent, 0, len(events))
	for _, e := range events {
		out = append(out, domain.RepoEvent{
			Type:      e.GetType(),
			Repo:      e.GetRepo().GetName(),
			Org:       e.GetOrg().GetLogin(),
			Public:    e.GetPublic(),
			CreatedAt: e.GetCreatedAt().Time,
		})
	}
	return out, nil
}

func (g *GitHubGateway) FetchAuthenticatedUser(ctx context.Context) (*domain.Account, error) {
	u, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return &domain.Account{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		AvatarURL:   u.GetAvatarURL(),
		Bio:         u.GetBio(),
		Location:    u.GetLocation(),
		Blog:        u.GetBlog(),
		Email:       u.GetEmail(),
		PublicRepos: u.GetPublicRepos(),
		DiskUsage:   u.DiskUsage,
		CreatedAt:   u.GetCreatedAt().Time,
		UpdatedAt:   u.GetUpdatedAt().Time,
	}, nil
}

// FetchTeams lists the organization's teams through GraphQL. Members beyond
// the first page are fetched with a follow-up query per team.
func (g *GitHubGateway) FetchTeams(ctx context.Context, org string) ([]domain.Team, error) {
	g.logger.Debugw("fetching teams", "org", org)
	variables := map[string]interface{}{
		"login":  githubv4.String(org),
		"cursor": (*githubv4.String)(nil),
	}
	teams := []domain.Team{}
	for {
		var q orgTeamsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for teams of %s: %w", org, err)
		}
		for _, node := range q.Organization.Teams.Nodes {
			team := domain.Team{ID: node.DatabaseID, Name: node.Name, Members: toMembers(node.Members.Nodes)}
			if node.Members.PageInfo.HasNextPage {
				rest, err := g.fetchRemainingMembers(ctx, org, node.Slug, node.Members.PageInfo.EndCursor)
				if err != nil {
					return nil, err
				}
				team.Members = append(team.Members, rest...)
			}
			teams = append(teams, team)
		}
		if !q.Organization.Teams.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Organization.Teams.PageInfo.EndCursor)
		g.logger.Debugw("fetching next page of teams", "org", org)
	}
	g.logger.Debugw("completed fetching teams", "org", org, "count", len(teams))
	return teams, nil
}

func (g *GitHubGateway) fetchRemainingMembers(ctx context.Context, org, slug string, cursor githubv4.String) ([]domain.Member, error) {
	variables := map[string]interface{}{
		"login":  githubv4.String(org),
		"slug":   githubv4.String(slug),
		"cursor": githubv4.NewString(cursor),
	}
	var members []domain.Member
	for {
		var q teamMembersQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for members of %s/%s: %w", org, slug, err)
		}
		members = append(members, toMembers(q.Organization.Team.Members.Nodes)...)
		if !q.Organization.Team.Members.PageInfo.HasNextPage {
			return members, nil
		}
		variables["cursor"] = githubv4.NewString(q.Organization.Team.Members.PageInfo.EndCursor)
	}
}

func toMembers(nodes []teamMemberNode) []domain.Member {
	members := make([]domain.Member, 0, len(nodes))
	for _, n := range nodes {
		members = append(members, domain.Member{ID: n.DatabaseID, Login: n.Login})
	}
	return members
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}
