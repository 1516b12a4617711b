// Package usecase contains the business logic of the application: the
// aggregators that fan out over a principal's repositories and fold the
// results into reports.
package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
)

// DefaultBotPrefix is the login prefix of the dependency bot counted in reports.
const DefaultBotPrefix = "dependabot"

// Options tunes every aggregator.
type Options struct {
	// Concurrency bounds the number of repositories processed at once.
	Concurrency int
	// BotPrefixes are login prefixes identifying bot-authored pull requests.
	BotPrefixes []string
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns sequential processing with the dependabot prefix.
func DefaultOptions() Options {
	return Options{
		Concurrency: 1,
		BotPrefixes: []string{DefaultBotPrefix},
		Now:         time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if len(o.BotPrefixes) == 0 {
		o.BotPrefixes = []string{DefaultBotPrefix}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) isBot(login string) bool {
	for _, p := range o.BotPrefixes {
		if strings.HasPrefix(login, p) {
			return true
		}
	}
	return false
}

// partialFailures records per-repository fetch failures of one aggregation.
// A failure is logged and the repository contributes an empty value.
type partialFailures struct {
	logger *zap.SugaredLogger
	count  atomic.Int64
}

func newPartialFailures(logger *zap.SugaredLogger) *partialFailures {
	return &partialFailures{logger: logger}
}

func (p *partialFailures) report(repo domain.RepositoryRef, resource string, err error) {
	p.count.Add(1)
	p.logger.Warnw("partial fetch failure",
		"repository", repo.Owner+"/"+repo.Name,
		"resource", resource,
		"error", err,
	)
}

func (p *partialFailures) total() int64 {
	return p.count.Load()
}

// forEachRepository runs fn for every repository with at most limit calls in
// flight. Results keep the order of repos. fn reports its own failures, so the
// group never cancels.
func forEachRepository[T any](ctx context.Context, limit int, repos []domain.RepositoryRef, fn func(ctx context.Context, repo domain.RepositoryRef) T) []T {
	out := make([]T, len(repos))
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			out[i] = fn(ctx, repo)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// listRepositories lists the principal's repositories, turning a failure
// into an UpstreamError.
func listRepositories(ctx context.Context, fetcher gateway.Fetcher, op string) ([]domain.RepositoryRef, error) {
	repos, err := fetcher.ListRepositories(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	return repos, nil
}

func findRepository(repos []domain.RepositoryRef, name string) (domain.RepositoryRef, bool) {
	for _, r := range repos {
		if r.Name == name {
			return r, true
		}
	}
	return domain.RepositoryRef{}, false
}

func sameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
