package domain

import "time"

// RepositoryRef identifies a repository returned by a listing, with the few
// descriptive fields the aggregators read without a further call.
type RepositoryRef struct {
	Owner       string
	Name        string
	Description string
	CreatedAt   time.Time
}

// PullRequest is the subset of a pull request the aggregators read.
type PullRequest struct {
	Number    int
	Title     string
	URL       string
	Author    string
	Assignee  string
	Labels    []string
	CreatedAt time.Time
}

// Issue is the subset of an issue the aggregators read.
type Issue struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	CreatedAt time.Time
}

// RepositorySummary is one entry of the repository listing.
type RepositorySummary struct {
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	State       State      `json:"state"`
	CreateDate  time.Time  `json:"createDate"`
	LastUseDate *time.Time `json:"lastUseDate"`
}

// BotPullRequest is a bot-authored pull request inside the grouped detail view.
type BotPullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// RepositoryDetail describes a single repository with human-readable lists.
type RepositoryDetail struct {
	Name                string                      `json:"name"`
	Description         string                      `json:"description"`
	Collaborators       []string                    `json:"collaborators"`
	PRsOpen             []string                    `json:"prsOpen"`
	PRsClosed           []string                    `json:"prsClosed"`
	PRsDependabot       map[string][]BotPullRequest `json:"prsDependabot"`
	IssuesDetails       []string                    `json:"issuesDetails"`
	BranchesDetails     []string                    `json:"branchesDetails"`
	LanguagesPercentage []string                    `json:"languagesPercentage"`
}
