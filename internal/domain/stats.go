// Package domain contains the core data structures and domain logic for the application.
package domain

// RepositoryStatsSummary holds the totals computed across every repository of a principal.
type RepositoryStatsSummary struct {
	Repositories         int      `json:"repositories"`
	RepositoriesActive   int      `json:"repositoriesActive"`
	RepositoriesInactive int      `json:"repositoriesInactive"`
	PRsOpen              int      `json:"prsOpen"`
	PRsClosed            int      `json:"prsClosed"`
	PRsDependabot        int      `json:"prsDependabot"`
	Collaborators        int      `json:"collaborators"`
	Issues               int      `json:"issues"`
	PercentagesLanguages []string `json:"percentagesLanguages"`
}

// RepositoryDetailStats holds the totals of a single repository.
type RepositoryDetailStats struct {
	Collaborators        int      `json:"collaborators"`
	PRsOpen              int      `json:"prsOpen"`
	PRsClosed            int      `json:"prsClosed"`
	PRsDependabot        int      `json:"prsDependabot"`
	Issues               int      `json:"issues"`
	Branches             int      `json:"branches"`
	PercentagesLanguages []string `json:"percentagesLanguages"`
}

// UserStat is the per-owner accumulator of the user statistics report.
// Languages maps a language name to a "pp.pp%" string.
type UserStat struct {
	ReposCount    int               `json:"repos_count"`
	Languages     map[string]string `json:"languages"`
	ActionsPerDay int               `json:"actions_per_day"`
}

// UsersStats maps an owner login to its statistics.
type UsersStats struct {
	UsersStatistics map[string]*UserStat `json:"users_statistics"`
}
