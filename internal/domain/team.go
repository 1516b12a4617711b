package domain

// Member is a user belonging to a team.
type Member struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Team is an organization team and its roster.
type Team struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	MembersCount int      `json:"members_count"`
	Members      []Member `json:"members"`
}

// TeamsResponse is the roster of every team of an organization.
type TeamsResponse struct {
	TotalTeams int    `json:"total_teams"`
	Teams      []Team `json:"teams"`
}

// NewTeamsResponse builds a response whose total always matches the team list.
func NewTeamsResponse(teams []Team) *TeamsResponse {
	if teams == nil {
		teams = []Team{}
	}
	for i := range teams {
		if teams[i].Members == nil {
			teams[i].Members = []Member{}
		}
		teams[i].MembersCount = len(teams[i].Members)
	}
	return &TeamsResponse{TotalTeams: len(teams), Teams: teams}
}
