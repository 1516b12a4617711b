package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/domain"
)

func TestTeamRoster_Fetch(t *testing.T) {
	testCases := []struct {
		name      string
		teams     []domain.Team
		fetchErr  error
		expected  *domain.TeamsResponse
		expectErr bool
	}{
		{
			name: "happy path",
			teams: []domain.Team{
				{ID: 1, Name: "core", Members: []domain.Member{{ID: 10, Login: "alice"}, {ID: 11, Login: "bob"}}},
				{ID: 2, Name: "docs"},
			},
			expected: &domain.TeamsResponse{
				TotalTeams: 2,
				Teams: []domain.Team{
					{ID: 1, Name: "core", MembersCount: 2, Members: []domain.Member{{ID: 10, Login: "alice"}, {ID: 11, Login: "bob"}}},
					{ID: 2, Name: "docs", MembersCount: 0, Members: []domain.Member{}},
				},
			},
		},
		{
			name:     "organization without teams",
			teams:    []domain.Team{},
			expected: &domain.TeamsResponse{TotalTeams: 0, Teams: []domain.Team{}},
		},
		{
			name:      "fetch failure aborts",
			fetchErr:  errors.New("Could not resolve to an Organization"),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.fetchErr != nil {
				fetcher.On("FetchTeams", mock.Anything, "acme").Return(nil, tc.fetchErr)
			} else {
				fetcher.On("FetchTeams", mock.Anything, "acme").Return(tc.teams, nil)
			}
			roster := NewTeamRoster(fetcher, zap.NewNop().Sugar())

			resp, err := roster.Fetch(context.Background(), "acme")

			if tc.expectErr {
				assert.ErrorIs(t, err, domain.ErrUpstream)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resp)
			fetcher.AssertExpectations(t)
		})
	}
}
