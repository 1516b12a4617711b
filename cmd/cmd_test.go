package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-insights/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		GitHub: config.GitHubConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8000/auth",
			DefaultOrg:   "acme",
		},
		Session:     config.SessionConfig{SecretKey: "key"},
		Aggregation: config.AggregationConfig{Concurrency: 3, BotPrefixes: []string{"renovate"}},
		GinMode:     "test",
	}
}

func TestNewRouter(t *testing.T) {
	r, err := newRouter(context.Background(), testConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{path: "/health", expectedStatus: http.StatusOK},
		{path: "/openapi.yaml", expectedStatus: http.StatusOK},
		{path: "/login", expectedStatus: http.StatusTemporaryRedirect},
		{path: "/repositories", expectedStatus: http.StatusUnauthorized},
		{path: "/perfil", expectedStatus: http.StatusUnauthorized},
		{path: "/nope", expectedStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAggregationOptions(t *testing.T) {
	opts := aggregationOptions(testConfig().Aggregation)

	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, []string{"renovate"}, opts.BotPrefixes)
	assert.NotNil(t, opts.Now)
}

func TestRunReport_TeamsRequiresOrg(t *testing.T) {
	_, err := runReport(context.Background(), reportTeams, "", nil, aggregationOptions(testConfig().Aggregation), zap.NewNop().Sugar())

	assert.ErrorContains(t, err, "DEFAULT_ORG")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeJSON(&buf, map[string]int{"total_teams": 2}))

	assert.Equal(t, "{\n  \"total_teams\": 2\n}\n", buf.String())
}
