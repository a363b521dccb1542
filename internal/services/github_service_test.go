package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepoURL(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{name: "Plain https URL", url: "https://github.com/pallets/flask", owner: "pallets", repo: "flask"},
		{name: "Trailing slash", url: "https://github.com/pallets/flask/", owner: "pallets", repo: "flask"},
		{name: "Trailing .git", url: "https://github.com/pallets/flask.git", owner: "pallets", repo: "flask"},
		{name: "Dotted repo name", url: "https://github.com/golang/go.dev", owner: "golang", repo: "go.dev"},
		{name: "Hyphenated owner", url: "https://github.com/open-telemetry/opentelemetry-go", owner: "open-telemetry", repo: "opentelemetry-go"},
		{name: "Surrounding whitespace", url: "  https://github.com/pallets/flask  ", owner: "pallets", repo: "flask"},
		{name: "Not a github host", url: "https://gitlab.com/foo/bar", wantErr: true},
		{name: "Missing repo", url: "https://github.com/pallets", wantErr: true},
		{name: "Extra path segments", url: "https://github.com/pallets/flask/tree/main", wantErr: true},
		{name: "Empty", url: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repo, repo)
		})
	}
}
