package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelenshq/codelens/internal/models"
)

func TestParseFindings(t *testing.T) {
	service := NewSecurityService(nil, nil)

	t.Run("Plain JSON array", func(t *testing.T) {
		response := `[
			{"severity": "high", "category": "injection", "title": "SQL injection", "description": "Raw string concatenation", "file_path": "db.py", "line_number": 42, "recommendation": "Use parameters"}
		]`

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, models.SeverityHigh, findings[0].Severity)
		assert.Equal(t, "SQL injection", findings[0].Title)
		assert.Equal(t, 42, *findings[0].LineNumber)
		assert.False(t, findings[0].NeedsReview)
		assert.Equal(t, models.FindingStatusOpen, findings[0].Status)
	})

	t.Run("Fenced response with prose", func(t *testing.T) {
		response := "Here are the issues I found:\n```json\n[{\"severity\": \"low\", \"category\": \"config\", \"title\": \"Debug mode on\", \"file_path\": \"app.py\"}]\n```\nLet me know if you need more."

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, models.SeverityLow, findings[0].Severity)
	})

	t.Run("Unknown severity coerces to info and flags review", func(t *testing.T) {
		response := `[{"severity": "catastrophic", "category": "auth", "title": "Weak token", "file_path": "auth.go"}]`

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, models.SeverityInfo, findings[0].Severity)
		assert.True(t, findings[0].NeedsReview)
	})

	t.Run("Every reported item survives coercion", func(t *testing.T) {
		response := `[
			{"severity": "critical", "category": "a", "title": "One", "file_path": "x.go"},
			{"severity": "whatever", "category": "b", "title": "Two", "file_path": "y.go"},
			{"severity": "", "category": "c", "title": "Three", "file_path": "z.go"}
		]`

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Len(t, findings, 3)
	})

	t.Run("Duplicates collapse to first occurrence", func(t *testing.T) {
		response := `[
			{"severity": "high", "category": "injection", "title": "First", "file_path": "db.py", "line_number": 10},
			{"severity": "medium", "category": "injection", "title": "Second", "file_path": "db.py", "line_number": 10},
			{"severity": "high", "category": "injection", "title": "Different line", "file_path": "db.py", "line_number": 11}
		]`

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Len(t, findings, 2)
		assert.Equal(t, "First", findings[0].Title)
	})

	t.Run("Empty array is a valid outcome", func(t *testing.T) {
		findings, err := service.parseFindings("p1", "[]")

		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("Untitled items are dropped", func(t *testing.T) {
		response := `[{"severity": "high", "category": "misc", "file_path": "a.go"}]`

		findings, err := service.parseFindings("p1", response)

		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("No JSON array is a parse error", func(t *testing.T) {
		_, err := service.parseFindings("p1", "I could not analyze this project.")

		assert.Error(t, err)
		var parseErr *models.ProviderParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("Malformed JSON is a parse error", func(t *testing.T) {
		_, err := service.parseFindings("p1", `[{"severity": "high",]`)

		assert.Error(t, err)
		var parseErr *models.ProviderParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestExtractJSONArray(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		expected string
		wantErr  bool
	}{
		{name: "Bare array", response: `[1, 2]`, expected: `[1, 2]`},
		{name: "Array with prose around it", response: "Sure!\n[1]\nDone.", expected: "[1]"},
		{name: "Fenced with language tag", response: "```json\n[true]\n```", expected: "[true]"},
		{name: "Fenced without language tag", response: "```\n[]\n```", expected: "[]"},
		{name: "No array at all", response: "nothing here", wantErr: true},
		{name: "Reversed brackets", response: "] [", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSONArray(tc.response)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
