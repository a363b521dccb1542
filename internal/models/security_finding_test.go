package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeverity(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected Severity
		coerced  bool
	}{
		{name: "Known severity", raw: "high", expected: SeverityHigh},
		{name: "Uppercase", raw: "CRITICAL", expected: SeverityCritical},
		{name: "Surrounding whitespace", raw: " medium ", expected: SeverityMedium},
		{name: "Unknown coerces to info", raw: "catastrophic", expected: SeverityInfo, coerced: true},
		{name: "Empty coerces to info", raw: "", expected: SeverityInfo, coerced: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			severity, coerced := NormalizeSeverity(tc.raw)
			assert.Equal(t, tc.expected, severity)
			assert.Equal(t, tc.coerced, coerced)
		})
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Less(t, SeverityLow.Rank(), SeverityInfo.Rank())
}

func TestFindingDedupKey(t *testing.T) {
	line := 10
	otherLine := 11

	t.Run("Same location and category collide", func(t *testing.T) {
		a := NewSecurityFinding("p1")
		a.FilePath = "db.py"
		a.LineNumber = &line
		a.Category = "Injection"

		b := NewSecurityFinding("p1")
		b.FilePath = "db.py"
		b.LineNumber = &line
		b.Category = "injection"

		assert.Equal(t, a.DedupKey(), b.DedupKey())
	})

	t.Run("Different lines do not collide", func(t *testing.T) {
		a := NewSecurityFinding("p1")
		a.FilePath = "db.py"
		a.LineNumber = &line
		a.Category = "injection"

		b := NewSecurityFinding("p1")
		b.FilePath = "db.py"
		b.LineNumber = &otherLine
		b.Category = "injection"

		assert.NotEqual(t, a.DedupKey(), b.DedupKey())
	})

	t.Run("Missing line number is its own bucket", func(t *testing.T) {
		a := NewSecurityFinding("p1")
		a.FilePath = "db.py"
		a.Category = "injection"

		b := NewSecurityFinding("p1")
		b.FilePath = "db.py"
		b.LineNumber = &line
		b.Category = "injection"

		assert.NotEqual(t, a.DedupKey(), b.DedupKey())
	})
}

func TestValidFindingStatus(t *testing.T) {
	for _, valid := range []string{"open", "acknowledged", "fixed", "false_positive", "wont_fix"} {
		_, ok := ValidFindingStatus(valid)
		assert.True(t, ok, valid)
	}

	for _, invalid := range []string{"", "resolved", "OPEN", "closed"} {
		_, ok := ValidFindingStatus(invalid)
		assert.False(t, ok, invalid)
	}
}
