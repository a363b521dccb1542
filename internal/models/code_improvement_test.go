package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected ImprovementCategory
		coerced  bool
	}{
		{name: "Known category", raw: "performance", expected: CategoryPerformance},
		{name: "Uppercase", raw: "Readability", expected: CategoryReadability},
		{name: "Space separated", raw: "error handling", expected: CategoryErrorHandling},
		{name: "Hyphen separated", raw: "best-practice", expected: CategoryBestPractice},
		{name: "Plural best practices", raw: "best practices", expected: CategoryBestPractice},
		{name: "Unknown coerces to maintainability", raw: "architecture", expected: CategoryMaintainability, coerced: true},
		{name: "Empty coerces to maintainability", raw: "", expected: CategoryMaintainability, coerced: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			category, coerced := NormalizeCategory(tc.raw)
			assert.Equal(t, tc.expected, category)
			assert.Equal(t, tc.coerced, coerced)
		})
	}
}

func TestNormalizeImpact(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected ImpactLevel
		coerced  bool
	}{
		{name: "High", raw: "high", expected: ImpactHigh},
		{name: "Uppercase medium", raw: "MEDIUM", expected: ImpactMedium},
		{name: "Low", raw: "low", expected: ImpactLow},
		{name: "Unknown coerces to low", raw: "severe", expected: ImpactLow, coerced: true},
		{name: "Empty coerces to low", raw: "", expected: ImpactLow, coerced: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			impact, coerced := NormalizeImpact(tc.raw)
			assert.Equal(t, tc.expected, impact)
			assert.Equal(t, tc.coerced, coerced)
		})
	}
}

func TestValidImprovementStatus(t *testing.T) {
	for _, valid := range []string{"pending", "implemented", "dismissed"} {
		_, ok := ValidImprovementStatus(valid)
		assert.True(t, ok, valid)
	}

	for _, invalid := range []string{"", "done", "PENDING"} {
		_, ok := ValidImprovementStatus(invalid)
		assert.False(t, ok, invalid)
	}
}
