package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSections(t *testing.T) {
	t.Run("All five sections", func(t *testing.T) {
		content := "# Overview\nIntro text.\n\n# Setup\nRun make.\n\n# Architecture\nLayered.\n\n# API\nREST.\n\n# Usage\nCall it.\n"

		sections := ParseSections(content)

		assert.Equal(t, "Intro text.", sections["overview"])
		assert.Equal(t, "Run make.", sections["setup"])
		assert.Equal(t, "Layered.", sections["architecture"])
		assert.Equal(t, "REST.", sections["api"])
		assert.Equal(t, "Call it.", sections["usage"])
	})

	t.Run("Missing section stays absent", func(t *testing.T) {
		content := "# Overview\nJust an overview.\n"

		sections := ParseSections(content)

		assert.Equal(t, "Just an overview.", sections["overview"])
		_, hasSetup := sections["setup"]
		assert.False(t, hasSetup)
	})

	t.Run("Heading match is case insensitive", func(t *testing.T) {
		content := "# OVERVIEW\nLoud intro.\n"

		sections := ParseSections(content)

		assert.Equal(t, "Loud intro.", sections["overview"])
	})

	t.Run("Unknown headings are ignored", func(t *testing.T) {
		content := "# Overview\nIntro.\n\n# Contributing\nPlease do.\n\n# Setup\nInstall.\n"

		sections := ParseSections(content)

		assert.Equal(t, "Intro.", sections["overview"])
		assert.Equal(t, "Install.", sections["setup"])
		assert.Len(t, sections, 2)
	})

	t.Run("Subheadings stay inside their section", func(t *testing.T) {
		content := "# Architecture\nTop level.\n\n## Components\nDetails.\n"

		sections := ParseSections(content)

		assert.Contains(t, sections["architecture"], "Top level.")
		assert.Contains(t, sections["architecture"], "## Components")
	})

	t.Run("Empty content", func(t *testing.T) {
		sections := ParseSections("")

		assert.Empty(t, sections)
	})
}

func TestStripMarkdownFence(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		expected string
	}{
		{name: "No fence", response: "# Overview\nText.", expected: "# Overview\nText."},
		{name: "Fenced with language tag", response: "```markdown\n# Overview\nText.\n```", expected: "# Overview\nText."},
		{name: "Fenced without language tag", response: "```\n# Overview\n```", expected: "# Overview"},
		{name: "Surrounding whitespace", response: "  \n# Overview\n  ", expected: "# Overview"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdownFence(tc.response))
		})
	}
}
