package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelenshq/codelens/internal/models"
)

func TestValidateFileSet(t *testing.T) {
	testCases := []struct {
		name    string
		files   []models.ProjectFile
		wantErr bool
	}{
		{
			name:  "Single file",
			files: []models.ProjectFile{{Path: "main.go", Content: "package main"}},
		},
		{
			name:    "Empty set",
			files:   nil,
			wantErr: true,
		},
		{
			name:    "File without a path",
			files:   []models.ProjectFile{{Path: "  ", Content: "x"}},
			wantErr: true,
		},
		{
			name:    "Parent traversal",
			files:   []models.ProjectFile{{Path: "../../other/code/main.go", Content: "x"}},
			wantErr: true,
		},
		{
			name:    "Traversal hidden mid-path",
			files:   []models.ProjectFile{{Path: "src/../../escape.go", Content: "x"}},
			wantErr: true,
		},
		{
			name:    "Windows-style traversal",
			files:   []models.ProjectFile{{Path: "..\\..\\escape.go", Content: "x"}},
			wantErr: true,
		},
		{
			name:  "Dot segments that stay inside",
			files: []models.ProjectFile{{Path: "src/./util/../main.go", Content: "x"}},
		},
		{
			name: "Too many files",
			files: func() []models.ProjectFile {
				files := make([]models.ProjectFile, maxProjectFiles+1)
				for i := range files {
					files[i] = models.ProjectFile{Path: "f.go", Content: "x"}
				}
				return files
			}(),
			wantErr: true,
		},
		{
			name: "Oversized submission",
			files: []models.ProjectFile{
				{Path: "huge.bin", Content: strings.Repeat("x", maxProjectBytes+1)},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFileSet(tc.files)
			if tc.wantErr {
				var validationErr *models.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
