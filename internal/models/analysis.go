package models

// ProjectFile is one file of a submitted codebase, path relative to the
// project root.
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// LanguageStat aggregates line and file counts for one language
type LanguageStat struct {
	Language  string `json:"language"`
	Lines     int    `json:"lines"`
	Files     int    `json:"files"`
	FirstPath string `json:"-"`
}

// StructureAnalysis is the deterministic output of the structure
// analyzer over a file set.
type StructureAnalysis struct {
	FileCount       int             `json:"file_count"`
	TotalLines      int             `json:"total_lines"`
	Languages       []*LanguageStat `json:"languages"`
	PrimaryLanguage string          `json:"primary_language"`
	ImportantFiles  []string        `json:"important_files"`
	BinaryFiles     []string        `json:"binary_files"`
}
