package exclude

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected *Pattern
	}{
		{
			name:     "simple pattern",
			pattern:  "*.txt",
			expected: &Pattern{Raw: "*.txt"},
		},
		{
			name:     "negated pattern",
			pattern:  "!important.txt",
			expected: &Pattern{Raw: "!important.txt", Negated: true},
		},
		{
			name:     "directory only pattern",
			pattern:  "node_modules/",
			expected: &Pattern{Raw: "node_modules/", DirOnly: true},
		},
		{
			name:     "recursive pattern",
			pattern:  "**/cache",
			expected: &Pattern{Raw: "**/cache", Recursive: true},
		},
		{
			name:     "complex recursive pattern",
			pattern:  "src/**/*.go",
			expected: &Pattern{Raw: "src/**/*.go", Recursive: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parsePattern(tt.pattern)
			require.NoError(t, err)

			assert.Equal(t, tt.expected.Raw, result.Raw)
			assert.Equal(t, tt.expected.Negated, result.Negated)
			assert.Equal(t, tt.expected.DirOnly, result.DirOnly)
			assert.Equal(t, tt.expected.Recursive, result.Recursive)
			assert.NotNil(t, result.Regex)
		})
	}
}

func TestPatternMatches(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		expected bool
	}{
		{name: "wildcard matches file", pattern: "*.txt", path: "test.txt", expected: true},
		{name: "wildcard doesn't match directory", pattern: "*.txt", path: "test.txt", isDir: true, expected: false},
		{name: "directory only matches directory", pattern: "logs/", path: "logs", isDir: true, expected: true},
		{name: "directory only doesn't match file", pattern: "logs/", path: "logs", expected: false},
		{name: "recursive pattern matches nested", pattern: "**/cache", path: "deep/nested/cache", isDir: true, expected: true},
		{name: "absolute pattern matches root", pattern: "/config.json", path: "config.json", expected: true},
		{name: "absolute pattern doesn't match nested", pattern: "/config.json", path: "subdir/config.json", expected: false},
		{name: "question mark matches single char", pattern: "test?.txt", path: "test1.txt", expected: true},
		{name: "negated pattern still matches, negation is handled by Matcher", pattern: "!important.txt", path: "important.txt", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := parsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pattern.matches(tt.path, tt.isDir))
		})
	}
}

func TestParsePatternsFromReader(t *testing.T) {
	content := `
# This is a comment
*.txt
!important.txt
node_modules/
temp/
**/cache
`
	patternSet, err := ParsePatternsFromReader(strings.NewReader(content), "test")
	require.NoError(t, err)
	assert.Len(t, patternSet.GetPatterns(), 5)
}

func TestParsePatternsFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	patternFile := filepath.Join(tmpDir, ".testignore")
	content := "*.log\n.DS_Store\n/secret.txt\n"
	require.NoError(t, os.WriteFile(patternFile, []byte(content), 0644))

	patternSet, err := ParsePatterns(patternFile)
	require.NoError(t, err)
	assert.Len(t, patternSet.GetPatterns(), 3)
}

func TestPatternSetOperations(t *testing.T) {
	set := NewPatternSet()
	assert.True(t, set.IsEmpty())

	require.NoError(t, set.AddPattern("*.txt"))
	require.NoError(t, set.AddPattern("!important.txt"))

	assert.False(t, set.IsEmpty())
	assert.Len(t, set.GetPatterns(), 2)
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	patternSet, err := LoadFromFile(tmpDir)
	require.NoError(t, err)
	assert.True(t, patternSet.IsEmpty())

	ignoreFile := filepath.Join(tmpDir, ".nextcloudignore")
	content := "*.tmp\ntemp/\n!keep.tmp\n"
	require.NoError(t, os.WriteFile(ignoreFile, []byte(content), 0644))

	patternSet, err = LoadFromFile(tmpDir)
	require.NoError(t, err)
	assert.Len(t, patternSet.GetPatterns(), 3)
}
