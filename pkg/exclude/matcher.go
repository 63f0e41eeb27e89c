package exclude

import "strings"

// Matcher tests pair-relative paths against a PatternSet.
type Matcher struct {
	patternSet *PatternSet
}

// NewMatcher builds a Matcher from a PatternSet. A nil or empty set
// excludes nothing.
func NewMatcher(patternSet *PatternSet) *Matcher {
	return &Matcher{patternSet: patternSet}
}

// ShouldExclude reports whether path (pair-relative, forward-slashed)
// should be excluded, applying patterns in order so a later negated
// pattern can un-exclude a path an earlier pattern matched.
func (m *Matcher) ShouldExclude(path string, isDir bool) bool {
	if m.patternSet == nil || m.patternSet.IsEmpty() {
		return false
	}

	excluded := false
	for _, pattern := range m.patternSet.GetPatterns() {
		if pattern.matches(path, isDir) {
			excluded = !pattern.Negated
		}
	}
	return excluded
}

// ShouldExcludeFile is ShouldExclude for a non-directory entry — the only
// shape the sync engine's remote-snapshot observer matches against, since
// WebDAV PROPFIND collections (directories) are always traversed and only
// leaf files are filtered.
func (m *Matcher) ShouldExcludeFile(path string) bool {
	return m.ShouldExclude(path, false)
}

// matches reports whether the pattern applies to path, given whether path
// names a directory.
func (p *Pattern) matches(path string, isDir bool) bool {
	if p.DirOnly && !isDir {
		return false
	}
	if !p.DirOnly && isDir && !p.Recursive {
		return false
	}
	return p.Regex.MatchString(strings.ReplaceAll(path, "\\", "/"))
}
