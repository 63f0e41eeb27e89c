// Package model holds the data types shared across the store, classifier,
// executor and orchestrator: Pair and Entry, as defined by the data model.
package model

// WildcardExtension is the allowlist token meaning "any extension".
const WildcardExtension = ".*"

// Pair is one sync configuration: a remote root paired with a local root,
// filtered by an extension allowlist and optional exclude patterns.
type Pair struct {
	ID                int64
	UUID              string
	RemoteRoot        string
	LocalRoot         string
	AllowedExtensions []string // lowercase, leading dot; may be [WildcardExtension]
	ExcludePatterns   []string
}

// AllowsExtension reports whether ext (lowercase, leading dot, "" for
// extensionless files) passes this pair's allowlist.
func (p Pair) AllowsExtension(ext string) bool {
	for _, allowed := range p.AllowedExtensions {
		if allowed == WildcardExtension || allowed == ext {
			return true
		}
	}
	return false
}

// Entry is one row of the state store: the engine's knowledge of one file
// at one pair-relative path.
type Entry struct {
	PairID          int64
	Path            string
	RemoteMtime     int64 // ms since epoch; 0 means "unknown/never observed"
	RemoteMtimePrev int64
	ExistsRemote    bool
	LocalMtime      int64 // ms since epoch, truncated to whole seconds
	LocalMtimePrev  int64
	ExistsLocal     bool
	Synced          bool
	CapturedAt      int64
}
