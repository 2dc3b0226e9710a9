package artifact

import (
	"path/filepath"
	"strings"
)

// libPrefix is carried by rlib/rmeta/so files but not by .d/.o/.dwo files.
const libPrefix = "lib"

// Name is a parsed artifact file name.
type Name struct {
	Lib   bool   // a leading "lib" was stripped
	Crate string // never empty for a successfully parsed name
	Hash  string // empty when the stem has no '-'
	Ext   string // everything after the first '.', may contain further dots
}

// HasHash reports whether the name carries a build hash.
func (n Name) HasHash() bool {
	return n.Hash != ""
}

// Stem returns "crate-hash", or "" for names without a hash.
func (n Name) Stem() string {
	if !n.HasHash() {
		return ""
	}
	return n.Crate + "-" + n.Hash
}

// Parse splits a file name into its artifact parts.
//
// The "lib" prefix is stripped first, then the remainder is split at its first
// '.' into stem and extension chain, then the stem is split at its last '-'
// into crate name and hash. ok is false if no crate name remains.
func Parse(filename string) (n Name, ok bool) {
	rest := filename
	if after, found := strings.CutPrefix(rest, libPrefix); found {
		n.Lib = true
		rest = after
	}

	stem, ext, _ := strings.Cut(rest, ".")
	n.Ext = ext

	if i := strings.LastIndexByte(stem, '-'); i >= 0 {
		n.Crate = stem[:i]
		n.Hash = stem[i+1:]
	} else {
		n.Crate = stem
	}

	if n.Crate == "" {
		return Name{}, false
	}
	return n, true
}

// Stem returns the "crate-hash" grouping key of a file name.
// Names without a hash are not build artifacts and return ok == false.
func Stem(filename string) (string, bool) {
	n, ok := Parse(filepath.Base(filename))
	if !ok || !n.HasHash() {
		return "", false
	}
	return n.Stem(), true
}

// CrateKey returns the first '-' delimited segment of a file's stem, with the
// "lib" prefix removed. It is the per-crate bucket used in statistics.
func CrateKey(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimPrefix(base, libPrefix)
	stem, _, _ := strings.Cut(base, ".")
	key, _, _ := strings.Cut(stem, "-")
	if key == "" {
		return "unknown"
	}
	return key
}

// OutputName returns the crate identity of a final build output that lives
// directly in a profile directory (a binary, a cdylib, a top-level rlib).
//
// The last extension and the "lib" prefix are removed and '-' is mapped to
// '_', because binary names keep dashes while deps/ artifacts use underscores.
// An empty result means the file cannot name a crate (e.g. ".cargo-lock").
func OutputName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimPrefix(name, libPrefix)
	return NormalizeCrate(name)
}

// NormalizeCrate maps '-' to '_' so both spellings of a crate name compare equal.
func NormalizeCrate(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// traceable lists the extensions a fingerprint log line may legitimately
// point at: rlib archives, rmeta metadata, shared objects, dylibs, dlls and
// import libraries.
var traceable = map[string]bool{
	"rlib":  true,
	"rmeta": true,
	"so":    true,
	"dylib": true,
	"dll":   true,
	"lib":   true,
}

// Traceable reports whether path has an extension on the tracer allow-list.
func Traceable(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return traceable[ext]
}

// SessionCrate returns the crate that owns an incremental session directory
// named "<crate>-<session_hash>". The split happens at the last '-'.
func SessionCrate(dirname string) (string, bool) {
	i := strings.LastIndexByte(dirname, '-')
	if i <= 0 || i == len(dirname)-1 {
		return "", false
	}
	return dirname[:i], true
}
