package trace

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/raphi011/cleanart/internal/artifact"
)

// fingerprintTarget is the log target cargo prefixes its fingerprint lines with.
const fingerprintTarget = "cargo::core::compiler::fingerprint"

// ExtractArtifact returns the artifact a fingerprint line refers to.
//
// The line must mention "mtime". Its quoted substrings are tried from last to
// first; the first one with a traceable extension that lies under root wins.
// consumer is a best-effort name of the unit whose check produced the line,
// for reporting only.
func ExtractArtifact(root, line string) (path, consumer string, ok bool) {
	if !strings.Contains(line, "mtime") || !utf8.ValidString(line) {
		return "", "", false
	}

	quoted := quotedStrings(line)
	for i := len(quoted) - 1; i >= 0; i-- {
		p := quoted[i]
		if !artifact.Traceable(p) || !within(root, p) {
			continue
		}
		return filepath.Clean(p), consumerOf(line), true
	}
	return "", "", false
}

// quotedStrings returns the contents of every "..." pair on the line.
// An unterminated trailing quote is ignored.
func quotedStrings(line string) []string {
	parts := strings.Split(line, `"`)
	var out []string
	for i := 1; i < len(parts)-1; i += 2 {
		out = append(out, parts[i])
	}
	return out
}

// within reports whether path is root itself or lies below it.
func within(root, path string) bool {
	if root == "" || !filepath.IsAbs(path) {
		return false
	}
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}

// consumerOf extracts the subject of "caused by <subject>" or, failing that,
// of `mtime for "<subject>"`.
func consumerOf(line string) string {
	if _, rest, ok := strings.Cut(line, "caused by "); ok {
		rest = strings.TrimLeft(rest, "`\"'")
		if end := strings.IndexAny(rest, "`\"' \t"); end >= 0 {
			rest = rest[:end]
		}
		if rest != "" {
			return rest
		}
	}
	if _, rest, ok := strings.Cut(line, `mtime for "`); ok {
		if subject, _, ok := strings.Cut(rest, `"`); ok {
			return subject
		}
	}
	return ""
}

// isDiagnostic reports whether a line belongs to the fingerprint log rather
// than to the build's normal output.
func isDiagnostic(line string) bool {
	return strings.Contains(line, fingerprintTarget)
}
