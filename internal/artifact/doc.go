// Package artifact parses the file names cargo writes into a target directory.
//
// Compiled units follow the convention
//
//	[lib]<crate_name>-<hash>.<ext...>
//
// and incremental sessions are directories named <crate_name>-<session_hash>.
// These are conventions of the toolchain, not of this tool, so every parser
// here reports "not an artifact" instead of guessing when a name does not fit.
// Callers must never delete a file whose name failed to parse.
//
// # Stems
//
// All files produced for one compiled unit share a stem "crate-hash": the
// archive (libfoo-abc.rlib), its metadata sibling (libfoo-abc.rmeta), the
// dep-info file (foo-abc.d) and one object or split debug-info fragment per
// codegen unit (foo-abc.foo.cgu.00.rcgu.o). The stem is the unit of liveness.
package artifact
