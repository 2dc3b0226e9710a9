// Package clean decides which files in a cargo target directory are dead and
// deletes them.
//
// The decision is made per deps directory by [ScanDeps], which expands a
// traced set of used artifacts to whole stems and protects the crates of
// final outputs. [ScanIncremental] keeps only the newest incremental session
// of each crate. Both produce a [Stats] value; values from independent scans
// are combined with [Merge], which does not depend on completion order.
//
// [Planner] runs these scans concurrently for every profile a trace touched.
// [Remover] then deletes a selection of the candidates and returns a second
// Stats describing what was really removed. A failed item never stops the
// remaining ones.
//
// Nothing is ever deleted during a scan. Callers must not call Remove after a
// failed trace: an unobserved artifact is not proof of a dead one.
package clean
