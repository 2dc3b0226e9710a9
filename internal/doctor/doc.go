// Package doctor checks that the environment can run a clean.
//
// Checks are grouped into three categories:
//
//   - [CategoryTools]: cargo and the configured shell are on PATH
//   - [CategoryConfig]: the global and local config files parse and validate
//   - [CategoryTarget]: the target directory resolves and exists, whether
//     CARGO_TARGET_DIR points at a shared directory, and whether another run
//     holds the lock
//
// Each [Issue] carries a severity. Only [SeverityError] issues make the
// doctor command fail.
package doctor
