// Package trace runs one build command with cargo's fingerprint diagnostics
// at trace level and records which artifacts under the output root the build
// looked at.
//
// Every fingerprint check cargo performs logs the mtimes it compared, e.g.
//
//	max output mtime for "serde v1.0.200" is "/p/target/debug/deps/libserde-1a2b.rmeta" 1718000000.1s
//
// An artifact that appears in such a line is load-bearing for the next build.
// The set is an observation, not a proof: it is only as complete as cargo's
// logging, so the cleaner treats it as one liveness signal among several.
//
// The child's stdout and stderr are drained by one goroutine each. Both feed a
// single channel that is consumed by the goroutine calling [Tracer.Trace], so
// neither pipe can fill up and stall the build while the other is idle.
package trace
