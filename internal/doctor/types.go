package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategoryTools covers executables the clean run needs.
	CategoryTools IssueCategory = "tools"
	// CategoryConfig covers the global and local config files.
	CategoryConfig IssueCategory = "config"
	// CategoryTarget covers target directory resolution and sharing.
	CategoryTarget IssueCategory = "target"
)

// Severity says whether an issue blocks a clean.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Key         string        // tool name, file or path
	Description string        // human-readable description
	Hint        string        // how to resolve it
	Severity    Severity      // warnings don't fail the run
	Category    IssueCategory // issue category
}

// Report is the outcome of a doctor run.
type Report struct {
	Passed    []string // descriptions of passed checks
	Issues    []Issue
	TargetDir string // resolved target directory, empty if unresolved
}

// Errors counts issues with SeverityError.
func (r *Report) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}
