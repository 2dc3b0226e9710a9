package clean

import "maps"

// CrateStat aggregates removal candidates of one crate.
type CrateStat struct {
	Files int   `json:"files" yaml:"files"`
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// ProfileStat aggregates one profile directory, e.g. "debug" or
// "wasm32-unknown-unknown/release".
type ProfileStat struct {
	Files         int   `json:"files" yaml:"files"`
	Bytes         int64 `json:"bytes" yaml:"bytes"`
	UsedBytes     int64 `json:"used_bytes" yaml:"used_bytes"`
	TotalDirBytes int64 `json:"total_dir_bytes" yaml:"total_dir_bytes"`
}

// Candidate is a file or directory marked for removal.
type Candidate struct {
	Path    string `json:"path" yaml:"path"`
	Size    int64  `json:"size" yaml:"size"`
	Profile string `json:"profile" yaml:"profile"`
}

// ErrorKey identifies a failed item.
type ErrorKey struct {
	Crate   string
	Profile string
	Path    string
}

// Stats is the result of a scan or of a removal.
//
// After a scan, Files and Bytes count what would be removed. After a removal
// they count what was removed. Combine partial results with Merge.
type Stats struct {
	Files     int
	Bytes     int64
	UsedBytes int64 // kept because in use

	PerCrate   map[string]CrateStat
	PerProfile map[string]ProfileStat

	FilesToRemove []Candidate
	DirsToRemove  []Candidate // stale incremental sessions

	Errors map[ErrorKey]error
}

// Empty reports whether there is nothing to remove.
func (s *Stats) Empty() bool {
	return len(s.FilesToRemove) == 0 && len(s.DirsToRemove) == 0
}

// FileBytes sums the sizes of FilesToRemove.
func (s *Stats) FileBytes() int64 {
	return sumSizes(s.FilesToRemove)
}

// DirBytes sums the sizes of DirsToRemove.
func (s *Stats) DirBytes() int64 {
	return sumSizes(s.DirsToRemove)
}

func sumSizes(cs []Candidate) int64 {
	var n int64
	for _, c := range cs {
		n += c.Size
	}
	return n
}

// Merge returns the combination of a and b. Neither input is modified.
//
// Counters and map entries are summed, candidate lists are concatenated and
// errors are unioned with b winning on a key collision. The operation is
// associative, and commutative up to the order of the candidate lists.
func Merge(a, b Stats) Stats {
	var out Stats
	out.MergeFrom(a)
	out.MergeFrom(b)
	return out
}

// MergeFrom folds other into s.
func (s *Stats) MergeFrom(other Stats) {
	s.Files += other.Files
	s.Bytes += other.Bytes
	s.UsedBytes += other.UsedBytes

	for name, o := range other.PerCrate {
		c := s.crate(name)
		c.Files += o.Files
		c.Bytes += o.Bytes
		s.PerCrate[name] = c
	}
	for name, o := range other.PerProfile {
		p := s.profile(name)
		p.Files += o.Files
		p.Bytes += o.Bytes
		p.UsedBytes += o.UsedBytes
		p.TotalDirBytes += o.TotalDirBytes
		s.PerProfile[name] = p
	}

	s.FilesToRemove = append(s.FilesToRemove, other.FilesToRemove...)
	s.DirsToRemove = append(s.DirsToRemove, other.DirsToRemove...)

	if len(other.Errors) > 0 {
		if s.Errors == nil {
			s.Errors = make(map[ErrorKey]error, len(other.Errors))
		}
		maps.Copy(s.Errors, other.Errors)
	}
}

func (s *Stats) crate(name string) CrateStat {
	if s.PerCrate == nil {
		s.PerCrate = make(map[string]CrateStat)
	}
	return s.PerCrate[name]
}

func (s *Stats) profile(name string) ProfileStat {
	if s.PerProfile == nil {
		s.PerProfile = make(map[string]ProfileStat)
	}
	return s.PerProfile[name]
}

// addRemovable accounts a file candidate.
func (s *Stats) addRemovable(c Candidate, crate string) {
	s.FilesToRemove = append(s.FilesToRemove, c)
	s.count(c, crate)
}

// addStaleDir accounts a directory candidate. Directories have no crate bucket.
func (s *Stats) addStaleDir(c Candidate) {
	s.DirsToRemove = append(s.DirsToRemove, c)
	s.count(c, "")
}

// count adds c to the totals and, if crate is set, to its crate bucket.
func (s *Stats) count(c Candidate, crate string) {
	s.Files++
	s.Bytes += c.Size
	if crate != "" {
		cs := s.crate(crate)
		cs.Files++
		cs.Bytes += c.Size
		s.PerCrate[crate] = cs
	}
	p := s.profile(c.Profile)
	p.Files++
	p.Bytes += c.Size
	s.PerProfile[c.Profile] = p
}

// addUsed accounts a kept file.
func (s *Stats) addUsed(profile string, size int64) {
	s.UsedBytes += size
	p := s.profile(profile)
	p.UsedBytes += size
	s.PerProfile[profile] = p
}

// addError records a failed item.
func (s *Stats) addError(key ErrorKey, err error) {
	if s.Errors == nil {
		s.Errors = make(map[ErrorKey]error)
	}
	s.Errors[key] = err
}
