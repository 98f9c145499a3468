// Package routepath implements the cursor-based path-matching state that
// the wisp grammar (package wisp) and the filter set (package rfilter)
// advance as they consume a request path segment by segment and, within a
// segment, piece by piece.
package routepath

import "strings"

// PathState tracks how much of a request path has been consumed while a
// router tries to match it. Cursor addresses a segment ("row"); Offset
// addresses a byte position within that segment ("column"), letting a
// single segment be split across several grammar pieces (a Comb wisp).
type PathState struct {
	Parts  []string
	Cursor int
	Offset int

	order  []string
	params map[string]string
}

// New splits path on '/', dropping empty segments (leading/trailing
// slashes and repeated slashes collapse), and returns a PathState
// positioned at the first segment.
func New(path string) *PathState {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return &PathState{
		Parts:  parts,
		params: make(map[string]string),
	}
}

// Snapshot captures the cursor position so a failed match attempt can
// restore it exactly, per the router's cursor-restore-on-any-false rule.
type Snapshot struct {
	cursor    int
	offset    int
	paramLen  int
	orderLen  int
}

// Save returns a Snapshot of the current position.
func (s *PathState) Save() Snapshot {
	return Snapshot{cursor: s.Cursor, offset: s.Offset, paramLen: len(s.params), orderLen: len(s.order)}
}

// Restore rewinds the cursor and discards any params captured since snap
// was taken.
func (s *PathState) Restore(snap Snapshot) {
	s.Cursor = snap.cursor
	s.Offset = snap.offset
	for len(s.order) > snap.orderLen {
		last := s.order[len(s.order)-1]
		s.order = s.order[:len(s.order)-1]
		delete(s.params, last)
	}
}

// EndOfSegments reports whether every segment has been fully consumed.
func (s *PathState) EndOfSegments() bool {
	return s.Cursor >= len(s.Parts)
}

// current returns the segment currently being scanned, or "" if exhausted.
func (s *PathState) current() string {
	if s.Cursor >= len(s.Parts) {
		return ""
	}
	return s.Parts[s.Cursor]
}

// EndOfSegment reports whether the current segment has been fully
// consumed (Offset has reached its end).
func (s *PathState) EndOfSegment() bool {
	return s.Offset >= len(s.current())
}

// Pick returns the unconsumed remainder of the current segment, and
// whether a segment is currently available at all.
func (s *PathState) Pick() (string, bool) {
	if s.Cursor >= len(s.Parts) {
		return "", false
	}
	return s.current()[s.Offset:], true
}

// Forward advances the cursor n bytes within the current segment. If that
// exhausts the segment, the cursor moves on to the next segment with
// Offset reset to 0.
func (s *PathState) Forward(n int) {
	cur := s.current()
	s.Offset += n
	if s.Offset >= len(cur) {
		s.Cursor++
		s.Offset = 0
	}
}

// NextSegment unconditionally advances to the start of the next segment,
// abandoning whatever remains unconsumed of the current one. Used by
// greedy wildcards that swallow the rest of a segment outright.
func (s *PathState) NextSegment() {
	s.Cursor++
	s.Offset = 0
}

// AllRest joins the unconsumed remainder of every remaining segment back
// together with "/", including whatever is left of the current segment.
// Used by "**name"-style greedy wildcards that capture the rest of the
// path wholesale.
func (s *PathState) AllRest() string {
	if s.Cursor >= len(s.Parts) {
		return ""
	}
	rest := make([]string, 0, len(s.Parts)-s.Cursor)
	rest = append(rest, s.current()[s.Offset:])
	rest = append(rest, s.Parts[s.Cursor+1:]...)
	return strings.Join(rest, "/")
}

// SetParam records a named capture, preserving first-insertion order.
func (s *PathState) SetParam(name, value string) {
	if _, exists := s.params[name]; !exists {
		s.order = append(s.order, name)
	}
	s.params[name] = value
}

// Params returns the captures made so far as an ordinary map, for handing
// off to request-params middleware once a match has fully succeeded.
func (s *PathState) Params() map[string]string {
	out := make(map[string]string, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}

// ParamOrder returns capture names in first-insertion order.
func (s *PathState) ParamOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
