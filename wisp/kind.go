// Package wisp implements the path-template grammar: parsing a route
// pattern such as "/users/{id:num(3..=10)}/emails" or
// "/first<id>world<**rest>" into a sequence of matchable pieces, and
// matching those pieces against a routepath.PathState as a request is
// routed.
package wisp

import (
	"strings"

	"github.com/talav/zorya/routepath"
)

// Kind is one piece of a parsed path pattern: a literal, a named capture,
// a constrained-character run, a regex capture, or a comb of several of
// these sharing one URL segment.
type Kind interface {
	// Validate reports whether the wisp is internally well-formed.
	// Called once at construction time; an error here aborts route
	// registration rather than failing at request time.
	Validate() error
	// Detect tries to consume state starting at its current cursor. On
	// success it advances state and returns true; on failure it must
	// leave state exactly as found (callers still snapshot/restore
	// around it defensively).
	Detect(state *routepath.PathState) bool
}

// wildMode classifies a named capture's greediness, derived from its
// name's "**"/"*+"/"*?" prefix.
type wildMode int

const (
	wildNone        wildMode = iota // plain "{name}" / "<name>"
	wildGreedyAny                   // "**name": matches everything, including empty and '/'
	wildGreedyNonEmpty             // "*+name": like wildGreedyAny but rejects an empty match
	wildSameSegment                // "*?name": refuses to match across a '/'
)

func classifyWild(name string) (wildMode, string) {
	switch {
	case strings.HasPrefix(name, "**"):
		return wildGreedyAny, name
	case strings.HasPrefix(name, "*+"):
		return wildGreedyNonEmpty, name
	case strings.HasPrefix(name, "*?"):
		return wildSameSegment, name
	default:
		return wildNone, name
	}
}

// ConstWisp matches a fixed literal against the head of the remaining
// segment text.
type ConstWisp struct {
	Value string
}

func (w *ConstWisp) Validate() error { return nil }

func (w *ConstWisp) Detect(state *routepath.PathState) bool {
	picked, ok := state.Pick()
	if !ok {
		return false
	}
	if !strings.HasPrefix(picked, w.Value) {
		return false
	}
	state.Forward(len(w.Value))
	return true
}

// NamedWisp captures a run of text under Name. Its wild mode (derived
// from Name's "**"/"*+"/"*?" prefix) controls whether it consumes just the
// rest of the current segment or greedily swallows everything remaining.
type NamedWisp struct {
	Name string
	wild wildMode
}

// NewNamed builds a NamedWisp, classifying its wildcard mode from name.
func NewNamed(name string) *NamedWisp {
	mode, _ := classifyWild(name)
	return &NamedWisp{Name: name, wild: mode}
}

func (w *NamedWisp) Validate() error { return nil }

func (w *NamedWisp) Detect(state *routepath.PathState) bool {
	if w.wild != wildNone {
		rest := state.AllRest()
		if w.wild == wildSameSegment {
			trimmed := strings.Trim(rest, "/")
			if strings.Contains(trimmed, "/") {
				return false
			}
		}
		if rest == "" && w.wild == wildGreedyNonEmpty {
			return false
		}
		state.SetParam(w.Name, rest)
		state.Cursor = len(state.Parts)
		state.Offset = 0
		return true
	}
	picked, ok := state.Pick()
	if !ok {
		return false
	}
	state.Forward(len(picked))
	state.SetParam(w.Name, picked)
	return true
}

// CharsWisp matches a run of characters accepted by Accept, bounded
// between MinWidth and MaxWidth (MaxWidth == 0 means unbounded).
type CharsWisp struct {
	Name     string
	Accept   func(rune) bool
	MinWidth int
	MaxWidth int
}

func (w *CharsWisp) Validate() error { return nil }

func (w *CharsWisp) Detect(state *routepath.PathState) bool {
	picked, ok := state.Pick()
	if !ok {
		return false
	}
	count := 0
	for i, r := range picked {
		if !w.Accept(r) {
			break
		}
		count = i + len(string(r))
		if w.MaxWidth > 0 && count >= w.MaxWidth {
			break
		}
	}
	matched := picked[:count]
	runeLen := len([]rune(matched))
	if runeLen < w.MinWidth {
		return false
	}
	state.Forward(len(matched))
	state.SetParam(w.Name, matched)
	return true
}

// RegexWisp captures the text matched by Regex, anchored at the start of
// the remaining segment text (or, for wildcard names, the remaining
// path).
type RegexWisp struct {
	Name  string
	Regex *regexpMatcher
	wild  wildMode
}

// NewRegex builds a RegexWisp, classifying its wildcard mode from name.
func NewRegex(name string, re *regexpMatcher) *RegexWisp {
	mode, _ := classifyWild(name)
	return &RegexWisp{Name: name, Regex: re, wild: mode}
}

func (w *RegexWisp) Validate() error { return nil }

func (w *RegexWisp) Detect(state *routepath.PathState) bool {
	if w.wild != wildNone {
		rest := state.AllRest()
		if w.wild == wildSameSegment {
			trimmed := strings.Trim(rest, "/")
			if strings.Contains(trimmed, "/") {
				return false
			}
		}
		if rest == "" && w.wild == wildGreedyNonEmpty {
			return false
		}
		match := w.Regex.FindAtStart(rest)
		if match == "" && !w.Regex.matchesEmpty {
			return false
		}
		state.SetParam(w.Name, match)
		state.Cursor = len(state.Parts)
		state.Offset = 0
		return true
	}
	picked, ok := state.Pick()
	if !ok {
		return false
	}
	match := w.Regex.FindAtStart(picked)
	if match == "" && !w.Regex.matchesEmpty {
		return false
	}
	state.Forward(len(match))
	state.SetParam(w.Name, match)
	return true
}

// CombWisp groups several wisps that share a single URL segment, e.g.
// "prefix{id}suffix.png" split into Const/Named/Const pieces. Interior
// named/chars/regex pieces consume up to the next Const literal (or to
// the end of the segment for the last piece); two named-family pieces may
// never sit adjacent inside a comb (enforced by Validate).
type CombWisp struct {
	Pieces []Kind
}

func (w *CombWisp) Validate() error {
	for i := 0; i < len(w.Pieces)-1; i++ {
		if isNamedFamily(w.Pieces[i]) && isNamedFamily(w.Pieces[i+1]) {
			return errNamedAdjacency
		}
	}
	for _, p := range w.Pieces {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func isNamedFamily(k Kind) bool {
	switch k.(type) {
	case *NamedWisp, *CharsWisp, *RegexWisp:
		return true
	default:
		return false
	}
}

func (w *CombWisp) Detect(state *routepath.PathState) bool {
	snap := state.Save()
	picked, ok := state.Pick()
	if !ok {
		state.Restore(snap)
		return false
	}

	remaining := picked
	for i, piece := range w.Pieces {
		switch p := piece.(type) {
		case *ConstWisp:
			if !strings.HasPrefix(remaining, p.Value) {
				state.Restore(snap)
				return false
			}
			remaining = remaining[len(p.Value):]
		default:
			var chunk string
			if next := nextConst(w.Pieces, i+1); next != nil {
				idx := strings.Index(remaining, next.Value)
				if idx < 0 {
					state.Restore(snap)
					return false
				}
				chunk, remaining = remaining[:idx], remaining[idx:]
			} else {
				chunk, remaining = remaining, ""
			}
			if !detectChunk(piece, chunk, state) {
				state.Restore(snap)
				return false
			}
		}
	}
	if remaining != "" {
		state.Restore(snap)
		return false
	}
	state.Forward(len(picked))
	return true
}

// nextConst returns the next ConstWisp at or after index i among pieces,
// or nil if none remains.
func nextConst(pieces []Kind, i int) *ConstWisp {
	for ; i < len(pieces); i++ {
		if c, ok := pieces[i].(*ConstWisp); ok {
			return c
		}
	}
	return nil
}

// detectChunk runs a non-const piece against an isolated chunk of text by
// feeding it a throwaway single-segment PathState, then copies any
// captured params back onto state.
func detectChunk(piece Kind, chunk string, state *routepath.PathState) bool {
	sub := routepath.New(chunk)
	if !piece.Detect(sub) {
		return false
	}
	if !sub.EndOfSegments() && !sub.EndOfSegment() {
		return false
	}
	for _, name := range sub.ParamOrder() {
		v := sub.Params()[name]
		state.SetParam(name, v)
	}
	return true
}
