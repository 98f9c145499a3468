package wisp

import (
	"fmt"
	"strings"
)

// Parse compiles a path pattern such as "/users/{id:num(3..=10)}/emails"
// or "/first<id>world<**rest>" into the sequence of Kinds a router node
// matches against a request path, one Kind per URL segment (a segment
// with more than one piece becomes a CombWisp). Both "{name}" and
// "<name>" bracket styles are accepted and may be mixed within a single
// pattern or even a single segment.
func Parse(pattern string) ([]Kind, error) {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil, nil
	}
	rawSegments := strings.Split(trimmed, "/")
	kinds := make([]Kind, 0, len(rawSegments))
	for _, seg := range rawSegments {
		if seg == "" {
			continue
		}
		pieces, err := scanSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("wisp: %w (pattern %q)", err, pattern)
		}
		switch len(pieces) {
		case 0:
			return nil, fmt.Errorf("wisp: empty path segment in pattern %q", pattern)
		case 1:
			kinds = append(kinds, pieces[0])
		default:
			kinds = append(kinds, &CombWisp{Pieces: pieces})
		}
	}
	if err := validate(kinds); err != nil {
		return nil, fmt.Errorf("wisp: %w (pattern %q)", err, pattern)
	}
	return kinds, nil
}

// MustParse is Parse, panicking on error. Route registration is
// construction-time, so an invalid pattern should abort startup loudly
// rather than surface as a runtime 404.
func MustParse(pattern string) []Kind {
	kinds, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return kinds
}

func isDelim(r, close rune) bool {
	if r == close {
		return true
	}
	switch r {
	case '/', ':', '<', '>', '{', '}', '[', ']', '(', ')':
		return true
	}
	return false
}

func matchingClose(open rune) rune {
	if open == '{' {
		return '}'
	}
	return '>'
}

func matchingParen(open rune) rune {
	if open == '[' {
		return ']'
	}
	return ')'
}

// scanSegment parses the (already '/'-free) text of one URL segment into
// its constituent pieces.
func scanSegment(text string) ([]Kind, error) {
	runes := []rune(text)
	pieces := make([]Kind, 0, 2)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch == '<' || ch == '{' {
			piece, next, err := scanBracket(runes, i)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, piece)
			i = next
			continue
		}
		start := i
		for i < len(runes) && runes[i] != '<' && runes[i] != '{' {
			i++
		}
		lit := string(runes[start:i])
		if lit == "" {
			return nil, fmt.Errorf("empty literal segment")
		}
		pieces = append(pieces, &ConstWisp{Value: lit})
	}
	return pieces, nil
}

// scanBracket parses one "<name...>" or "{name...}" piece starting at
// runes[i] (which must be the opening bracket), returning the parsed
// piece and the index just past its closing bracket.
func scanBracket(runes []rune, i int) (Kind, int, error) {
	open := runes[i]
	close := matchingClose(open)
	i++

	nameStart := i
	for i < len(runes) && !isDelim(runes[i], close) {
		i++
	}
	name := string(runes[nameStart:i])
	if name == "" {
		return nil, 0, fmt.Errorf("capture name is empty")
	}
	if i >= len(runes) {
		return nil, 0, fmt.Errorf("unterminated capture %q", name)
	}

	switch runes[i] {
	case close:
		return NewNamed(name), i + 1, nil
	case ':':
		i++
		if i < len(runes) && runes[i] == '/' {
			return scanInlineRegex(runes, i, name, close)
		}
		return scanFnPart(runes, i, name, close)
	default:
		return nil, 0, fmt.Errorf("unexpected character %q after capture name %q", string(runes[i]), name)
	}
}

func scanInlineRegex(runes []rune, i int, name string, close rune) (Kind, int, error) {
	i++ // skip leading '/'
	start := i
	for i < len(runes) {
		if runes[i] == '/' {
			if i+1 >= len(runes) {
				return nil, 0, fmt.Errorf("regex capture %q ends without closing %q", name, string(close))
			}
			if runes[i+1] == close {
				break
			}
		}
		i++
	}
	if i >= len(runes) {
		return nil, 0, fmt.Errorf("unterminated regex capture %q", name)
	}
	src := string(runes[start:i])
	i += 2 // skip trailing '/' and close
	matcher, err := compileRegex(src)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid regex for capture %q: %w", name, err)
	}
	return NewRegex(name, matcher), i, nil
}

func scanFnPart(runes []rune, i int, name string, close rune) (Kind, int, error) {
	start := i
	for i < len(runes) && !isDelim(runes[i], close) {
		i++
	}
	sign := string(runes[start:i])
	if sign == "" {
		return nil, 0, fmt.Errorf("empty function name for capture %q", name)
	}

	var args []string
	if i < len(runes) && (runes[i] == '[' || runes[i] == '(') {
		lb := runes[i]
		rb := matchingParen(lb)
		i++
		argStart := i
		for i < len(runes) && runes[i] != rb {
			i++
		}
		if i >= len(runes) {
			return nil, 0, fmt.Errorf("unterminated argument list for capture %q", name)
		}
		raw := string(runes[argStart:i])
		i++ // skip rb
		if raw != "" {
			for _, a := range strings.Split(raw, ",") {
				args = append(args, strings.TrimSpace(a))
			}
		}
	}

	if i >= len(runes) || runes[i] != close {
		return nil, 0, fmt.Errorf("expected %q to close capture %q", string(close), name)
	}
	i++

	builder, ok := lookupBuilder(sign)
	if !ok {
		return nil, 0, fmt.Errorf("no wisp builder registered for %q", sign)
	}
	kind, err := builder(name, args)
	if err != nil {
		return nil, 0, err
	}
	return kind, i, nil
}

// validate enforces cross-segment rules the per-piece Validate methods
// can't see: capture names must be unique, and at most one wildcard
// capture is allowed, which must be the very last top-level piece.
func validate(kinds []Kind) error {
	seen := map[string]bool{}
	wildSeen := false
	for i, k := range kinds {
		if err := k.Validate(); err != nil {
			return err
		}
		names := collectNames(k)
		for _, n := range names {
			if seen[n] {
				return fmt.Errorf("duplicate capture name %q", n)
			}
			seen[n] = true
			if strings.HasPrefix(n, "*") {
				if wildSeen {
					return fmt.Errorf("more than one wildcard capture in pattern")
				}
				wildSeen = true
				if i != len(kinds)-1 {
					return fmt.Errorf("wildcard capture %q must be the last piece in the pattern", n)
				}
			}
		}
	}
	return nil
}

func collectNames(k Kind) []string {
	switch w := k.(type) {
	case *NamedWisp:
		return []string{w.Name}
	case *CharsWisp:
		return []string{w.Name}
	case *RegexWisp:
		return []string{w.Name}
	case *CombWisp:
		var names []string
		for _, p := range w.Pieces {
			names = append(names, collectNames(p)...)
		}
		return names
	default:
		return nil
	}
}
