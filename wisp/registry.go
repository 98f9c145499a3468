package wisp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var errNamedAdjacency = errors.New("wisp: a named capture cannot be immediately followed by another named capture within one path segment")

// Builder constructs a Kind for a named, function-style path piece such
// as "{id:num(3..=10)}". name is the capture name, args are the
// comma-separated values inside the "(...)"/"[...]" suffix, if any.
type Builder func(name string, args []string) (Kind, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{
		"num": charsBuilder(func(r rune) bool { return r >= '0' && r <= '9' }),
		"hex": charsBuilder(func(r rune) bool {
			return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		}),
	}
)

// RegisterBuilder installs (or overwrites) a named, function-style path
// piece builder, e.g. for a "{id:slug}" convention of your own.
func RegisterBuilder(name string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = b
}

// RegisterRegex installs name as shorthand for a fixed regular
// expression, so "{id:name}" behaves the same as "{id:/pattern/}".
func RegisterRegex(name string, pattern string) error {
	re, err := compileRegex(pattern)
	if err != nil {
		return fmt.Errorf("wisp: invalid regex for %q: %w", name, err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = func(capture string, _ []string) (Kind, error) {
		return NewRegex(capture, re), nil
	}
	return nil
}

func lookupBuilder(name string) (Builder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[name]
	return b, ok
}

// charsBuilder adapts an rune predicate into the num/hex-style Builder,
// parsing an optional "(min..max)"/"(min..=max)"/"[min..]" width range.
func charsBuilder(accept func(rune) bool) Builder {
	return func(name string, args []string) (Kind, error) {
		if len(args) == 0 {
			return &CharsWisp{Name: name, Accept: accept, MinWidth: 1}, nil
		}
		min, max, err := parseWidthRange(args[0])
		if err != nil {
			return nil, fmt.Errorf("wisp: %s: %w", name, err)
		}
		return &CharsWisp{Name: name, Accept: accept, MinWidth: min, MaxWidth: max}, nil
	}
}

// parseWidthRange parses "min..max", "min..=max", "min..", "..max",
// "..=max", or a bare "min". Returns (min, max) with max == 0 meaning
// unbounded.
func parseWidthRange(spec string) (int, int, error) {
	spec = strings.TrimSpace(spec)
	if !strings.Contains(spec, "..") {
		n, err := strconv.Atoi(spec)
		if err != nil {
			return 0, 0, fmt.Errorf("parse range failed: %w", err)
		}
		return n, 0, nil
	}
	parts := strings.SplitN(spec, "..", 2)
	lo := strings.TrimSpace(parts[0])
	hi := strings.TrimSpace(parts[1])

	min := 1
	if lo != "" {
		v, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("parse range failed: %w", err)
		}
		if v < 1 {
			return 0, 0, errors.New("min_width must be greater or equal to 1")
		}
		min = v
	}
	if hi == "" {
		return min, 0, nil
	}
	inclusive := strings.HasPrefix(hi, "=")
	hi = strings.TrimPrefix(hi, "=")
	v, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("parse range failed: %w", err)
	}
	if !inclusive {
		if v <= 1 {
			return 0, 0, errors.New("max_width must be greater than 1")
		}
		v--
	} else if v < 1 {
		return 0, 0, errors.New("max_width must be greater or equal to 1")
	}
	return min, v, nil
}
