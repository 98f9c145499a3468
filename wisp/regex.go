package wisp

import "regexp"

// regexpMatcher wraps a compiled regexp anchored for prefix matching: it
// reports the longest match starting at position 0 of the probed text,
// mirroring the Rust original's `regex.captures(text)` (find-from-start)
// semantics rather than Go's default "find anywhere" behavior.
type regexpMatcher struct {
	re           *regexp.Regexp
	matchesEmpty bool
}

func compileRegex(pattern string) (*regexpMatcher, error) {
	anchored, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, err
	}
	return &regexpMatcher{
		re:           anchored,
		matchesEmpty: anchored.MatchString(""),
	}, nil
}

// FindAtStart returns the longest prefix of text matching the pattern, or
// "" if none matches.
func (m *regexpMatcher) FindAtStart(text string) string {
	loc := m.re.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return text[loc[0]:loc[1]]
}
