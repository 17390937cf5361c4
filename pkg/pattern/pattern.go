// Package pattern implements gitignore-compatible pattern parsing,
// compilation to path matchers, and cached evaluation. Wildcard segment matching (*, ?, **, character classes, brace
// alternation) is delegated to github.com/bmatcuk/doublestar/v4; this
// package owns gitignore-specific concerns doublestar knows nothing about:
// negation, rooting, directory-only suffixes, last-match-wins evaluation
// order, cone mode, and the LRU caches that make repeated evaluation cheap.
package pattern

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned (wrapped with context) for patterns that
// fail to parse or compile: empty patterns, bare "***", and non-directory
// patterns supplied under cone mode.
type ErrInvalidPattern struct {
	Pattern string
	Reason  string
}

func (e *ErrInvalidPattern) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
}

// Pattern is a single parsed gitignore-style rule.
type Pattern struct {
	Original      string
	Negated       bool
	Rooted        bool
	DirectoryOnly bool

	// globs holds the doublestar-compatible alternatives this pattern
	// expands to (brace alternation produces more than one, directory-only
	// patterns additionally match their own subtree).
	globs []string
}

// Parse parses a single pattern line. Leading unescaped "!" toggles
// negation (an even count cancels out); "\!" and "\#" are literal escapes;
// a leading "/" roots the pattern to the checker's root; a trailing "/"
// restricts the pattern to directories and their contents; "***" is
// rejected outright.
func Parse(raw string) (*Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ErrInvalidPattern{Pattern: raw, Reason: "empty or whitespace-only"}
	}
	if strings.Contains(raw, "***") {
		return nil, &ErrInvalidPattern{Pattern: raw, Reason: "*** is not a valid wildcard"}
	}

	text := raw
	negated := false
	for {
		if strings.HasPrefix(text, "\\!") || strings.HasPrefix(text, "\\#") {
			text = text[1:] // literal escape consumed, stop scanning for negation
			break
		}
		if strings.HasPrefix(text, "!") {
			negated = !negated
			text = text[1:]
			continue
		}
		break
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidPattern{Pattern: raw, Reason: "empty after negation markers"}
	}

	rooted := strings.HasPrefix(text, "/")
	if rooted {
		text = strings.TrimPrefix(text, "/")
	}

	directoryOnly := strings.HasSuffix(text, "/") && len(text) > 0
	text = strings.TrimSuffix(text, "/")

	if text == "" {
		return nil, &ErrInvalidPattern{Pattern: raw, Reason: "no path content"}
	}

	// A pattern with an interior slash (or "**") is anchored to the root
	// the same way a leading "/" would anchor it, per gitignore semantics.
	if !rooted && (strings.Contains(text, "/") || strings.Contains(text, "**")) {
		rooted = true
	}

	p := &Pattern{
		Original:      raw,
		Negated:       negated,
		Rooted:        rooted,
		DirectoryOnly: directoryOnly,
	}

	alts, err := expandBraces(text)
	if err != nil {
		return nil, &ErrInvalidPattern{Pattern: raw, Reason: err.Error()}
	}

	globs := make([]string, 0, len(alts)*2)
	for _, alt := range alts {
		base := alt
		if !rooted {
			base = "**/" + alt
		}
		globs = append(globs, base)
		if directoryOnly {
			globs = append(globs, base+"/**")
		}
	}
	p.globs = globs
	return p, nil
}

// ParseAll parses multi-line pattern text, skipping blank lines and
// "#"-comment lines ("\#" is a literal escape, not a comment marker).
func ParseAll(text string) ([]*Pattern, error) {
	var patterns []*Pattern
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		p, err := Parse(trimmed)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Match reports whether path (relative, "/"-separated, no leading slash)
// matches any of the pattern's compiled alternatives.
func (p *Pattern) Match(path string) bool {
	for _, g := range p.globs {
		ok, err := doublestar.Match(g, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// isLiteralDirectory reports whether text contains no glob metacharacters,
// a requirement for cone-mode patterns.
func isLiteralDirectory(text string) bool {
	return !strings.ContainsAny(text, "*?[]{}!")
}

// expandBraces recursively expands balanced "{a,b,c}" alternation into a
// flat list of concrete strings, supporting nested braces.
func expandBraces(pattern string) ([]string, error) {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		return []string{pattern}, nil
	}

	depth := 0
	close := -1
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return nil, fmt.Errorf("unbalanced brace in %q", pattern)
	}

	prefix := pattern[:open]
	suffix := pattern[close+1:]
	inner := pattern[open+1 : close]

	alts := splitTopLevel(inner)
	var results []string
	for _, alt := range alts {
		combined := prefix + alt + suffix
		expanded, err := expandBraces(combined)
		if err != nil {
			return nil, err
		}
		results = append(results, expanded...)
	}
	return results, nil
}

// splitTopLevel splits s on top-level commas, i.e. commas not nested
// inside an inner pair of braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
