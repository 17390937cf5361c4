package pattern

// PatternSet is an ordered, immutable collection of patterns evaluated with
// gitignore's last-match-wins rule: later patterns override earlier ones,
// and a pattern prefixed with "!" re-includes what an earlier pattern
// excluded.
type PatternSet struct {
	patterns []*Pattern
}

// NewPatternSet parses raw pattern strings in order and returns the
// resulting set. A parse failure on any one pattern fails the whole set.
func NewPatternSet(raw []string) (*PatternSet, error) {
	patterns := make([]*Pattern, 0, len(raw))
	for _, r := range raw {
		p, err := Parse(r)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return &PatternSet{patterns: patterns}, nil
}

// Patterns returns the set's patterns in evaluation order.
func (s *PatternSet) Patterns() []*Pattern {
	return s.patterns
}

// Len reports the number of patterns in the set.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Evaluate applies every pattern in order, starting from "not matched", and
// returns the final decision. A non-negated match sets the decision to
// matched; a negated match clears it. Later patterns always win.
func (s *PatternSet) Evaluate(path string) bool {
	if s == nil {
		return false
	}
	matched := false
	for _, p := range s.patterns {
		if p.Match(path) {
			matched = !p.Negated
		}
	}
	return matched
}

// couldMatchBeneath reports whether some non-negated pattern in the set
// could plausibly match a path at or beneath dir, used to prune directory
// traversal without walking every file under an excluded subtree. It is a
// conservative over-approximation: a pattern containing "**" or whose
// literal prefix is compatible with dir always returns true.
func (s *PatternSet) couldMatchBeneath(dir string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		if p.Negated {
			continue
		}
		if couldMatchBeneathOne(p, dir) {
			return true
		}
	}
	return false
}

func couldMatchBeneathOne(p *Pattern, dir string) bool {
	for _, g := range p.globs {
		if globCompatibleWithAncestor(g, dir) {
			return true
		}
	}
	return false
}

// globCompatibleWithAncestor reports whether glob could match something
// under dir, by comparing dir against the glob's literal (non-wildcard)
// prefix segments. A glob containing "**" anywhere is always considered
// compatible, since ** can absorb any number of intervening segments. The
// root ("" or ".") is compatible with every glob.
func globCompatibleWithAncestor(glob, dir string) bool {
	if dir == "" || dir == "." {
		return true
	}
	gSegs := splitPath(glob)
	dSegs := splitPath(dir)

	for i := 0; i < len(gSegs) && i < len(dSegs); i++ {
		seg := gSegs[i]
		if seg == "**" {
			return true
		}
		if containsMeta(seg) {
			// A wildcard segment could match dSegs[i]; keep comparing the
			// remaining literal segments optimistically.
			continue
		}
		if seg != dSegs[i] {
			return false
		}
	}
	return true
}

func containsMeta(seg string) bool {
	for _, c := range seg {
		switch c {
		case '*', '?', '[', ']', '{', '}':
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			if i > start {
				segs = append(segs, p[start:i])
			}
			start = i + 1
		}
	}
	return segs
}
