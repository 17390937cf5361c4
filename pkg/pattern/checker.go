package pattern

import (
	"github.com/durablefs/vfs/internal/cache"
)

const (
	defaultDecisionCacheSize = 10000
	defaultConeDirCacheSize  = 10000
)

// CheckerOptions configures a Checker. Patterns is the include set;
// ExcludePatterns is evaluated independently and can re-include a path an
// earlier exclude pattern matched via its own internal negation. Cone,
// when true, ignores Patterns' glob semantics and
// instead requires every entry in Patterns to be a literal directory,
// switching to git's cone-mode inclusion rule.
type CheckerOptions struct {
	Patterns        []string
	ExcludePatterns []string
	Cone            bool

	// DecisionCacheSize bounds the per-path decision cache. Zero uses the
	// default of 10000.
	DecisionCacheSize int
}

// Checker evaluates paths against an include/exclude pattern configuration.
// Each Checker owns its own compiled patterns and decision caches: caches
// are never shared across Checker instances, so rebuilding a checker for a
// new pattern generation can never leak a stale decision from the
// previous one.
type Checker struct {
	include *PatternSet
	exclude *PatternSet
	cone    *coneSet

	includeDecisions  *cache.LRU[string, bool]
	traverseDecisions *cache.LRU[string, bool]
}

// NewChecker builds a Checker from opts.
func NewChecker(opts CheckerOptions) (*Checker, error) {
	size := opts.DecisionCacheSize
	if size <= 0 {
		size = defaultDecisionCacheSize
	}

	includeDecisions, err := cache.NewLRU[string, bool](size)
	if err != nil {
		return nil, err
	}
	traverseDecisions, err := cache.NewLRU[string, bool](defaultConeDirCacheSize)
	if err != nil {
		return nil, err
	}

	c := &Checker{
		includeDecisions:  includeDecisions,
		traverseDecisions: traverseDecisions,
	}

	if opts.Cone {
		cs, err := newConeSet(opts.Patterns)
		if err != nil {
			return nil, err
		}
		c.cone = cs
		if len(opts.ExcludePatterns) > 0 {
			exclude, err := NewPatternSet(opts.ExcludePatterns)
			if err != nil {
				return nil, err
			}
			c.exclude = exclude
		}
		return c, nil
	}

	include, err := NewPatternSet(opts.Patterns)
	if err != nil {
		return nil, err
	}
	exclude, err := NewPatternSet(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	c.include = include
	c.exclude = exclude
	return c, nil
}

// ShouldInclude reports whether path passes the checker's include/exclude
// configuration. Results are cached per path until the Checker is
// discarded; there is no invalidation path because a Checker's pattern
// configuration never changes after construction.
func (c *Checker) ShouldInclude(path string) bool {
	if cached, ok := c.includeDecisions.Get(path); ok {
		return cached
	}

	var result bool
	if c.cone != nil {
		result = c.cone.includes(path)
		if result && c.exclude.Len() > 0 && c.exclude.Evaluate(path) {
			result = false
		}
	} else {
		included := c.include.Len() == 0 || c.include.Evaluate(path)
		excluded := c.exclude.Evaluate(path)
		result = included && !excluded
	}

	c.includeDecisions.Add(path, result)
	return result
}

// ShouldTraverseDirectory reports whether a directory walk should descend
// into dir, letting callers prune subtrees that can contain no included
// entry without listing them.
func (c *Checker) ShouldTraverseDirectory(dir string) bool {
	if cached, ok := c.traverseDecisions.Get(dir); ok {
		return cached
	}

	var result bool
	if c.cone != nil {
		result = c.cone.includesDirectory(dir)
	} else {
		couldInclude := c.include.Len() == 0 || c.include.couldMatchBeneath(dir)
		fullyExcluded := c.exclude.Len() > 0 && c.exclude.Evaluate(dir) && !c.exclude.couldReincludeBeneath(dir)
		result = couldInclude && !fullyExcluded
	}

	c.traverseDecisions.Add(dir, result)
	return result
}

// couldReincludeBeneath reports whether some negated pattern in the set
// could re-include a path beneath dir after an earlier non-negated pattern
// excluded dir itself, preventing premature pruning of a subtree that
// contains a re-inclusion.
func (s *PatternSet) couldReincludeBeneath(dir string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		if !p.Negated {
			continue
		}
		if couldMatchBeneathOne(p, dir) {
			return true
		}
	}
	return false
}
