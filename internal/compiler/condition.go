package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/rules"
)

// compileCondition turns a file-level condition into a predicate over the
// expansion context. Every set test must hold. A condition with only Var set
// tests that Var has been generated.
func compileCondition(c ir.Condition) (rules.Predicate, error) {
	var re *regexp.Regexp
	if c.Matches != "" {
		var err error
		if re, err = regexp.Compile(c.Matches); err != nil {
			return nil, fmt.Errorf("invalid matches pattern for %q: %w", c.Var, err)
		}
	}
	onlyVar := c.Equals == nil && c.NotEquals == nil && re == nil && c.Exists == nil

	return func(ctx rules.Context) bool {
		v, ok := ctx.Get(c.Var)
		if onlyVar {
			return ok
		}
		if c.Exists != nil && ok != *c.Exists {
			return false
		}
		if c.Equals != nil && (!ok || v != *c.Equals) {
			return false
		}
		if c.NotEquals != nil && ok && v == *c.NotEquals {
			return false
		}
		if re != nil && (!ok || !re.MatchString(v)) {
			return false
		}
		return true
	}, nil
}
