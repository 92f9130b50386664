package engine

// DefaultMaxDepth is the default expansion depth ceiling. It is low enough that
// natural recursion stays far from the goroutine stack limit.
const DefaultMaxDepth = 100

// scope is the per-call expansion state passed by value down the recursion.
//
// ctx is shared by every level of one Expand call (it is a map); depth and path
// are private to each level.
type scope struct {
	depth int
	path  []string
	ctx   map[string]string
}

// enter returns the scope for expanding rule's generated value.
func (s scope) enter(rule string) scope {
	path := make([]string, len(s.path), len(s.path)+1)
	copy(path, s.path)
	return scope{
		depth: s.depth + 1,
		path:  append(path, rule),
		ctx:   s.ctx,
	}
}

// rule returns the innermost rule being expanded.
func (s scope) rule() string {
	if len(s.path) == 0 {
		return ""
	}
	return s.path[len(s.path)-1]
}

// checkDepth fails when the scope has reached maxDepth.
func (s scope) checkDepth(maxDepth int, text string) error {
	if s.depth < maxDepth {
		return nil
	}
	return &DepthExceededError{
		MaxDepth: maxDepth,
		Rule:     s.rule(),
		Text:     text,
		Path:     append([]string(nil), s.path...),
	}
}
