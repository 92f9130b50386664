package rules

// Context is a read-only view of the values generated so far in the current
// expansion. Conditional predicates and function rules receive it.
type Context struct {
	values map[string]string
}

// NewContext wraps values. The map is not copied; the engine owns it and only
// hands out Context values while no mutation is in flight.
func NewContext(values map[string]string) Context {
	return Context{values: values}
}

// Get returns the value generated for name, if any.
func (c Context) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Has reports whether name has been generated in this expansion.
func (c Context) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Len returns the number of generated names.
func (c Context) Len() int {
	return len(c.values)
}

// Snapshot returns a copy of the underlying values.
func (c Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
