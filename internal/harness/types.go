package harness

// TraceEvent is one generation as recorded in the scenario's generation log.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	RunID    string `json:"run_id"`
	RunIndex int    `json:"run_index"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// GrammarHash identifies the grammar that was run. Empty if it failed to
	// build.
	GrammarHash string `json:"grammar_hash,omitempty"`

	// Outputs are the generated texts, in order. Generation stops at the first
	// error.
	Outputs []string `json:"outputs"`

	// Error is the build or generation error, if any.
	Error string `json:"error,omitempty"`

	// Trace is the generation log read back from the scenario's store.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: []string{},
		Trace:   []TraceEvent{},
		Errors:  []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
