package ir

// Generation is one recorded output of the generation log (store-layer).
type Generation struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	RunIndex int    `json:"run_index"` // position within the run, from 0
	Seq      int64  `json:"seq"`       // Logical clock

	GrammarHash string   `json:"grammar_hash"`
	GrammarPath string   `json:"grammar_path"`
	Template    string   `json:"template"`
	Seed        *int64   `json:"seed"` // nil for non-deterministic runs
	MaxDepth    int      `json:"max_depth"`
	Modifiers   []string `json:"modifiers"` // effective pipeline, in execution order

	Output string `json:"output"`
	Error  string `json:"error,omitempty"`

	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Replayable reports whether the generation can be reproduced exactly.
func (g Generation) Replayable() bool {
	return g.Seed != nil
}
