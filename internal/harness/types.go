package harness

// TraceEvent is one crossing event in a scenario's recorded trace,
// tagged with the step that produced it.
type TraceEvent struct {
	Step     int     `json:"step"`
	Seq      int64   `json:"seq"`
	Runner   string  `json:"runner"`
	Span     string  `json:"span"`
	Kind     string  `json:"kind"`
	Position float64 `json:"position"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every emitted event in logical order.
	// Used for event assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Positions contains final runner positions after all steps.
	Positions map[string]float64 `json:"positions"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Positions: make(map[string]float64),
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
