package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Step   int            `json:"step"` // 1-based
	Op     string         `json:"op"`
	Args   map[string]any `json:"args,omitempty"`
	Result any            `json:"result"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every expectation matched and no invariant was violated.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and invariant failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// StoreName is the display name of the store after the last step.
	StoreName string `json:"store_name,omitempty"`

	// Size is the number of indexed records after the last step.
	Size int `json:"size"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(step int, op string, args map[string]any, result any) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:   step,
		Op:     op,
		Args:   args,
		Result: result,
	})
}
