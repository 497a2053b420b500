package harness

// HostEvent is a host event observed during a scenario.
type HostEvent struct {
	Type   string         `json:"type"`
	Target string         `json:"target,omitempty"` // element id; empty for anonymous nodes
	Detail map[string]any `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step ran and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace is the bus event names recorded by the journal, in dispatch
	// order. Used for trace assertions and golden comparison.
	Trace []string `json:"trace"`

	// HostEvents are the host events dispatched in the document, in order.
	HostEvents []HostEvent `json:"host_events,omitempty"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
