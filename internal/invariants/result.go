package invariants

// CheckResult is the transient outcome of one check evaluation. Expected and
// Observed are human-readable evidence strings persisted to the run history;
// Data is the structured payload later checks can reference by alias.
type CheckResult struct {
	CheckID  uint           `json:"check_id"`
	Alias    string         `json:"alias,omitempty"`
	Status   string         `json:"status"`
	Expected string         `json:"expected"`
	Observed string         `json:"observed"`
	Reason   string         `json:"reason"`
	Data     map[string]any `json:"data,omitempty"`
}

// Outcome is the result of one group evaluation. Changed is true only when the
// status differs from the previous one and the previous status was not
// PENDING: a group's first evaluation is never reported as a transition.
type Outcome struct {
	GroupID   uint          `json:"group_id"`
	Status    string        `json:"status"`
	OldStatus string        `json:"old_status"`
	Results   []CheckResult `json:"results"`
	Changed   bool          `json:"changed"`
	Skipped   bool          `json:"skipped,omitempty"`
}
