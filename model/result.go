package model

// Action is the batch operation requested by a command
type Action string

const (
	// ActionAdd provisions accounts
	ActionAdd Action = "add"
	// ActionDelete deprovisions accounts
	ActionDelete Action = "delete"
)

// Operation is a single backend call made for one username
type Operation string

const (
	OperationCreate Operation = "create"
	OperationImport Operation = "import"
	OperationDelete Operation = "delete"
)

// OutcomeStatus is the result of one operation for one username on one backend
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
	StatusSkipped   OutcomeStatus = "skipped" // backend inactive
)

// FailureKind classifies why an operation failed
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureTransport       FailureKind = "transport"
	FailureStatus          FailureKind = "status"
	FailureLookup          FailureKind = "lookup_failed"
	FailureNotFound        FailureKind = "not_found"
	FailureTemplateMissing FailureKind = "template_missing"
	FailurePartialCreate   FailureKind = "partial_create"
	FailureInvalidResponse FailureKind = "invalid_response"
	FailureDependency      FailureKind = "dependency_failed"
)

// Outcome records what happened to one username on one backend
type Outcome struct {
	Username  string        `json:"username"`
	Backend   Backend       `json:"backend"`
	Operation Operation     `json:"operation"`
	Status    OutcomeStatus `json:"status"`
	Kind      FailureKind   `json:"kind,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// BatchResult aggregates the outcomes of one add or delete command
type BatchResult struct {
	Action    Action               `json:"action"`
	Usernames []string             `json:"usernames"`
	Succeeded map[Backend][]string `json:"succeeded"`
	Outcomes  []Outcome            `json:"outcomes"`
}

// NewBatchResult creates an empty result for the given action
func NewBatchResult(action Action, usernames []string) *BatchResult {
	return &BatchResult{
		Action:    action,
		Usernames: usernames,
		Succeeded: make(map[Backend][]string),
		Outcomes:  []Outcome{},
	}
}

// Record appends an outcome, adding the username to the backend's
// success list when the operation succeeded
func (r *BatchResult) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Status == StatusSucceeded {
		r.Succeeded[o.Backend] = append(r.Succeeded[o.Backend], o.Username)
	}
}

// SucceededOn returns the usernames that succeeded on a backend, in order
func (r *BatchResult) SucceededOn(b Backend) []string {
	return r.Succeeded[b]
}

// Failures returns the failed outcomes in the order they happened
func (r *BatchResult) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Complete reports whether every attempted operation succeeded.
// Skipped outcomes do not count against completeness.
func (r *BatchResult) Complete() bool {
	return len(r.Failures()) == 0
}
