package audit

// MaxUnreadableFiles is the number of tag-read failures a classifier run
// tolerates. The run stops once the count goes past it.
const MaxUnreadableFiles = 50

// ErrorBudget counts tag-read failures during one classifier run.
type ErrorBudget struct {
	limit int
	count int
}

// NewErrorBudget creates a budget that is exhausted once more than limit
// failures have been recorded.
func NewErrorBudget(limit int) *ErrorBudget {
	return &ErrorBudget{limit: limit}
}

// Record counts one failure and reports whether the budget is now exhausted.
func (b *ErrorBudget) Record() bool {
	b.count++
	return b.Exhausted()
}

// Count returns the number of failures recorded so far.
func (b *ErrorBudget) Count() int {
	return b.count
}

// Exhausted reports whether the failure count exceeds the limit.
func (b *ErrorBudget) Exhausted() bool {
	return b.count > b.limit
}
