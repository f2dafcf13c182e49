package worker

// Outcome classifies one completed pipeline cycle. It is an
// observability signal only and never changes scheduling.
type Outcome int

const (
	// OutcomeError means the cycle aborted before completing normally.
	OutcomeError Outcome = iota
	// OutcomeDidNothing means no new events were found.
	OutcomeDidNothing
	// OutcomeDidSomething means at least one event was persisted and
	// published.
	OutcomeDidSomething
)

func (o Outcome) String() string {
	switch o {
	case OutcomeError:
		return "error"
	case OutcomeDidNothing:
		return "did_nothing"
	case OutcomeDidSomething:
		return "did_something"
	}
	return "unknown"
}
