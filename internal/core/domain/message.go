package domain

// Message is an incoming chat line, independent of the transport that delivered it.
type Message struct {
	ID      string
	Author  string
	Channel string
	Content string
}

type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeUsage    Outcome = "usage"
	OutcomeRejected Outcome = "rejected"
	OutcomeNotFound Outcome = "not_found"
	OutcomeEmpty    Outcome = "empty"
	OutcomeUnknown  Outcome = "unknown"
	OutcomeReset    Outcome = "reset"
)

// Reply is what the bot answers to a single command.
type Reply struct {
	Outcome Outcome
	Text    string
}
