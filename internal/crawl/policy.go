package crawl

import "github.com/riftline/riftline/internal/riot"

// Action is what a worker does after a failed remote call. Transient retries
// are already spent inside the client, so by this point the only choices left
// are abandoning the single unit of work or giving up the credential.
type Action int

const (
	// ActionSkipUnit abandons the single match or player being fetched.
	ActionSkipUnit Action = iota
	// ActionTerminateWorker retires the worker; its credential is unusable.
	ActionTerminateWorker
)

func (a Action) String() string {
	if a == ActionTerminateWorker {
		return "terminate_worker"
	}
	return "skip_unit"
}

// Classify maps an error kind to the worker's recovery action. Keeping the
// whole failure policy in one table makes it testable in isolation.
func Classify(err error) Action {
	if err == nil {
		return ActionSkipUnit
	}
	switch riot.KindOf(err) {
	case riot.KindForbidden:
		return ActionTerminateWorker
	case riot.KindTransient, riot.KindNotFound, riot.KindMalformed:
		return ActionSkipUnit
	default:
		return ActionSkipUnit
	}
}
