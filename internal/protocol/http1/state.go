package http1

// State tracks where a connection is in its single request/response cycle.
// Every connection ends in StateClosed exactly once.
type State uint8

const (
	StateAccepted State = iota
	StateQueued
	StateDequeued
	StateReading
	StateTimeout
	StateOversize
	StateMalformed
	StateParsed
	StateVersionChecked
	StateDispatched
	StateResolving
	StateResponding
	StateClosed
)

var stateNames = [...]string{
	StateAccepted:       "ACCEPTED",
	StateQueued:         "QUEUED",
	StateDequeued:       "DEQUEUED",
	StateReading:        "READING",
	StateTimeout:        "TIMEOUT",
	StateOversize:       "OVERSIZE",
	StateMalformed:      "MALFORMED",
	StateParsed:         "PARSED",
	StateVersionChecked: "VERSION_CHECKED",
	StateDispatched:     "DISPATCHED",
	StateResolving:      "RESOLVING",
	StateResponding:     "RESPONDING",
	StateClosed:         "CLOSED",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transition may follow s.
func (s State) Terminal() bool {
	return s == StateClosed
}
