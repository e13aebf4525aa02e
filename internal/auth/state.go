package auth

// State is the Gate's position in the login state machine.
type State int

const (
	AwaitingLogin State = iota
	Authenticated
	LockedPendingRecovery
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingLogin:
		return "awaiting-login"
	case Authenticated:
		return "authenticated"
	case LockedPendingRecovery:
		return "locked-pending-recovery"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}
