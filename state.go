package slideshow

// State is the engine's lifecycle position. Auto-advance is a mode flag on
// the Displaying state, not a state of its own.
type State uint8

const (
	Init State = iota
	Scanning
	Displaying
	Error
	Sleeping
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Scanning:
		return "scanning"
	case Displaying:
		return "displaying"
	case Error:
		return "error"
	case Sleeping:
		return "sleeping"
	}
	return "unknown"
}
