package mines

import "time"

type EventKind uint8

const (
	CellOpened EventKind = iota + 1
	FlagChanged
	ModeChanged
	StateChanged
	Ticked
	AnswerToggled
)

func (k EventKind) String() string {
	switch k {
	case CellOpened:
		return "cell_opened"
	case FlagChanged:
		return "flag_changed"
	case ModeChanged:
		return "mode_changed"
	case StateChanged:
		return "state_changed"
	case Ticked:
		return "ticked"
	case AnswerToggled:
		return "answer_toggled"
	default:
		return "unknown"
	}
}

// Event describes one change to a session. Index is set for cell
// events, State for state changes, Mode for mode changes and TimeLeft
// for ticks.
type Event struct {
	Kind     EventKind
	Index    int
	Flagged  bool
	State    GameState
	Mode     OperatorMode
	TimeLeft time.Duration
}

type Listener func(Event)
