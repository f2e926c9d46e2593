package mines

import (
	"fmt"
	"strings"
)

type GameState uint8

const (
	Processing GameState = iota
	Ending
	Successful
)

func (s GameState) String() string {
	switch s {
	case Processing:
		return "processing"
	case Ending:
		return "ending"
	case Successful:
		return "successful"
	default:
		return fmt.Sprintf("GameState(%d)", uint8(s))
	}
}

func (s GameState) Terminal() bool {
	return s == Ending || s == Successful
}

// [GameState] implements [encoding.TextMarshaler]
func (s GameState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *GameState) UnmarshalText(text []byte) error {
	for _, state := range []GameState{Processing, Ending, Successful} {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", text)
}

// OperatorMode selects what a click does.
type OperatorMode uint8

const (
	ModeMine OperatorMode = iota + 1
	ModeFlag
	ModeOver
)

func (m OperatorMode) String() string {
	switch m {
	case ModeMine:
		return "mine"
	case ModeFlag:
		return "flag"
	case ModeOver:
		return "over"
	default:
		return fmt.Sprintf("OperatorMode(%d)", uint8(m))
	}
}

func (m OperatorMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

var ErrBadMode = fmt.Errorf("mode must be one of 'mine', 'flag'")

// ParseMode accepts the modes a player may pick; "over" is not one of
// them.
func ParseMode(s string) (mode OperatorMode, err error) {
	switch strings.ToLower(s) {
	case "mine", "open":
		mode = ModeMine
	case "flag":
		mode = ModeFlag
	default:
		err = ErrBadMode
	}
	return
}

// UnmarshalText also accepts "over" so that snapshots round trip.
func (m *OperatorMode) UnmarshalText(text []byte) error {
	if string(text) == ModeOver.String() {
		*m = ModeOver
		return nil
	}
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
