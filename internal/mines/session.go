package mines

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger = logrus.New()

// Session is one game. Player actions and the clock may call into it
// from different goroutines; a single lock covers the state, the cells
// and the counters. Listeners run after the lock is released.
type Session struct {
	mu         sync.Mutex
	params     Params
	field      *Field
	play       *play
	state      GameState
	mode       OperatorMode
	timeLeft   time.Duration
	showAnswer bool
	exploded   int
	done       chan struct{}

	listeners    []listenerEntry
	nextListener int
	pending      []Event
}

type listenerEntry struct {
	id int
	fn Listener
}

func NewSession(p Params, r *rand.Rand) (*Session, error) {
	field, err := NewField(p, r)
	if err != nil {
		return nil, err
	}
	return NewSessionFromField(field, p.Duration)
}

func NewSessionFromField(f *Field, d time.Duration) (*Session, error) {
	p := Params{GridSize: f.Size, MineNumber: f.MineNumber(), Duration: d}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		params:   p,
		field:    f,
		play:     newPlay(f),
		state:    Processing,
		mode:     ModeMine,
		timeLeft: d,
		exploded: -1,
		done:     make(chan struct{}),
	}
	return s, nil
}

// do runs f under the lock and hands the events it produced to the
// listeners once the lock is released.
func (s *Session) do(f func()) {
	s.mu.Lock()
	f()
	events := s.pending
	s.pending = nil
	listeners := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		listeners[i] = l.fn
	}
	s.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}

func (s *Session) emit(e Event) {
	e.State = s.state
	e.Mode = s.mode
	e.TimeLeft = s.timeLeft
	s.pending = append(s.pending, e)
}

// Subscribe registers l for every later event and returns a function
// that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners = append(s.listeners, listenerEntry{id, l})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// finish moves a running game into a terminal state. Only the first
// call has any effect.
func (s *Session) finish(state GameState) bool {
	if s.state.Terminal() {
		return false
	}
	s.state = state
	s.mode = ModeOver
	if state == Ending {
		s.showAnswer = true
	}
	close(s.done)
	s.emit(Event{Kind: StateChanged})
	s.emit(Event{Kind: ModeChanged})
	Log.WithFields(logrus.Fields{
		"state":     state,
		"time_left": s.timeLeft,
		"exploded":  s.exploded,
	}).Debug("game over")
	return true
}

// checkWin runs after every accepted action; all safe cells open wins
// first, then all mines flagged.
func (s *Session) checkWin() {
	if s.play.cleared() || s.play.allMinesFlagged() {
		s.finish(Successful)
	}
}

// Click performs mode's action on cell i: ModeFlag toggles a flag,
// ModeMine opens the cell or, on a mine, loses the game. Anything that
// does not apply (a finished game, an open cell, an index off the
// board, an exhausted flag budget) is ignored.
func (s *Session) Click(i int, mode OperatorMode) {
	s.do(func() { s.click(i, mode) })
}

// ClickCurrent clicks i with the mode last picked by [Session.SetMode].
func (s *Session) ClickCurrent(i int) {
	s.do(func() { s.click(i, s.mode) })
}

func (s *Session) click(i int, mode OperatorMode) {
	if s.state.Terminal() || !s.field.IndexInBounds(i) {
		return
	}
	switch mode {
	case ModeFlag:
		if !s.play.toggleFlag(i) {
			return
		}
		s.emit(Event{Kind: FlagChanged, Index: i, Flagged: s.play.cells[i].flag})
	case ModeMine:
		if s.field.IsMine(i) {
			s.exploded = i
			s.finish(Ending)
			return
		}
		opened, unflagged := s.play.reveal(i)
		if len(opened) == 0 {
			return
		}
		for _, j := range unflagged {
			s.emit(Event{Kind: FlagChanged, Index: j})
		}
		for _, j := range opened {
			s.emit(Event{Kind: CellOpened, Index: j})
		}
	default:
		return
	}
	s.checkWin()
}

// SetMode picks the mode used by [Session.ClickCurrent]. It has no
// effect once the game is over.
func (s *Session) SetMode(mode OperatorMode) {
	s.do(func() {
		if s.state.Terminal() || s.mode == mode {
			return
		}
		if mode != ModeMine && mode != ModeFlag {
			return
		}
		s.mode = mode
		s.emit(Event{Kind: ModeChanged})
	})
}

// Forfeit loses a running game.
func (s *Session) Forfeit() {
	s.do(func() { s.finish(Ending) })
}

// ToggleAnswer shows or hides the mines of a lost game.
func (s *Session) ToggleAnswer() {
	s.do(func() {
		if s.state != Ending {
			return
		}
		s.showAnswer = !s.showAnswer
		s.emit(Event{Kind: AnswerToggled})
	})
}

// Tick takes one second off the clock of a running game and loses the
// game when the clock reaches zero.
func (s *Session) Tick() {
	s.do(func() {
		if s.state != Processing || s.timeLeft <= 0 {
			return
		}
		s.timeLeft -= time.Second
		s.emit(Event{Kind: Ticked})
		if s.timeLeft == 0 {
			s.finish(Ending)
		}
	})
}

// Done is closed when the game reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Params() Params {
	return s.params
}

// Field exposes the mine layout. It is immutable, so it is safe to
// read without the session lock; callers that show it to a player
// should wait for the game to end.
func (s *Session) Field() *Field {
	return s.field
}

func (s *Session) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Mode() OperatorMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) TimeLeft() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeft
}

func (s *Session) RemainingFlags() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.play.remainingFlags()
}

func (s *Session) RemainingSafeCells() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.play.remainingSafe
}

func (s *Session) ShowAnswer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showAnswer
}

func (s *Session) Cell(i int) (CellView, bool) {
	if !s.field.IndexInBounds(i) {
		return CellView{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellView(i), true
}

func (s *Session) cellView(i int) CellView {
	c := s.play.cells[i]
	v := CellView{
		Index:   i,
		Open:    c.open,
		Flagged: c.flag,
		Answer:  s.showAnswer,
	}
	if c.open {
		v.Adjacent = s.field.Adjacent(i)
	}
	if s.showAnswer {
		v.Mine = s.field.IsMine(i)
		v.Exploded = i == s.exploded
	}
	return v
}

// Snapshot is a consistent copy of everything a player can see.
type Snapshot struct {
	Params
	State              GameState
	Mode               OperatorMode
	TimeLeft           time.Duration
	RemainingFlags     int
	RemainingSafeCells int
	ShowAnswer         bool
	Grid               Grid
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid := make(Grid, s.field.Cells())
	for i := range grid {
		grid[i] = s.cellView(i).Status()
	}
	return Snapshot{
		Params:             s.params,
		State:              s.state,
		Mode:               s.mode,
		TimeLeft:           s.timeLeft,
		RemainingFlags:     s.play.remainingFlags(),
		RemainingSafeCells: s.play.remainingSafe,
		ShowAnswer:         s.showAnswer,
		Grid:               grid,
	}
}
