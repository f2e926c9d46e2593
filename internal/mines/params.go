package mines

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultDuration = 4 * time.Minute
	MaxDuration     = 24 * time.Hour

	// MaxGridSize keeps a board at a million cells at most.
	MaxGridSize = 1000
)

type Params struct {
	GridSize, MineNumber int
	Duration             time.Duration
}

func (p Params) Unpack() (size int, mines int, d time.Duration) {
	return p.GridSize, p.MineNumber, p.Duration
}

func (p Params) Cells() int {
	return p.GridSize * p.GridSize
}

func (p Params) SafeCells() int {
	return p.Cells() - p.MineNumber
}

// Validate reports a [ConfigurationError] for any pair that cannot hold
// exactly MineNumber unique mines and at least one safe cell.
func (p Params) Validate() error {
	if p.GridSize <= 0 {
		return configErrorf("grid size must be positive, got %d", p.GridSize)
	}
	if p.GridSize > MaxGridSize {
		return configErrorf("grid size must be at most %d, got %d", MaxGridSize, p.GridSize)
	}
	if p.MineNumber < 0 {
		return configErrorf("mine number must not be negative, got %d", p.MineNumber)
	}
	if p.MineNumber >= p.Cells() {
		return configErrorf(
			"mine number must be less than %d for a %dx%d grid, got %d",
			p.Cells(), p.GridSize, p.GridSize, p.MineNumber,
		)
	}
	if p.Duration < time.Second {
		return configErrorf("duration must be at least one second, got %s", p.Duration)
	}
	if p.Duration > MaxDuration {
		return configErrorf("duration must be at most %s, got %s", MaxDuration, p.Duration)
	}
	if p.Duration%time.Second != 0 {
		return configErrorf("duration must be whole seconds, got %s", p.Duration)
	}
	return nil
}

// Seconds converts n to a duration, rejecting values the clock cannot
// run for before the multiplication can overflow.
func Seconds(n int64) (time.Duration, error) {
	if n < 1 || n > int64(MaxDuration/time.Second) {
		return 0, configErrorf(
			"seconds must be between 1 and %d, got %d",
			int64(MaxDuration/time.Second), n,
		)
	}
	return time.Duration(n) * time.Second, nil
}

func (p Params) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.GridSize, p.MineNumber, int64(p.Duration/time.Second))
}

func ParseSeed(seed string) (*Params, error) {
	p := &Params{}
	var seconds int64
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.GridSize, &p.MineNumber, &seconds)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	if p.Duration, err = Seconds(seconds); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type Difficulty struct {
	Name string
	Params
}

var (
	Easy   = Difficulty{"easy", Params{GridSize: 8, MineNumber: 10, Duration: DefaultDuration}}
	Medium = Difficulty{"medium", Params{GridSize: 10, MineNumber: 15, Duration: DefaultDuration}}
	Hard   = Difficulty{"hard", Params{GridSize: 12, MineNumber: 20, Duration: DefaultDuration}}
)

func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

var ErrBadDifficulty error

func init() {
	var names []string
	for _, d := range Difficulties() {
		names = append(names, "'"+d.Name+"'")
	}
	ErrBadDifficulty = fmt.Errorf("difficulty must be one of %s", strings.Join(names, ", "))
}

func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties() {
		if strings.EqualFold(d.Name, s) {
			return d, nil
		}
	}
	return Difficulty{}, ErrBadDifficulty
}
