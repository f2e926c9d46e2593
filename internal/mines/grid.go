package mines

import (
	"fmt"
	"strconv"
	"strings"
)

// CellStatus is what a player may know about a cell.
type CellStatus int8

const (
	Unknown       CellStatus = -2
	Flagged       CellStatus = -1
	CorrectFlag   CellStatus = 64 // mines displayed
	ExplodedMine  CellStatus = 65
	WrongFlag     CellStatus = 66
	UnflaggedMine CellStatus = 67
	// 0-8 for an open cell with given number of mined neighbors
)

func (s CellStatus) String() string {
	switch s {
	case Unknown:
		return " "
	case Flagged, CorrectFlag:
		return "*"
	case ExplodedMine:
		return "X"
	case WrongFlag:
		return "x"
	case UnflaggedMine:
		return "!"
	case 0, 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

type Grid []CellStatus

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// CellView is the read-only view of one cell. Mine is only set once
// mines are displayed (Answer); Adjacent is only meaningful when Open.
type CellView struct {
	Index    int
	Open     bool
	Flagged  bool
	Answer   bool
	Mine     bool
	Exploded bool
	Adjacent int
}

func (c CellView) Status() CellStatus {
	switch {
	case c.Open:
		return CellStatus(c.Adjacent)
	case c.Exploded:
		return ExplodedMine
	case c.Flagged && c.Mine:
		return CorrectFlag
	case c.Mine:
		return UnflaggedMine
	case c.Flagged && c.Answer:
		return WrongFlag
	case c.Flagged:
		return Flagged
	default:
		return Unknown
	}
}
