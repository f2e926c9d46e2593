package mines

import "math/rand/v2"

// Mine marks a mined cell in the adjacency counts.
const Mine = -1

// Field is the immutable part of a game: where the mines are and how
// many of them touch each cell.
type Field struct {
	Board
	mineNumber int
	mines      []bool /* real mine points */
	counts     []int8
}

// NewField places p.MineNumber mines uniformly at random, without
// replacement.
func NewField(p Params, r *rand.Rand) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	board := Board{Size: p.GridSize}
	grid := make([]bool, board.Cells())

	/*
	 * Write down the list of possible mine locations, then pick n off
	 * the list at random.
	 */
	candidates := make([]int, board.Cells())
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	for range p.MineNumber {
		i := r.IntN(k)
		grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	return newField(board, p.MineNumber, grid), nil
}

// NewFieldFromMines builds a field with mines at exactly the given
// indices.
func NewFieldFromMines(size int, indices []int) (*Field, error) {
	p := Params{GridSize: size, MineNumber: len(indices), Duration: DefaultDuration}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	board := Board{Size: size}
	grid := make([]bool, board.Cells())
	for _, i := range indices {
		if !board.IndexInBounds(i) {
			return nil, configErrorf("mine index %d out of range [0, %d)", i, board.Cells())
		}
		if grid[i] {
			return nil, configErrorf("duplicate mine index %d", i)
		}
		grid[i] = true
	}
	return newField(board, len(indices), grid), nil
}

func newField(board Board, mineNumber int, grid []bool) *Field {
	f := &Field{
		Board:      board,
		mineNumber: mineNumber,
		mines:      grid,
		counts:     make([]int8, board.Cells()),
	}
	for i := range f.counts {
		if f.mines[i] {
			f.counts[i] = Mine
			continue
		}
		var n int8
		for j := range board.Neighbors(i) {
			if f.mines[j] {
				n++
			}
		}
		f.counts[i] = n
	}
	return f
}

func (f *Field) MineNumber() int {
	return f.mineNumber
}

func (f *Field) IsMine(i int) bool {
	return f.mines[i]
}

// Adjacent returns the number of mines around i, or [Mine].
func (f *Field) Adjacent(i int) int {
	return int(f.counts[i])
}

// MineSet returns the mined indices in ascending order.
func (f *Field) MineSet() []int {
	set := make([]int, 0, f.mineNumber)
	for i, mined := range f.mines {
		if mined {
			set = append(set, i)
		}
	}
	return set
}

// Counts returns a copy of the adjacency counts.
func (f *Field) Counts() []int {
	counts := make([]int, len(f.counts))
	for i, c := range f.counts {
		counts[i] = int(c)
	}
	return counts
}

func (f *Field) String() string {
	g := make(Grid, len(f.counts))
	for i, c := range f.counts {
		if c == Mine {
			g[i] = UnflaggedMine
		} else {
			g[i] = CellStatus(c)
		}
	}
	return g.ToString(f.Size)
}
