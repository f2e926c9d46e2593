package mines

import "iter"

// Board is the geometry of a square grid. Cells are addressed by
// index y*Size+x.
type Board struct {
	Size int
}

func (b Board) Cells() int {
	return b.Size * b.Size
}

func (b Board) Index(x, y int) int {
	return y*b.Size + x
}

func (b Board) Point(i int) (x, y int) {
	return i % b.Size, i / b.Size
}

func (b Board) PointInBounds(x, y int) bool {
	return 0 <= x && x < b.Size && 0 <= y && y < b.Size
}

func (b Board) IndexInBounds(i int) bool {
	return 0 <= i && i < b.Cells()
}

// Neighbors yields the indices of the Moore neighbourhood of i, clipped
// at the edges.
func (b Board) Neighbors(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		x, y := b.Point(i)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				xx, yy := x+dx, y+dy
				if !b.PointInBounds(xx, yy) {
					continue
				}
				if !yield(b.Index(xx, yy)) {
					return
				}
			}
		}
	}
}
