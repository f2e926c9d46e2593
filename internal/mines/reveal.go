package mines

type cell struct {
	open, flag bool
}

// play is the mutable part of a game: cell states and the counters
// derived from them. It is owned by a [Session] and only touched with
// the session lock held.
type play struct {
	field         *Field
	cells         []cell
	remainingSafe int
	flags         int
	correctFlags  int
}

func newPlay(f *Field) *play {
	return &play{
		field:         f,
		cells:         make([]cell, f.Cells()),
		remainingSafe: f.Cells() - f.MineNumber(),
	}
}

// reveal opens i and, while the opened cells have no mined neighbours,
// everything around them. It returns the newly opened cells and the
// flags that were cleared on the way. Open and mined cells are left
// alone.
func (p *play) reveal(i int) (opened, unflagged []int) {
	if p.cells[i].open || p.field.IsMine(i) {
		return nil, nil
	}

	/*
	 * Every cell goes through the to-do list at most once. Each time
	 * one turns out to have no neighbouring mines, its closed safe
	 * neighbours join the list as well.
	 */
	std := newCelltodo(p.field.Cells())
	std.add(i)
	for {
		j, ok := std.pop()
		if !ok {
			break
		}
		if p.cells[j].flag {
			p.setFlag(j, false)
			unflagged = append(unflagged, j)
		}
		if p.open(j) {
			opened = append(opened, j)
		}
		if p.field.Adjacent(j) != 0 {
			continue
		}
		for k := range p.field.Neighbors(j) {
			if !p.cells[k].open && !p.field.IsMine(k) {
				std.add(k)
			}
		}
	}

	Log.WithField("start", i).WithField("opened", len(opened)).Debug("reveal")
	return opened, unflagged
}

// open reports whether i went from closed to open.
func (p *play) open(i int) bool {
	if p.cells[i].open {
		return false
	}
	p.cells[i].open = true
	p.remainingSafe--
	return true
}

func (p *play) cleared() bool {
	return p.remainingSafe == 0
}
