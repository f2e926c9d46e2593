package mines

// toggleFlag flips the flag on a closed cell. Placing a flag needs one
// left in the budget of MineNumber flags; when none is left the toggle
// is dropped. It reports whether anything changed.
func (p *play) toggleFlag(i int) bool {
	c := p.cells[i]
	if c.open {
		return false
	}
	if !c.flag && p.flags >= p.field.MineNumber() {
		return false
	}
	p.setFlag(i, !c.flag)
	return true
}

func (p *play) setFlag(i int, on bool) {
	if p.cells[i].flag == on {
		return
	}
	d := -1
	if on {
		d = 1
	}
	p.cells[i].flag = on
	p.flags += d
	if p.field.IsMine(i) {
		p.correctFlags += d
	}
}

func (p *play) remainingFlags() int {
	return p.field.MineNumber() - p.flags
}

// allMinesFlagged does not look at flags on safe cells.
func (p *play) allMinesFlagged() bool {
	return p.correctFlags == p.field.MineNumber()
}
