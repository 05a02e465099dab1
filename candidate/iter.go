package candidate

import "github.com/hupe1980/colsel/model"

// Iter walks a Set in ascending order. It can skip ahead, which is how the
// imprint scan jumps over pages that cannot match.
type Iter struct {
	s   Set
	pos int
}

// Iter returns an iterator positioned before the first member.
func (s Set) Iter() *Iter {
	return &Iter{s: s}
}

// Next returns the next member.
func (it *Iter) Next() (model.OID, bool) {
	if it.pos >= it.s.n {
		return 0, false
	}
	o := it.s.At(it.pos)
	it.pos++
	return o, true
}

// Peek returns the next member without consuming it.
func (it *Iter) Peek() (model.OID, bool) {
	if it.pos >= it.s.n {
		return 0, false
	}
	return it.s.At(it.pos), true
}

// Advance skips all members smaller than o.
func (it *Iter) Advance(o model.OID) {
	if it.pos >= it.s.n || it.s.At(it.pos) >= o {
		return
	}
	it.pos = max(it.pos, it.s.Search(o))
}

// Pos returns the number of members consumed or skipped so far.
func (it *Iter) Pos() int {
	return it.pos
}
