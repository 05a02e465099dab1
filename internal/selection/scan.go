package selection

import (
	"github.com/hupe1980/colsel/candidate"
)

// fullScan tests the value of every candidate.
func (s *selector[T]) fullScan(match func(T) bool, estimate, maximum int) (candidate.Set, Algo, error) {
	algo := AlgoScan
	if s.ci.IsDense() {
		algo = AlgoDenseScan
	}
	b, err := candidate.NewBuilder(estimate, maximum, s.env.Resource)
	if err != nil {
		return candidate.Empty(), algo, err
	}
	values := s.col.Values()
	hseq := s.col.SeqBase()
	it := s.ci.Iter()
	for o, ok := it.Next(); ok; o, ok = it.Next() {
		if match(values[o-hseq]) {
			if err := b.AppendAt(o, it.Pos()); err != nil {
				b.Release()
				return candidate.Empty(), algo, err
			}
		}
	}
	return b.Finish(), algo, nil
}
