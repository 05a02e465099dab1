package selection

import (
	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/internal/hashidx"
	"github.com/hupe1980/colsel/model"
)

// hashSelect returns the candidates whose value equals s.tl by walking the
// hash chain of h. With phash, h indexes the view's parent.
func (s *selector[T]) hashSelect(h *hashidx.Index[T], phash bool, estimate, maximum int) (candidate.Set, Algo, error) {
	algo := AlgoHash
	hseq := s.col.SeqBase()
	d := 0
	if phash {
		algo = AlgoParentHash
		d = s.col.Offset()
	}
	lo := int(s.ci.First()-hseq) + d
	hi := int(s.ci.Last()-hseq) + 1 + d

	b, err := candidate.NewBuilder(estimate, maximum, s.env.Resource)
	if err != nil {
		return candidate.Empty(), algo, err
	}
	dense := s.ci.IsDense()
	h.Lookup(s.tl, lo, hi, func(p int) bool {
		o := hseq + model.OID(p-d)
		if !dense && !s.ci.Contains(o) {
			return true
		}
		err = b.Append(o)
		return err == nil
	})
	if err != nil {
		b.Release()
		return candidate.Empty(), algo, err
	}
	// Chains run from the highest position down.
	b.Reverse()
	return b.Finish(), algo, nil
}

// hashAntiSelect computes x != v as the candidates minus the hash hits,
// minus the nil rows unless nil matches.
func (s *selector[T]) hashAntiSelect(h *hashidx.Index[T], phash bool, estimate, maximum int) (candidate.Set, Algo, error) {
	hits, algo, err := s.hashSelect(h, phash, estimate, maximum)
	if err != nil {
		return hits, algo, err
	}
	res := s.ci.Diff(hits)
	if !s.col.NoNil() && !s.nilMatches {
		nils, _, err := s.nilRows()
		if err != nil {
			return candidate.Empty(), algo, err
		}
		res = res.Diff(nils)
	}
	return res, algo, nil
}
