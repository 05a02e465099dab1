package selection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/column"
	"github.com/hupe1980/colsel/internal/hashidx"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/internal/resource"
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// Algo names the strategy that produced a selection result.
type Algo string

const (
	AlgoTriviallyEmpty      Algo = "select: trivially empty"
	AlgoEmptyInterval       Algo = "select: empty interval"
	AlgoAntiNilNil          Algo = "select: anti: nil-nil range, nonil"
	AlgoAntiEquiOpen        Algo = "select: anti, equi, open, nil_matches"
	AlgoEverythingExceptNil Algo = "select: everything except nil"
	AlgoEmptyRange          Algo = "select: empty range"
	AlgoEquiNilNoNil        Algo = "select: equi-nil, nonil"
	AlgoEverythingNoNil     Algo = "select: everything, nonil"
	AlgoOutOfRange          Algo = "select: nothing, out of range"
	AlgoEverythingAnti      Algo = "select: everything, anti, nonil"
	AlgoDense               Algo = "select: dense"
	AlgoSorted              Algo = "select: sorted"
	AlgoRevSorted           Algo = "select: reverse sorted"
	AlgoOrderIdx            Algo = "select: orderidx"
	AlgoParentOrderIdx      Algo = "select: parent orderidx"
	AlgoHash                Algo = "hashselect"
	AlgoParentHash          Algo = "hashselect on parent"
	AlgoImprints            Algo = "imprints"
	AlgoImprintsStats       Algo = "imprints: out of range"
	AlgoScan                Algo = "select: fullscan"
	AlgoDenseScan           Algo = "select: densescan"
	AlgoThetaNil            Algo = "thetaselect: nil operand"
)

// DefaultHashThreshold is the number of equality selections on a transient
// column before a hash index is built for it.
const DefaultHashThreshold = 1000

// Env carries the shared services a selection may use. The zero value
// selects without imprints, accounting or logging.
type Env struct {
	// Imprints manages imprint indexes. Nil disables imprint scans.
	Imprints *imprints.Manager

	// Resource accounts result buffers. Nil means unlimited.
	Resource *resource.Controller

	// Logger receives one debug record per selection.
	Logger *slog.Logger

	// HashThreshold overrides DefaultHashThreshold when positive.
	HashThreshold int32

	// SampleThreshold is the candidate count above which the result size is
	// estimated by sampling. Zero means 10000.
	SampleThreshold int
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Env) hashThreshold() int32 {
	if e.HashThreshold > 0 {
		return e.HashThreshold
	}
	return DefaultHashThreshold
}

func (e *Env) sampleThreshold() int {
	if e.SampleThreshold > 0 {
		return e.SampleThreshold
	}
	return defaultSampleThreshold
}

// Result is the outcome of a selection.
type Result struct {
	// Set holds the matching OIDs in ascending order.
	Set candidate.Set
	// Algo names the strategy that produced Set.
	Algo Algo
}

// Select returns the OIDs of the candidates of col whose value satisfies q.
// A nil cand means every row of col. The result is strictly ascending and
// does not depend on which indexes exist.
//
// Only a refused result buffer fails a valid query; index failures fall
// back to scanning.
func Select[T scalar.Scalar](ctx context.Context, env *Env, col *column.Column[T], cand *candidate.Set, q Query[T]) (Result, error) {
	if env == nil {
		env = &Env{}
	}
	t0 := time.Now()
	res, err := run(ctx, env, col, cand, q, false)
	if err != nil {
		env.logger().Debug("select failed", "column", col.Name(), "query", q.String(), "error", err)
		return Result{}, err
	}
	env.logger().Debug("select",
		"column", col.Name(),
		"query", q.String(),
		"algo", string(res.Algo),
		"rows", res.Set.Len(),
		"duration", time.Since(t0),
	)
	return res, nil
}

// SelectNil returns the candidates of col holding nil.
func SelectNil[T scalar.Scalar](ctx context.Context, env *Env, col *column.Column[T], cand *candidate.Set) (Result, error) {
	nilv := scalar.Nil[T]()
	return Select(ctx, env, col, cand, Query[T]{Lo: &nilv, LoIncl: true, HiIncl: true})
}

// ThetaSelect returns the candidates of col for which "x op v" holds. See
// ThetaQuery for the operators.
func ThetaSelect[T scalar.Scalar](ctx context.Context, env *Env, col *column.Column[T], cand *candidate.Set, v T, op string) (Result, error) {
	q, ok, err := ThetaQuery(op, v)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Set: candidate.Empty(), Algo: AlgoThetaNil}, nil
	}
	return Select(ctx, env, col, cand, q)
}

// selector holds the state of one selection after argument analysis.
type selector[T scalar.Scalar] struct {
	ctx      context.Context
	env      *Env
	col      *column.Column[T]
	ci       candidate.Set
	q        Query[T]
	sampling bool

	tl, th     T
	li, hi     bool
	lval, hval bool
	lnil       bool
	equi       bool
	antiequi   bool
	anti       bool
	nilMatches bool
}

func done(s candidate.Set, algo Algo) (Result, error) {
	return Result{Set: s, Algo: algo}, nil
}

// run is Select without logging. With sampling set, it runs on a sample
// slice and must not build or use indexes.
func run[T scalar.Scalar](ctx context.Context, env *Env, col *column.Column[T], cand *candidate.Set, q Query[T], sampling bool) (Result, error) {
	if q.Lo == nil {
		return Result{}, fmt.Errorf("%w: low value required", ErrInvalidArgument)
	}

	hseq := col.SeqBase()
	ci := candidate.Dense(hseq, col.Len())
	if cand != nil {
		ci = cand.SliceVal(hseq, hseq+model.OID(col.Len()))
	}
	if ci.Len() == 0 {
		return done(candidate.Empty(), AlgoTriviallyEmpty)
	}

	s := &selector[T]{
		ctx:        ctx,
		env:        env,
		col:        col,
		ci:         ci,
		q:          q,
		sampling:   sampling,
		tl:         *q.Lo,
		li:         q.LoIncl,
		hi:         q.HiIncl,
		anti:       q.Anti,
		nilMatches: q.NilMatches,
	}
	hasHi := q.Hi != nil
	if hasHi {
		s.th = *q.Hi
	}

	s.lnil = scalar.IsNil(s.tl)
	s.lval = !s.lnil || !hasHi
	s.equi = !hasHi || (s.lval && scalar.Equal(s.tl, s.th))
	if s.lnil && s.nilMatches && (!hasHi || scalar.IsNil(s.th)) {
		// With nil matching, nil..nil is a point select on nil.
		s.equi = true
		s.lval = true
	}

	if s.equi {
		if !hasHi {
			s.hi = s.li
		}
		s.th = s.tl
		s.hval = true
		if !s.anti && (!s.li || !s.hi) {
			return done(candidate.Empty(), AlgoEmptyInterval)
		}
	} else {
		s.nilMatches = false
		s.hval = !scalar.IsNil(s.th)
	}

	if s.anti {
		switch {
		case s.lval != s.hval:
			// One bound is nil: the complement is the other half-range.
			s.li, s.hi = !s.hi, !s.li
			s.tl, s.th = s.th, s.tl
			s.lval, s.hval = s.hval, s.lval
			s.lnil = scalar.IsNil(s.tl)
			s.anti = false
		case !s.lval && !s.hval:
			// Every non-nil value is in nil..nil.
			return done(candidate.Empty(), AlgoAntiNilNil)
		case (s.equi && (s.lnil || !(s.li && s.hi))) || scalar.Compare(s.tl, s.th) > 0:
			if s.equi && s.nilMatches && !(s.li && s.hi) {
				// Nil is an ordinary value, so nothing is excluded.
				return done(s.ci, AlgoAntiEquiOpen)
			}
			nils, _, err := s.nilRows()
			if err != nil {
				return Result{}, err
			}
			return done(s.ci.Diff(nils), AlgoEverythingExceptNil)
		default:
			s.antiequi = s.equi
			s.equi = false
		}
	}

	if s.hval && !s.anti && scalar.Compare(s.tl, s.th) > 0 {
		return done(candidate.Empty(), AlgoEmptyRange)
	}
	if s.equi && s.lnil && col.NoNil() {
		return done(candidate.Empty(), AlgoEquiNilNoNil)
	}
	if !s.equi && !s.lval && !s.hval && s.lnil && col.NoNil() {
		return done(s.ci, AlgoEverythingNoNil)
	}

	if res, ok := s.shortCircuit(); ok {
		return done(res.Set, res.Algo)
	}
	return s.dispatch()
}

// shortCircuit answers the query from the column's known value range.
func (s *selector[T]) shortCircuit() (Result, bool) {
	minv, maxv, known := knownRange(s.col)
	var tl, th T
	if s.lval {
		tl = s.tl
	}
	if s.hval {
		th = s.th
	}
	rc := compareRange(tl, th, s.lval, s.hval, s.li, s.hi, minv, maxv, known)
	if s.anti {
		switch rc {
		case rangeContains:
			if s.col.NoNil() || !s.nilMatches {
				return Result{Set: candidate.Empty(), Algo: AlgoOutOfRange}, true
			}
		case rangeBefore, rangeAfter:
			if s.col.NoNil() || s.nilMatches {
				return Result{Set: s.ci, Algo: AlgoEverythingAnti}, true
			}
		}
		return Result{}, false
	}
	if s.equi && s.lnil {
		return Result{}, false
	}
	switch rc {
	case rangeBefore, rangeAfter:
		return Result{Set: candidate.Empty(), Algo: AlgoOutOfRange}, true
	case rangeContains:
		if s.col.NoNil() {
			return Result{Set: s.ci, Algo: AlgoEverythingNoNil}, true
		}
	}
	return Result{}, false
}

// nilRows selects the nil rows among the candidates.
func (s *selector[T]) nilRows() (candidate.Set, Algo, error) {
	nilv := scalar.Nil[T]()
	res, err := run(s.ctx, s.env, s.col, &s.ci, Query[T]{Lo: &nilv, LoIncl: true, HiIncl: true}, s.sampling)
	return res.Set, res.Algo, err
}

// chooseHash decides whether an equality select goes through a hash index,
// and which one.
func (s *selector[T]) chooseHash() (h *hashidx.Index[T], phash, wanthash bool) {
	if h := s.col.Hash(); h != nil {
		return h, false, true
	}
	ncand := float64(s.ci.Len())
	if p := s.col.Parent(); p != nil {
		if h := p.Hash(); h != nil && h.AvgChain() < ncand {
			return h, true, true
		}
	}
	if s.col.Persistent() || (s.col.Parent() != nil && s.col.Parent().Persistent()) {
		return nil, false, true
	}
	// Transient columns earn a hash by repeated use.
	return nil, false, s.col.SelectCount() > s.env.hashThreshold()
}

// orderIndex returns an order index usable for the query, preferring the
// column's own.
func (s *selector[T]) orderIndex() (order []int, poidx bool) {
	if s.anti || s.col.Sorted() || s.col.RevSorted() || !s.ci.IsDense() {
		return nil, false
	}
	if o := s.col.OrderIndex(); o != nil {
		return o, false
	}
	if p := s.col.Parent(); p != nil {
		if o := p.OrderIndex(); o != nil {
			return o, true
		}
	}
	return nil, false
}

func (s *selector[T]) dispatch() (Result, error) {
	var (
		h        *hashidx.Index[T]
		phash    bool
		wanthash bool
	)
	if (s.equi || s.antiequi) && !s.col.Sorted() && !s.col.RevSorted() && !s.sampling {
		h, phash, wanthash = s.chooseHash()
	}

	if h == nil {
		order, poidx := s.orderIndex()
		if s.col.Sorted() || s.col.RevSorted() || order != nil {
			set, algo, err := s.orderedSelect(order, poidx)
			if err != nil {
				return Result{}, err
			}
			return done(set, algo)
		}
	}

	ncand := s.ci.Len()
	maximum := ncand
	estimate := -1
	if (s.equi || s.antiequi) && h != nil && h.IsKey() {
		estimate = 1
	}
	if estimate < 0 && (s.col.Key() || (s.col.Parent() != nil && s.col.Parent().Key())) {
		if s.equi || (s.antiequi && wanthash) {
			estimate = 1
		} else if !s.anti && s.lval && s.hval {
			if n, ok := keyRangeCount(s.tl, s.th, s.li, s.hi); ok {
				estimate = n
			}
		}
	}
	if estimate >= 0 {
		maximum = min(maximum, estimate)
	}
	if wanthash && h == nil && estimate < 0 {
		if ncand <= s.env.sampleThreshold() {
			estimate = maximum
		} else if n, ok := s.sampleEstimate(); ok {
			estimate = n
		}
		wanthash = estimate >= 0 && estimate < ncand/100
	}
	if estimate < 0 {
		estimate = defaultEstimate
	}
	estimate = min(estimate, maximum)

	if wanthash {
		if h == nil {
			h = s.col.BuildHash()
		}
		var (
			set  candidate.Set
			algo Algo
			err  error
		)
		if s.antiequi {
			set, algo, err = s.hashAntiSelect(h, phash, 1, ncand)
		} else {
			set, algo, err = s.hashSelect(h, phash, estimate, maximum)
		}
		if err != nil {
			return Result{}, err
		}
		return done(set, algo)
	}

	if s.equi {
		set, algo, err := s.fullScan(pointMatcher(s.tl, s.lnil), estimate, maximum)
		if err != nil {
			return Result{}, err
		}
		return done(set, algo)
	}

	// Only an anti point select can still let nil match; it does so even
	// when normalization turned it into a plain range.
	nilMatch := s.anti && s.nilMatches && !s.col.NoNil()
	b, ok := normalize(s.tl, s.th, s.li, s.hi, s.lval, s.hval, s.anti)
	if !ok {
		if nilMatch {
			set, algo, err := s.nilRows()
			if err != nil {
				return Result{}, err
			}
			return done(set, algo)
		}
		return done(candidate.Empty(), AlgoEmptyRange)
	}
	match := b.matcher(s.col.NoNil(), nilMatch)

	if x := s.imprintIndex(b); x != nil {
		set, algo, err := s.imprintScan(x, b, match, estimate, maximum)
		if err != nil {
			return Result{}, err
		}
		return done(set, algo)
	}
	set, algo, err := s.fullScan(match, estimate, maximum)
	if err != nil {
		return Result{}, err
	}
	return done(set, algo)
}

// imprintIndex returns the imprint index of the column's root when an imprint
// scan applies, or nil.
func (s *selector[T]) imprintIndex(b bounds[T]) *imprints.Index[T] {
	if s.env.Imprints == nil || s.sampling || s.col.IsDense() {
		return nil
	}
	if s.anti && s.nilMatches && !s.col.NoNil() {
		return nil
	}
	root := s.col
	if p := s.col.Parent(); p != nil {
		root = p
	}
	slot := root.ImprintSlot()
	if !root.Persistent() && slot.Peek() == nil && !slot.OnDisk() {
		return nil
	}
	x, err := imprints.Acquire(s.ctx, s.env.Imprints, root)
	if err != nil {
		s.env.logger().Debug("imprints unavailable, scanning", "column", root.Name(), "error", err)
		return nil
	}
	return x
}
