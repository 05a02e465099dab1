package colsel

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/column"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/internal/selection"
	"github.com/hupe1980/colsel/scalar"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Query is a range predicate over one column.
//
// Lo is required. A nil Hi makes the query a point select on Lo. A nil
// value (see scalar.Nil) as Lo with Hi set means no lower bound; as Hi it
// means no upper bound. Lo nil with Hi absent selects the nil rows.
//
// With Anti the result is the complement of the range, without nil rows
// unless NilMatches is set. NilMatches makes nil an ordinary value for
// point and anti-point selects.
type Query[T scalar.Scalar] = selection.Query[T]

// Algo names the strategy that produced a selection result.
type Algo = selection.Algo

// Result is the outcome of a selection: the ascending matching OIDs and
// the strategy that found them.
type Result = selection.Result

// Point returns the query x == v.
func Point[T scalar.Scalar](v T) Query[T] {
	return selection.Point(v)
}

// Between returns the query lo <= x <= hi. Either bound may be nil.
func Between[T scalar.Scalar](lo, hi T) Query[T] {
	return selection.Between(lo, hi)
}

// Select returns the OIDs of the candidates of col whose value satisfies q.
// A nil cand means every row of col. The result is strictly ascending,
// dense when contiguous, and independent of which indexes exist.
func Select[T scalar.Scalar](ctx context.Context, e *Engine, col *column.Column[T], cand *candidate.Set, q Query[T]) (Result, error) {
	if err := e.check(); err != nil {
		return Result{}, err
	}
	ctx, span := e.tracer.Start(ctx, "colsel.Select", trace.WithAttributes(
		attribute.String("column", col.Name()),
		attribute.String("query", q.String()),
	))
	defer span.End()

	start := time.Now()
	res, err := selection.Select(ctx, &e.env, col, cand, q)
	err = translateError(err)
	e.metrics.RecordSelect(string(res.Algo), res.Set.Len(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.LogSelect(ctx, col.Name(), "", 0, err)
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("algo", string(res.Algo)),
		attribute.Int("rows", res.Set.Len()),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// SelectNil returns the candidates of col holding nil.
func SelectNil[T scalar.Scalar](ctx context.Context, e *Engine, col *column.Column[T], cand *candidate.Set) (Result, error) {
	nilv := scalar.Nil[T]()
	return Select(ctx, e, col, cand, Query[T]{Lo: &nilv, LoIncl: true, HiIncl: true})
}

// ThetaSelect returns the candidates of col for which "x op v" holds.
//
// The operators are =, ==, <, <=, >, >=, != and <>, which never match nil,
// and eq and ne, which compare nil as an ordinary value. A nil v matches
// nothing except under eq and ne.
func ThetaSelect[T scalar.Scalar](ctx context.Context, e *Engine, col *column.Column[T], cand *candidate.Set, v T, op string) (Result, error) {
	q, ok, err := selection.ThetaQuery(op, v)
	if err != nil {
		if errors.Is(err, selection.ErrUnsupportedOperator) {
			return Result{}, &ErrUnknownOperator{Op: op, cause: err}
		}
		return Result{}, translateError(err)
	}
	if !ok {
		if err := e.check(); err != nil {
			return Result{}, err
		}
		return Result{Set: candidate.Empty(), Algo: selection.AlgoThetaNil}, nil
	}
	return Select(ctx, e, col, cand, q)
}

// Register attaches a persisted imprint file to a persistent column, so the
// first range selection loads it instead of building. It reports whether a
// file was found; the file is validated on first use.
func Register[T scalar.Scalar](e *Engine, col *column.Column[T]) bool {
	if e.check() != nil {
		return false
	}
	return imprints.Discover(e.imprints, col)
}

// Evict releases the in-memory imprint index of col if it is persisted,
// keeping the file. It reports whether an index was released.
func Evict[T scalar.Scalar](e *Engine, col *column.Column[T]) bool {
	return imprints.Unload(e.imprints, col)
}

// DropImprints destroys the imprint index of col in memory and on disk.
// Views have no index of their own; dropping through a view drops the
// parent's.
func DropImprints[T scalar.Scalar](e *Engine, col *column.Column[T]) error {
	if p := col.Parent(); p != nil {
		col = p
	}
	return imprints.Drop(e.imprints, col)
}

// Warm builds or loads the imprint indexes of cols concurrently, so later
// range selections do not pay for them. Views warm their parent. The first
// failure is returned.
func Warm[T scalar.Scalar](ctx context.Context, e *Engine, cols ...*column.Column[T]) error {
	if err := e.check(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, col := range cols {
		if p := col.Parent(); p != nil {
			col = p
		}
		g.Go(func() error {
			_, err := imprints.Acquire(ctx, e.imprints, col)
			return translateError(err)
		})
	}
	return g.Wait()
}
