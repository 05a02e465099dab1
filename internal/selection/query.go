package selection

import (
	"fmt"
	"strings"

	"github.com/hupe1980/colsel/scalar"
)

// Query is a range predicate over one column.
//
// Lo is required. A nil Hi makes the query a point select on Lo. A nil
// value (see scalar.Nil) as Lo with Hi set means no lower bound; as Hi it
// means no upper bound. Lo nil with Hi absent selects the nil rows, which is
// the only way to obtain them.
//
// With Anti the result is the complement of the range, without nil rows
// unless NilMatches is set. NilMatches makes nil an ordinary value for
// point and anti-point selects; it is ignored for ranges.
type Query[T scalar.Scalar] struct {
	Lo         *T
	Hi         *T
	LoIncl     bool
	HiIncl     bool
	Anti       bool
	NilMatches bool
}

// Point returns the query x == v.
func Point[T scalar.Scalar](v T) Query[T] {
	return Query[T]{Lo: &v, LoIncl: true, HiIncl: true}
}

// Between returns the query lo <= x <= hi. Either bound may be nil.
func Between[T scalar.Scalar](lo, hi T) Query[T] {
	return Query[T]{Lo: &lo, Hi: &hi, LoIncl: true, HiIncl: true}
}

// String renders the query in interval notation.
func (q Query[T]) String() string {
	var sb strings.Builder
	if q.Anti {
		sb.WriteString("not ")
	}
	if q.Lo == nil {
		sb.WriteString("<no lo>")
		return sb.String()
	}
	if q.Hi == nil {
		fmt.Fprintf(&sb, "= %s", scalar.Format(*q.Lo))
	} else {
		open, closing := "(", ")"
		if q.LoIncl {
			open = "["
		}
		if q.HiIncl {
			closing = "]"
		}
		fmt.Fprintf(&sb, "%s%s, %s%s", open, scalar.Format(*q.Lo), scalar.Format(*q.Hi), closing)
	}
	if q.NilMatches {
		sb.WriteString(" nil-matches")
	}
	return sb.String()
}

// ThetaQuery translates a comparison "x op v" into a Query. The operators
// are =, ==, <, <=, >, >=, != and <>, plus eq and ne, which compare with
// nil as an ordinary value. ok is false when the query can match nothing,
// which is the case for every operator but eq and ne when v is nil.
func ThetaQuery[T scalar.Scalar](op string, v T) (q Query[T], ok bool, err error) {
	nilv := scalar.Nil[T]()
	switch op {
	case "eq":
		return Query[T]{Lo: &v, LoIncl: true, HiIncl: true, NilMatches: true}, true, nil
	case "ne":
		return Query[T]{Lo: &v, LoIncl: true, HiIncl: true, Anti: true, NilMatches: true}, true, nil
	case "=", "==", "!=", "<>", "<", "<=", ">", ">=":
	default:
		return q, false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
	}
	if scalar.IsNil(v) {
		return q, false, nil
	}
	switch op {
	case "=", "==":
		q = Query[T]{Lo: &v, LoIncl: true, HiIncl: true}
	case "!=", "<>":
		q = Query[T]{Lo: &v, LoIncl: true, HiIncl: true, Anti: true}
	case "<":
		q = Query[T]{Lo: &nilv, Hi: &v}
	case "<=":
		q = Query[T]{Lo: &nilv, Hi: &v, HiIncl: true}
	case ">":
		q = Query[T]{Lo: &v, Hi: &nilv}
	case ">=":
		q = Query[T]{Lo: &v, Hi: &nilv, LoIncl: true}
	}
	return q, true, nil
}
