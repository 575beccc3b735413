package matcher

import (
	"fmt"
	"sort"

	"github.com/contactkeval/optstrat/internal/position"
)

// CollectionEnumerator decides the order in which candidate positions are
// considered inside a leg filter. The recursive search tries candidates
// in the order Order returns them, so the policy shapes which match a
// depth-first search finds first without changing which matches exist.
type CollectionEnumerator interface {
	Order(positions []position.OptionPosition) []position.OptionPosition
}

// Default leaves the collection's natural order (ascending symbol key)
// untouched.
type Default struct{}

// Order implements CollectionEnumerator.
func (Default) Order(positions []position.OptionPosition) []position.OptionPosition {
	return positions
}

// AbsoluteRisk orders candidates the underlying first, then long
// positions, then short puts in ascending strike, then short calls in
// ascending strike — the order a trader reviewing absolute risk would
// scan a book in.
type AbsoluteRisk struct{}

// Order implements CollectionEnumerator.
func (AbsoluteRisk) Order(positions []position.OptionPosition) []position.OptionPosition {
	out := append([]position.OptionPosition(nil), positions...)
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := riskBucket(out[i]), riskBucket(out[j])
		if bi != bj {
			return bi < bj
		}
		if bi != shortPutBucket && bi != shortCallBucket {
			return false
		}
		return out[i].Symbol.Strike.Compare(out[j].Symbol.Strike) < 0
	})
	return out
}

const (
	underlyingBucket = iota
	longBucket
	shortPutBucket
	shortCallBucket
)

func riskBucket(p position.OptionPosition) int {
	if !p.Symbol.HasUnderlying() {
		return underlyingBucket
	}
	if p.Quantity > 0 {
		return longBucket
	}
	switch p.Symbol.Right {
	case position.Put:
		return shortPutBucket
	case position.Call:
		return shortCallBucket
	default:
		panic(fmt.Sprintf("matcher: unhandled option right %v", p.Symbol.Right))
	}
}
