package collection

import (
	"testing"
	"time"

	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
)

var underlying = position.NewEquitySymbol("AAPL")

func week(n int) position.Expiration {
	return position.NewExpiration(time.Date(2020, 10, 16, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n))
}

func call(strike float64, w int) position.Symbol {
	return position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(strike), week(w))
}

func put(strike float64, w int) position.Symbol {
	return position.NewOptionSymbol("AAPL", position.American, position.Put, position.NewStrike(strike), week(w))
}

func strikeLadder(t *testing.T) OptionPositionCollection {
	t.Helper()
	c := New(underlying, []Holding{
		{Symbol: underlying, Quantity: 1000},
		{Symbol: call(90, 0), Quantity: 1},
		{Symbol: call(95, 0), Quantity: 1},
		{Symbol: call(100, 0), Quantity: 1},
		{Symbol: call(105, 0), Quantity: 1},
	})
	return c
}

func TestNewSkipsUnrelatedUnderlyings(t *testing.T) {
	other := position.NewOptionSymbol("MSFT", position.American, position.Call, position.NewStrike(100), week(0))
	c := New(underlying, []Holding{
		{Symbol: call(100, 0), Quantity: 2},
		{Symbol: other, Quantity: 9},
	})
	if c.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (unrelated underlying must be skipped)", c.Count())
	}
}

func TestAddThenRemoveIsIdentity(t *testing.T) {
	c := empty(underlying)
	p := position.New(call(100, 0), 5)
	got := c.Add(p).Remove(p)
	if !got.IsEmpty() {
		t.Fatalf("Add(p).Remove(p) left %d positions, want empty", got.Count())
	}
}

func TestAddIsOrderIndependent(t *testing.T) {
	p := position.New(call(100, 0), 3)
	q := position.New(put(90, 0), -2)
	a := empty(underlying).Add(p).Add(q)
	b := empty(underlying).Add(q).Add(p)
	if a.Count() != b.Count() {
		t.Fatalf("Add order produced different counts: %d vs %d", a.Count(), b.Count())
	}
	pa, _ := a.TryGet(p.Symbol)
	pb, _ := b.TryGet(p.Symbol)
	if !pa.Equal(pb) {
		t.Fatalf("Add order produced different merged positions: %+v vs %+v", pa, pb)
	}
}

func TestAddMergesAndZeroRemoves(t *testing.T) {
	sym := call(100, 0)
	c := empty(underlying).Add(position.New(sym, 5)).Add(position.New(sym, -5))
	if c.HasPosition(sym) {
		t.Fatal("merged-to-zero position is still tracked")
	}
	if c.UniqueCalls() != 0 {
		t.Fatalf("UniqueCalls() = %d, want 0 after zero-merge removal", c.UniqueCalls())
	}
}

func TestSlicePutCallPartition(t *testing.T) {
	c := empty(underlying).
		Add(position.New(call(100, 0), 1)).
		Add(position.New(call(105, 0), 1)).
		Add(position.New(put(95, 0), -1))
	puts := c.SliceByRight(position.Put, false)
	calls := c.SliceByRight(position.Call, false)
	if puts.Count()+calls.Count() != c.Count() {
		t.Fatalf("puts(%d) + calls(%d) != total(%d)", puts.Count(), calls.Count(), c.Count())
	}
}

func TestSliceByStrikeMatchesScenarioS4(t *testing.T) {
	c := strikeLadder(t)

	lt100WithUnderlying := c.SliceByStrike(comparison.LessThan, position.NewStrike(100), true)
	if lt100WithUnderlying.Count() != 3 {
		t.Fatalf("slice(<,100,true).Count() = %d, want 3", lt100WithUnderlying.Count())
	}
	if lt100WithUnderlying.UnderlyingQuantity() != 1000 {
		t.Fatalf("slice(<,100,true).UnderlyingQuantity() = %d, want 1000", lt100WithUnderlying.UnderlyingQuantity())
	}

	lt100NoUnderlying := c.SliceByStrike(comparison.LessThan, position.NewStrike(100), false)
	if lt100NoUnderlying.Count() != 2 {
		t.Fatalf("slice(<,100,false).Count() = %d, want 2", lt100NoUnderlying.Count())
	}
	if lt100NoUnderlying.UnderlyingQuantity() != 0 {
		t.Fatalf("slice(<,100,false).UnderlyingQuantity() = %d, want 0", lt100NoUnderlying.UnderlyingQuantity())
	}
}

func TestSliceByStrikeComplementsOptionOnlyCount(t *testing.T) {
	c := strikeLadder(t)
	lt := c.SliceByStrike(comparison.LessThan, position.NewStrike(100), false)
	ge := c.SliceByStrike(comparison.GreaterOrEqual, position.NewStrike(100), false)
	if lt.Count()+ge.Count() != c.OptionOnlyCount() {
		t.Fatalf("lt(%d) + ge(%d) != optionOnlyCount(%d)", lt.Count(), ge.Count(), c.OptionOnlyCount())
	}
}

func TestSliceByStrikeEqualAndNotEqual(t *testing.T) {
	c := strikeLadder(t)
	eq := c.SliceByStrike(comparison.Equal, position.NewStrike(100), false)
	if eq.Count() != 1 {
		t.Fatalf("slice(=,100).Count() = %d, want 1", eq.Count())
	}
	neq := c.SliceByStrike(comparison.NotEqual, position.NewStrike(100), false)
	if neq.Count() != 3 {
		t.Fatalf("slice(!=,100).Count() = %d, want 3", neq.Count())
	}
}

func TestSliceByExpiration(t *testing.T) {
	c := empty(underlying).
		Add(position.New(call(100, 0), 1)).
		Add(position.New(call(100, 1), 1)).
		Add(position.New(call(100, 2), 1))
	before := c.SliceByExpiration(comparison.LessThan, week(2), false)
	if before.Count() != 2 {
		t.Fatalf("slice(<,week2).Count() = %d, want 2", before.Count())
	}
	if before.UniqueExpirations() != 2 {
		t.Fatalf("slice(<,week2).UniqueExpirations() = %d, want 2", before.UniqueExpirations())
	}
}

func TestAcceptSubtractsScaledLegPositions(t *testing.T) {
	c := empty(underlying).Add(position.New(call(100, 0), 5))
	matched := position.New(call(100, 0), 3)
	after := c.Accept([]position.OptionPosition{matched})
	remaining, ok := after.TryGet(call(100, 0))
	if !ok || remaining.Quantity != 2 {
		t.Fatalf("after Accept, remaining = %+v (ok=%v), want quantity 2", remaining, ok)
	}
}

func TestMatchOnceIsMonotoneUnderAccept(t *testing.T) {
	c := empty(underlying).Add(position.New(call(100, 0), 5))
	after := c.Accept([]position.OptionPosition{position.New(call(100, 0), 2)})
	if after.Count() != c.Count() {
		t.Fatalf("Accept changed symbol count from %d to %d, want same symbol still present", c.Count(), after.Count())
	}
	before, _ := c.TryGet(call(100, 0))
	got, _ := after.TryGet(call(100, 0))
	if got.Quantity >= before.Quantity {
		t.Fatalf("remaining quantity %d is not strictly less than prior %d", got.Quantity, before.Quantity)
	}
}

func TestCloneIsolatesPriorSnapshot(t *testing.T) {
	base := empty(underlying).Add(position.New(call(100, 0), 1))
	next := base.Add(position.New(call(105, 0), 1))
	if base.Count() != 1 {
		t.Fatalf("mutating a derived collection changed the base snapshot's count to %d, want 1", base.Count())
	}
	if next.Count() != 2 {
		t.Fatalf("next.Count() = %d, want 2", next.Count())
	}
}
