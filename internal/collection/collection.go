// Package collection implements OptionPositionCollection, the persistent
// indexed multiset of option positions the matcher slices and subtracts
// from on every leg expansion. Collections are values: every mutating
// operation returns a new collection that shares structural interiors with
// its predecessor rather than copying the whole container.
package collection

import (
	"github.com/google/btree"
	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
)

// btreeDegree is the branching factor passed to btree.New for both sorted
// indexes; 32 matches the degree used elsewhere in the retrieval pack's
// btree-backed order books and keeps node fan-out reasonable for the
// handful-of-strikes-per-collection sizes this matcher sees in practice.
const btreeDegree = 32

// Holding is one (symbol, quantity) record from the external holdings
// source described by the spec's external-interfaces boundary. Symbol
// construction is entirely the caller's responsibility.
type Holding struct {
	Symbol   position.Symbol
	Quantity int64
}

// OptionPositionCollection is a persistent, copy-on-write container of
// positions on a single underlying, indexed by right, strike, and
// expiration. The zero value is not usable; construct with New.
type OptionPositionCollection struct {
	underlying   position.Symbol
	positions    *iradix.Tree      // symbol key -> position.OptionPosition
	byRight      [2]*iradix.Tree   // position.Put/position.Call -> symbol-key set
	byStrike     *btree.BTree      // *strikeBucket, ordered by strike
	byExpiration *btree.BTree      // *expirationBucket, ordered by expiration
}

// empty builds a collection with no positions, scoped to underlying. It is
// not exported: New is the one supported public constructor, per the
// spec's own recommendation that the underlying be required up front
// rather than left unset on an empty collection.
func empty(underlying position.Symbol) OptionPositionCollection {
	return OptionPositionCollection{
		underlying:   underlying,
		positions:    iradix.New(),
		byRight:      [2]*iradix.Tree{iradix.New(), iradix.New()},
		byStrike:     btree.New(btreeDegree),
		byExpiration: btree.New(btreeDegree),
	}
}

// New builds a collection scoped to underlying from a holdings source,
// keeping only holdings whose symbol equals the underlying or whose
// Symbol.Underlying matches it; every other holding is skipped silently.
func New(underlying position.Symbol, holdings []Holding) OptionPositionCollection {
	c := empty(underlying)
	ps := make([]position.OptionPosition, 0, len(holdings))
	for _, h := range holdings {
		if h.Symbol.Equal(underlying) || h.Symbol.Underlying == underlying.Underlying {
			ps = append(ps, position.New(h.Symbol, h.Quantity))
		}
	}
	return c.AddRange(ps)
}

// Underlying returns the equity symbol this collection is scoped to.
func (c OptionPositionCollection) Underlying() position.Symbol {
	return c.underlying
}

// Add merges p into the collection following the zero-identity and
// matching-symbol rules from the position package; a merge that nets to
// zero removes the entry and its index memberships entirely.
func (c OptionPositionCollection) Add(p position.OptionPosition) OptionPositionCollection {
	if p.Symbol.IsZero() {
		return c
	}
	merged := p
	if existing, ok := c.getByKey(p.Symbol.Key()); ok {
		m, err := existing.Add(p)
		if err != nil {
			// existing and p share a key, so their symbols are equal by
			// construction; Add can only fail on mismatched symbols.
			panic(err)
		}
		merged = m
	}
	if merged.Quantity == 0 {
		return c.deleteSymbol(p.Symbol)
	}
	return c.upsert(merged)
}

// AddRange folds Add over ps, producing one resulting collection.
func (c OptionPositionCollection) AddRange(ps []position.OptionPosition) OptionPositionCollection {
	out := c
	for _, p := range ps {
		out = out.Add(p)
	}
	return out
}

// Remove subtracts p.Quantity from the existing position on p.Symbol.
// Sign flips relative to the prior holding are permitted.
func (c OptionPositionCollection) Remove(p position.OptionPosition) OptionPositionCollection {
	return c.Add(p.Negate())
}

// Accept removes every already-scaled leg position of an accepted
// strategy match, each via Remove. Callers (the matcher loop) are
// responsible for scaling each leg's position by the match multiplier
// before calling Accept.
func (c OptionPositionCollection) Accept(legPositions []position.OptionPosition) OptionPositionCollection {
	out := c
	for _, p := range legPositions {
		out = out.Remove(p)
	}
	return out
}

// HasPosition reports whether sym has a tracked (possibly negative)
// position in the collection.
func (c OptionPositionCollection) HasPosition(sym position.Symbol) bool {
	_, ok := c.getByKey(sym.Key())
	return ok
}

// TryGet returns the position on sym, if any.
func (c OptionPositionCollection) TryGet(sym position.Symbol) (position.OptionPosition, bool) {
	return c.getByKey(sym.Key())
}

// IsEmpty reports whether the collection holds no positions at all.
func (c OptionPositionCollection) IsEmpty() bool {
	return c.positions.Len() == 0
}

// ForEach visits every position in key order, stopping early if fn
// returns false.
func (c OptionPositionCollection) ForEach(fn func(position.OptionPosition) bool) {
	c.positions.Root().Walk(func(_ []byte, v interface{}) bool {
		return !fn(v.(position.OptionPosition))
	})
}

// All materializes every position in the collection.
func (c OptionPositionCollection) All() []position.OptionPosition {
	out := make([]position.OptionPosition, 0, c.positions.Len())
	c.ForEach(func(p position.OptionPosition) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Count is the total number of distinct symbols held, including the
// underlying if present.
func (c OptionPositionCollection) Count() int {
	return c.positions.Len()
}

// OptionOnlyCount is Count minus one if the underlying itself is held.
func (c OptionPositionCollection) OptionOnlyCount() int {
	n := c.Count()
	if _, ok := c.getByKey(c.underlying.Key()); ok {
		n--
	}
	return n
}

// UniquePuts is the number of distinct put symbols held.
func (c OptionPositionCollection) UniquePuts() int {
	return c.byRight[position.Put].Len()
}

// UniqueCalls is the number of distinct call symbols held.
func (c OptionPositionCollection) UniqueCalls() int {
	return c.byRight[position.Call].Len()
}

// UniqueExpirations is the number of distinct expiration dates among held
// option contracts.
func (c OptionPositionCollection) UniqueExpirations() int {
	return c.byExpiration.Len()
}

// UnderlyingQuantity is the signed share count on the underlying equity,
// or zero if it is not held.
func (c OptionPositionCollection) UnderlyingQuantity() int64 {
	if p, ok := c.getByKey(c.underlying.Key()); ok {
		return p.Quantity
	}
	return 0
}

// SliceByRight retains only option positions whose right equals right,
// plus the underlying position if includeUnderlying and it is held.
func (c OptionPositionCollection) SliceByRight(right position.Right, includeUnderlying bool) OptionPositionCollection {
	var keys []string
	c.byRight[right].Root().Walk(func(k []byte, _ interface{}) bool {
		keys = append(keys, string(k))
		return false
	})
	return c.rebuildFromKeys(keys, includeUnderlying)
}

// SliceByStrike retains only option positions whose strike satisfies
// `strike <cmp> ref`, plus the underlying if requested.
func (c OptionPositionCollection) SliceByStrike(cmp comparison.Comparison, ref position.Strike, includeUnderlying bool) OptionPositionCollection {
	keys := c.collectStrikeKeys(cmp, ref)
	return c.rebuildFromKeys(keys, includeUnderlying)
}

// SliceByExpiration retains only option positions whose expiration
// satisfies `expiration <cmp> ref`, plus the underlying if requested.
func (c OptionPositionCollection) SliceByExpiration(cmp comparison.Comparison, ref position.Expiration, includeUnderlying bool) OptionPositionCollection {
	keys := c.collectExpirationKeys(cmp, ref)
	return c.rebuildFromKeys(keys, includeUnderlying)
}

// Where rebuilds the collection keeping only positions for which keep
// returns true, plus the underlying if requested; unlike SliceByRight/
// SliceByStrike/SliceByExpiration this always walks every position, so
// callers should prefer the indexed slices whenever the predicate shape
// allows it.
func (c OptionPositionCollection) Where(keep func(position.OptionPosition) bool, includeUnderlying bool) OptionPositionCollection {
	out := empty(c.underlying)
	ps := make([]position.OptionPosition, 0, c.positions.Len())
	c.ForEach(func(p position.OptionPosition) bool {
		if p.Symbol.Equal(c.underlying) {
			return true
		}
		if keep(p) {
			ps = append(ps, p)
		}
		return true
	})
	if includeUnderlying {
		if p, ok := c.getByKey(c.underlying.Key()); ok {
			ps = append(ps, p)
		}
	}
	return out.AddRange(ps)
}

func (c OptionPositionCollection) getByKey(key string) (position.OptionPosition, bool) {
	v, ok := c.positions.Get([]byte(key))
	if !ok {
		return position.OptionPosition{}, false
	}
	return v.(position.OptionPosition), true
}

// rebuildFromKeys constructs a fresh collection from the surviving symbol
// keys, plus the underlying if requested; this is the one place a slice
// recomputes all three indexes from scratch, as the spec requires.
func (c OptionPositionCollection) rebuildFromKeys(keys []string, includeUnderlying bool) OptionPositionCollection {
	out := empty(c.underlying)
	ps := make([]position.OptionPosition, 0, len(keys)+1)
	for _, k := range keys {
		if p, ok := c.getByKey(k); ok {
			ps = append(ps, p)
		}
	}
	if includeUnderlying {
		if p, ok := c.getByKey(c.underlying.Key()); ok {
			ps = append(ps, p)
		}
	}
	return out.AddRange(ps)
}

func (c OptionPositionCollection) upsert(p position.OptionPosition) OptionPositionCollection {
	positions, _, _ := c.positions.Insert([]byte(p.Symbol.Key()), p)
	byRight := c.byRight
	byStrike := c.byStrike
	byExpiration := c.byExpiration
	if p.Symbol.HasUnderlying() {
		byRight[p.Symbol.Right], _, _ = byRight[p.Symbol.Right].Insert([]byte(p.Symbol.Key()), struct{}{})
		byStrike = addToStrikeIndex(byStrike, p.Symbol.Strike, p.Symbol.Key())
		byExpiration = addToExpirationIndex(byExpiration, p.Symbol.Expiration, p.Symbol.Key())
	}
	return OptionPositionCollection{
		underlying:   c.underlying,
		positions:    positions,
		byRight:      byRight,
		byStrike:     byStrike,
		byExpiration: byExpiration,
	}
}

func (c OptionPositionCollection) deleteSymbol(sym position.Symbol) OptionPositionCollection {
	positions, _, _ := c.positions.Delete([]byte(sym.Key()))
	byRight := c.byRight
	byStrike := c.byStrike
	byExpiration := c.byExpiration
	if sym.HasUnderlying() {
		byRight[sym.Right], _, _ = byRight[sym.Right].Delete([]byte(sym.Key()))
		byStrike = removeFromStrikeIndex(byStrike, sym.Strike, sym.Key())
		byExpiration = removeFromExpirationIndex(byExpiration, sym.Expiration, sym.Key())
	}
	return OptionPositionCollection{
		underlying:   c.underlying,
		positions:    positions,
		byRight:      byRight,
		byStrike:     byStrike,
		byExpiration: byExpiration,
	}
}

// strikeBucket is one byStrike node: a strike plus the persistent set of
// symbol keys held at that strike.
type strikeBucket struct {
	strike  position.Strike
	symbols *iradix.Tree
}

func (b *strikeBucket) Less(than btree.Item) bool {
	return b.strike.Compare(than.(*strikeBucket).strike) < 0
}

func addToStrikeIndex(tree *btree.BTree, strike position.Strike, symbolKey string) *btree.BTree {
	next := tree.Clone()
	pivot := &strikeBucket{strike: strike}
	symbols := iradix.New()
	if existing := next.Get(pivot); existing != nil {
		symbols = existing.(*strikeBucket).symbols
	}
	symbols, _, _ = symbols.Insert([]byte(symbolKey), struct{}{})
	next.ReplaceOrInsert(&strikeBucket{strike: strike, symbols: symbols})
	return next
}

func removeFromStrikeIndex(tree *btree.BTree, strike position.Strike, symbolKey string) *btree.BTree {
	next := tree.Clone()
	pivot := &strikeBucket{strike: strike}
	existing := next.Get(pivot)
	if existing == nil {
		return next
	}
	symbols, _, _ := existing.(*strikeBucket).symbols.Delete([]byte(symbolKey))
	if symbols.Len() == 0 {
		next.Delete(pivot)
		return next
	}
	next.ReplaceOrInsert(&strikeBucket{strike: strike, symbols: symbols})
	return next
}

func (c OptionPositionCollection) collectStrikeKeys(cmp comparison.Comparison, ref position.Strike) []string {
	var keys []string
	collect := func(item btree.Item) bool {
		item.(*strikeBucket).symbols.Root().Walk(func(k []byte, _ interface{}) bool {
			keys = append(keys, string(k))
			return false
		})
		return true
	}
	pivot := &strikeBucket{strike: ref}
	switch cmp {
	case comparison.Equal:
		if item := c.byStrike.Get(pivot); item != nil {
			collect(item)
		}
	case comparison.NotEqual:
		c.byStrike.Ascend(func(i btree.Item) bool {
			if i.(*strikeBucket).strike.Compare(ref) != 0 {
				collect(i)
			}
			return true
		})
	case comparison.LessThan:
		c.byStrike.AscendLessThan(pivot, collect)
	case comparison.LessOrEqual:
		c.byStrike.AscendLessThan(pivot, collect)
		if item := c.byStrike.Get(pivot); item != nil {
			collect(item)
		}
	case comparison.GreaterThan:
		c.byStrike.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
			if i.(*strikeBucket).strike.Compare(ref) != 0 {
				collect(i)
			}
			return true
		})
	case comparison.GreaterOrEqual:
		c.byStrike.AscendGreaterOrEqual(pivot, collect)
	}
	return keys
}

// expirationBucket mirrors strikeBucket for the byExpiration index.
type expirationBucket struct {
	expiration position.Expiration
	symbols    *iradix.Tree
}

func (b *expirationBucket) Less(than btree.Item) bool {
	return b.expiration.Compare(than.(*expirationBucket).expiration) < 0
}

func addToExpirationIndex(tree *btree.BTree, expiration position.Expiration, symbolKey string) *btree.BTree {
	next := tree.Clone()
	pivot := &expirationBucket{expiration: expiration}
	symbols := iradix.New()
	if existing := next.Get(pivot); existing != nil {
		symbols = existing.(*expirationBucket).symbols
	}
	symbols, _, _ = symbols.Insert([]byte(symbolKey), struct{}{})
	next.ReplaceOrInsert(&expirationBucket{expiration: expiration, symbols: symbols})
	return next
}

func removeFromExpirationIndex(tree *btree.BTree, expiration position.Expiration, symbolKey string) *btree.BTree {
	next := tree.Clone()
	pivot := &expirationBucket{expiration: expiration}
	existing := next.Get(pivot)
	if existing == nil {
		return next
	}
	symbols, _, _ := existing.(*expirationBucket).symbols.Delete([]byte(symbolKey))
	if symbols.Len() == 0 {
		next.Delete(pivot)
		return next
	}
	next.ReplaceOrInsert(&expirationBucket{expiration: expiration, symbols: symbols})
	return next
}

func (c OptionPositionCollection) collectExpirationKeys(cmp comparison.Comparison, ref position.Expiration) []string {
	var keys []string
	collect := func(item btree.Item) bool {
		item.(*expirationBucket).symbols.Root().Walk(func(k []byte, _ interface{}) bool {
			keys = append(keys, string(k))
			return false
		})
		return true
	}
	pivot := &expirationBucket{expiration: ref}
	switch cmp {
	case comparison.Equal:
		if item := c.byExpiration.Get(pivot); item != nil {
			collect(item)
		}
	case comparison.NotEqual:
		c.byExpiration.Ascend(func(i btree.Item) bool {
			if i.(*expirationBucket).expiration.Compare(ref) != 0 {
				collect(i)
			}
			return true
		})
	case comparison.LessThan:
		c.byExpiration.AscendLessThan(pivot, collect)
	case comparison.LessOrEqual:
		c.byExpiration.AscendLessThan(pivot, collect)
		if item := c.byExpiration.Get(pivot); item != nil {
			collect(item)
		}
	case comparison.GreaterThan:
		c.byExpiration.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
			if i.(*expirationBucket).expiration.Compare(ref) != 0 {
				collect(i)
			}
			return true
		})
	case comparison.GreaterOrEqual:
		c.byExpiration.AscendGreaterOrEqual(pivot, collect)
	}
	return keys
}
