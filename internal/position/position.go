package position

import "errors"

// ErrMismatchedSymbols is returned when combining positions whose symbols
// differ and neither side is the zero/default identity.
var ErrMismatchedSymbols = errors.New("position: mismatched symbols")

// OptionPosition is an immutable value: one contract identity plus a
// signed quantity. The zero value (zero Symbol, zero Quantity) is the
// additive identity referenced throughout the collection's merge rules.
type OptionPosition struct {
	Symbol   Symbol
	Quantity int64
}

// Zero is the additive identity: default symbol, zero quantity.
var Zero = OptionPosition{}

// New constructs a position, rejecting the nonsensical zero-symbol
// nonzero-quantity combination only implicitly — callers are expected to
// always pair a real Symbol with a quantity.
func New(sym Symbol, qty int64) OptionPosition {
	return OptionPosition{Symbol: sym, Quantity: qty}
}

// IsZero reports whether this is the additive identity.
func (p OptionPosition) IsZero() bool {
	return p.Symbol.IsZero() && p.Quantity == 0
}

// Add combines two positions on the same symbol. `a + default = a` and
// `default + a = a`; combining mismatched nonzero symbols is a hard
// error (ErrMismatchedSymbols).
func (p OptionPosition) Add(other OptionPosition) (OptionPosition, error) {
	if other.Symbol.IsZero() {
		return p, nil
	}
	if p.Symbol.IsZero() {
		return other, nil
	}
	if !p.Symbol.Equal(other.Symbol) {
		return OptionPosition{}, errorf(p, other)
	}
	return OptionPosition{Symbol: p.Symbol, Quantity: p.Quantity + other.Quantity}, nil
}

// Subtract returns p - other, following the same symbol-matching rule as
// Add. The result is permitted to flip sign relative to p.
func (p OptionPosition) Subtract(other OptionPosition) (OptionPosition, error) {
	return p.Add(other.Negate())
}

// Negate flips the sign of the quantity.
func (p OptionPosition) Negate() OptionPosition {
	return OptionPosition{Symbol: p.Symbol, Quantity: -p.Quantity}
}

// Scale multiplies the quantity by a scalar.
func (p OptionPosition) Scale(n int64) OptionPosition {
	return OptionPosition{Symbol: p.Symbol, Quantity: p.Quantity * n}
}

// WithQuantity returns a copy of p carrying a different signed quantity.
func (p OptionPosition) WithQuantity(qty int64) OptionPosition {
	return OptionPosition{Symbol: p.Symbol, Quantity: qty}
}

// Equal reports structural equality over (Symbol, Quantity).
func (p OptionPosition) Equal(other OptionPosition) bool {
	return p.Symbol.Equal(other.Symbol) && p.Quantity == other.Quantity
}

func errorf(a, b OptionPosition) error {
	return &mismatchError{a: a.Symbol, b: b.Symbol}
}

type mismatchError struct {
	a, b Symbol
}

func (e *mismatchError) Error() string {
	return "position: cannot combine " + e.a.String() + " with " + e.b.String()
}

func (e *mismatchError) Unwrap() error {
	return ErrMismatchedSymbols
}
