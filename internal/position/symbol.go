// Package position defines the contract identity and signed-quantity value
// types the matcher operates on: Symbol (what is held) and OptionPosition
// (how much of it, signed).
package position

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Right is the contract side: Put or Call. The zero value is Put, so an
// equity Symbol (which carries no meaningful Right) holds Put in this
// field; equity symbols are distinguished by SecurityType, not by Right.
type Right int

const (
	// Put identifies a put contract.
	Put Right = iota
	// Call identifies a call contract.
	Call
)

// Compare implements comparison.Comparable[Right]; Put sorts before Call.
func (r Right) Compare(other Right) int {
	return int(r) - int(other)
}

// String renders the right for logs and error messages.
func (r Right) String() string {
	switch r {
	case Put:
		return "Put"
	case Call:
		return "Call"
	default:
		return fmt.Sprintf("Right(%d)", int(r))
	}
}

// MarshalText renders the right as "Put" or "Call" in serialized output.
func (r Right) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses "Put" or "Call".
func (r *Right) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Put":
		*r = Put
	case "Call":
		*r = Call
	default:
		return fmt.Errorf("position: unknown right %q", string(b))
	}
	return nil
}

// SecurityType distinguishes the underlying equity from its option chain.
type SecurityType int

const (
	// Equity is the underlying share symbol.
	Equity SecurityType = iota
	// Option is a put or call contract on an underlying.
	Option
)

// OptionStyle is carried for completeness (symbol construction is the
// caller's responsibility per the external-interfaces boundary); the
// matcher itself never branches on it.
type OptionStyle int

const (
	// American exercise style.
	American OptionStyle = iota
	// European exercise style.
	European
)

// Strike wraps decimal.Decimal so it satisfies comparison.Comparable.
type Strike struct {
	decimal.Decimal
}

// NewStrike builds a Strike from a float64 convenience value.
func NewStrike(v float64) Strike {
	return Strike{decimal.NewFromFloat(v)}
}

// Compare implements comparison.Comparable[Strike].
func (s Strike) Compare(other Strike) int {
	return s.Decimal.Cmp(other.Decimal)
}

// Expiration wraps time.Time so it satisfies comparison.Comparable, and
// normalizes to a calendar day (option expirations are date-granular).
type Expiration struct {
	time.Time
}

// NewExpiration truncates t to a UTC calendar day.
func NewExpiration(t time.Time) Expiration {
	y, m, d := t.UTC().Date()
	return Expiration{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Compare implements comparison.Comparable[Expiration].
func (e Expiration) Compare(other Expiration) int {
	return e.Time.Compare(other.Time)
}

// Symbol identifies a single tradable instrument: either the underlying
// equity, or one option contract written on it.
type Symbol struct {
	SecurityType SecurityType
	Market       string
	OptionStyle  OptionStyle
	Right        Right
	Strike       Strike
	Expiration   Expiration
	Underlying   string // the equity ticker this symbol trades on or is
	id           string // unique, comparable key; empty for the zero Symbol
}

// NewEquitySymbol builds the Symbol for the underlying share itself.
func NewEquitySymbol(underlying string) Symbol {
	return Symbol{
		SecurityType: Equity,
		Market:       "default",
		Underlying:   underlying,
		id:           "EQ:" + underlying,
	}
}

// NewOptionSymbol builds the Symbol for one option contract.
func NewOptionSymbol(underlying string, style OptionStyle, right Right, strike Strike, expiration Expiration) Symbol {
	s := Symbol{
		SecurityType: Option,
		Market:       "default",
		OptionStyle:  style,
		Right:        right,
		Strike:       strike,
		Expiration:   expiration,
		Underlying:   underlying,
	}
	s.id = fmt.Sprintf("OPT:%s:%s:%s:%s", underlying, right, strike.Decimal.String(), expiration.Time.Format("2006-01-02"))
	return s
}

// HasUnderlying reports whether this symbol is an option contract (true)
// as opposed to the underlying equity itself (false) — matches the
// spec's "hasUnderlying" derived attribute naming.
func (s Symbol) HasUnderlying() bool {
	return s.SecurityType == Option
}

// IsZero reports whether this is the uninitialized "default" symbol used
// as the additive identity for OptionPosition.
func (s Symbol) IsZero() bool {
	return s.id == ""
}

// Key returns a value suitable for use as a map key; equal symbols have
// equal keys and vice versa.
func (s Symbol) Key() string {
	return s.id
}

// Equal reports structural equality between two symbols.
func (s Symbol) Equal(other Symbol) bool {
	return s.id == other.id
}

// String renders the symbol for logs and error messages.
func (s Symbol) String() string {
	if s.IsZero() {
		return "<zero>"
	}
	if s.SecurityType == Equity {
		return s.Underlying
	}
	return fmt.Sprintf("%s %s %s %s", s.Underlying, s.Right, s.Strike.Decimal.String(), s.Expiration.Time.Format("2006-01-02"))
}
