// Package holdings loads (symbol, quantity) holding records from outside
// the core: a JSON file on disk or a brokerage-shaped HTTP positions feed.
// Symbol construction happens here, at the boundary; the matcher core only
// ever sees fully-built collection.Holding values.
package holdings

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/position"
)

// Record is one holding as serialized by a positions feed. Equity records
// carry only symbol and quantity; option records carry the contract
// identity fields.
type Record struct {
	SecurityType string `json:"security_type"`          // "equity" or "option"
	Symbol       string `json:"symbol,omitempty"`       // equity ticker
	Underlying   string `json:"underlying,omitempty"`   // option underlying ticker
	Style        string `json:"style,omitempty"`        // "american" (default) or "european"
	Right        string `json:"right,omitempty"`        // "put" or "call"
	Strike       string `json:"strike,omitempty"`       // decimal string, e.g. "102.50"
	Expiration   string `json:"expiration,omitempty"`   // YYYY-MM-DD
	Quantity     int64  `json:"quantity"`
}

// Source supplies holding records for one underlying. Secondary returns
// an optional fallback source consulted when this one fails.
type Source interface {
	Secondary() Source
	Load(underlying string) ([]collection.Holding, error)
}

// Load drives src, falling through to each secondary in turn until one
// succeeds; the last error is returned when every source fails.
func Load(src Source, underlying string) ([]collection.Holding, error) {
	var err error
	for s := src; s != nil; s = s.Secondary() {
		var hs []collection.Holding
		hs, err = s.Load(underlying)
		if err == nil {
			return hs, nil
		}
	}
	return nil, err
}

// ToHolding builds a collection.Holding from a serialized record.
func ToHolding(r Record) (collection.Holding, error) {
	switch strings.ToLower(r.SecurityType) {
	case "equity":
		if r.Symbol == "" {
			return collection.Holding{}, fmt.Errorf("holdings: equity record missing symbol")
		}
		return collection.Holding{
			Symbol:   position.NewEquitySymbol(r.Symbol),
			Quantity: r.Quantity,
		}, nil
	case "option":
		if r.Underlying == "" {
			return collection.Holding{}, fmt.Errorf("holdings: option record missing underlying")
		}
		right, err := parseRight(r.Right)
		if err != nil {
			return collection.Holding{}, err
		}
		style, err := parseStyle(r.Style)
		if err != nil {
			return collection.Holding{}, err
		}
		strike, err := decimal.NewFromString(r.Strike)
		if err != nil {
			return collection.Holding{}, fmt.Errorf("holdings: bad strike %q: %w", r.Strike, err)
		}
		exp, err := time.Parse("2006-01-02", r.Expiration)
		if err != nil {
			return collection.Holding{}, fmt.Errorf("holdings: bad expiration %q: %w", r.Expiration, err)
		}
		return collection.Holding{
			Symbol: position.NewOptionSymbol(r.Underlying, style, right,
				position.Strike{Decimal: strike}, position.NewExpiration(exp)),
			Quantity: r.Quantity,
		}, nil
	default:
		return collection.Holding{}, fmt.Errorf("holdings: unknown security type %q", r.SecurityType)
	}
}

// ToHoldings maps every record, failing on the first bad one.
func ToHoldings(records []Record) ([]collection.Holding, error) {
	out := make([]collection.Holding, 0, len(records))
	for i, r := range records {
		h, err := ToHolding(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func parseRight(s string) (position.Right, error) {
	switch strings.ToLower(s) {
	case "put":
		return position.Put, nil
	case "call":
		return position.Call, nil
	default:
		return 0, fmt.Errorf("holdings: unknown right %q", s)
	}
}

func parseStyle(s string) (position.OptionStyle, error) {
	switch strings.ToLower(s) {
	case "", "american":
		return position.American, nil
	case "european":
		return position.European, nil
	default:
		return 0, fmt.Errorf("holdings: unknown option style %q", s)
	}
}
