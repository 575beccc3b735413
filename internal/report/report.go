// Package report materializes matcher output — spec §7's StrategyMatch =
// list<Strategy> shape — and writes it to disk as JSON or CSV. This
// package consolidates what the teacher carried as two near-duplicate
// packages (internal/report and internal/reports, reflecting an
// in-progress rename the teacher never finished); here there is one.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/strategydef"
)

// OrderType names how an OptionLeg would be executed if the match were
// acted on; the matcher itself never routes an order, so Market/0 is the
// only value produced today.
type OrderType string

// Market is the default, and currently only, OrderType the matcher emits.
const Market OrderType = "Market"

// OptionLeg is one option contract in a materialized Strategy.
type OptionLeg struct {
	Symbol     string         `json:"symbol"`
	Right      position.Right `json:"right"`
	Strike     string         `json:"strike"`
	Expiration string         `json:"expiration"`
	Quantity   int64          `json:"quantity"`
	OrderType  OrderType      `json:"orderType"`
	OrderPrice float64        `json:"orderPrice"`
}

// UnderlyingLeg is the underlying share quantity a Strategy carries, if
// any.
type UnderlyingLeg struct {
	Quantity int64 `json:"quantity"`
}

// Strategy is one accepted strategy instance, materialized for output.
type Strategy struct {
	Name           string          `json:"name"`
	Underlying     string          `json:"underlying"`
	OptionLegs     []OptionLeg     `json:"optionLegs"`
	UnderlyingLegs []UnderlyingLeg `json:"underlyingLegs"`
}

// StrategyMatch is the matcher's full output: every accepted strategy
// instance, in acceptance order.
type StrategyMatch []Strategy

// FromDefinitionMatch materializes one strategydef.StrategyDefinitionMatch
// into a Strategy. underlyingQty is the signed share count to attach as
// the strategy's UnderlyingLeg, if the definition calls for one (zero
// UnderlyingLots means no underlying leg is emitted, even if the caller
// passes a nonzero quantity).
func FromDefinitionMatch(m strategydef.StrategyDefinitionMatch, underlyingQty int64) Strategy {
	s := Strategy{
		Name:       m.Definition.Name,
		OptionLegs: make([]OptionLeg, 0, len(m.Legs)),
	}
	// Legs are materialized at the quantities the match consumes: each
	// scaled to the strategy's overall multiplier, not the per-leg one.
	for _, p := range m.ScaledLegPositions() {
		sym := p.Symbol
		if sym.HasUnderlying() && s.Underlying == "" {
			s.Underlying = sym.Underlying
		}
		s.OptionLegs = append(s.OptionLegs, OptionLeg{
			Symbol:     sym.String(),
			Right:      sym.Right,
			Strike:     sym.Strike.Decimal.String(),
			Expiration: sym.Expiration.Time.Format("2006-01-02"),
			Quantity:   p.Quantity,
			OrderType:  Market,
			OrderPrice: 0,
		})
	}
	if m.Definition.UnderlyingLots != 0 {
		s.UnderlyingLegs = append(s.UnderlyingLegs, UnderlyingLeg{Quantity: underlyingQty})
	}
	return s
}

// FromMatches materializes a full matcher run into a StrategyMatch, each
// with an underlying quantity of zero; callers that track a signed
// underlying position per match should build Strategy values directly
// with FromDefinitionMatch instead.
func FromMatches(matches []strategydef.StrategyDefinitionMatch) StrategyMatch {
	out := make(StrategyMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, FromDefinitionMatch(m, 0))
	}
	return out
}

// WriteJSON writes the match as indented JSON to <outdir>/strategies.json.
func WriteJSON(match StrategyMatch, outdir string) error {
	b, err := json.MarshalIndent(match, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "strategies.json"), b, 0644)
}

// WriteCSV writes one row per option leg to <outdir>/strategies.csv, with
// the strategy name repeated on every row belonging to it.
func WriteCSV(match StrategyMatch, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "strategies.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	headers := []string{"strategy", "underlying", "right", "strike", "expiration", "quantity", "order_type", "order_price"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, s := range match {
		for _, leg := range s.OptionLegs {
			row := []string{
				s.Name,
				s.Underlying,
				leg.Right.String(),
				leg.Strike,
				leg.Expiration,
				fmt.Sprintf("%d", leg.Quantity),
				string(leg.OrderType),
				fmt.Sprintf("%.2f", leg.OrderPrice),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
