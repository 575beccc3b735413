// Package pricing values option legs with the Black-Scholes model. The
// matcher itself never prices anything; the CLI uses this package to
// annotate each identified strategy with its net theoretical premium.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/strategydef"
)

const sqrt2Pi = 2.5066282746310002

// yearsBetween converts a calendar interval to year-fraction time to
// expiry, clamped at zero for already-expired contracts.
func yearsBetween(from time.Time, to time.Time) float64 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return d.Hours() / (24.0 * 365.0)
}

// BlackScholesPrice calculates the price of a European option.
//
// Parameters:
//   - right: Put or Call
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// If time to expiry or volatility is zero or negative, returns the
// intrinsic value of the option.
func BlackScholesPrice(
	right position.Right,
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		if right == position.Call {
			return math.Max(0, S-K)
		}
		return math.Max(0, K-S)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if right == position.Call {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
}

// BlackScholesVega calculates the vega of a European option: the
// sensitivity of the option price to changes in volatility. Returns 0 if
// T or sigma is non-positive.
func BlackScholesVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		return 0
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * normPDF(d1) * math.Sqrt(T)
}

// ImpliedVolATM solves for the at-the-money implied volatility via
// Newton-Raphson, given observed call and put prices at the strike. The
// market price it fits is the call/put average. Returns an error if the
// inputs are invalid or the iteration does not converge.
func ImpliedVolATM(
	S, K, T, r float64,
	callPrice, putPrice float64,
) (float64, error) {

	if T <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}

	marketPrice := (callPrice + putPrice) / 2

	// Initial guess: 20%
	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		price := BlackScholesPrice(position.Call, S, K, T, r, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := BlackScholesVega(S, K, T, r, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}

// Market carries the inputs a theoretical valuation needs: where the
// underlying trades, the rate and volatility to price at, and the as-of
// date time to expiry is measured from.
type Market struct {
	Spot  float64
	Rate  float64
	Sigma float64
	AsOf  time.Time
}

// NetPremium values an identified strategy instance: the signed sum over
// its legs of Black-Scholes price times contract quantity times the
// 100-share contract multiplier, with each leg's quantity scaled to the
// match's overall multiplier. Positive means the strategy as held is a
// net debit.
func NetPremium(m strategydef.StrategyDefinitionMatch, mkt Market) float64 {
	total := 0.0
	mult := m.Multiplier()
	for _, leg := range m.Legs {
		sym := leg.Position.Symbol
		if !sym.HasUnderlying() {
			continue
		}
		qty := leg.Position.Quantity
		if leg.Multiplier > 0 {
			qty = qty / leg.Multiplier * mult
		}
		T := yearsBetween(mkt.AsOf, sym.Expiration.Time)
		p := BlackScholesPrice(sym.Right, mkt.Spot, sym.Strike.InexactFloat64(), T, mkt.Rate, mkt.Sigma)
		total += p * float64(qty) * 100.0
	}
	return total
}

// normPDF is the standard normal probability density at x.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF is the standard normal cumulative distribution at x, via the
// error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
