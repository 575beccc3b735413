package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/config"
	"github.com/contactkeval/optstrat/internal/holdings"
	"github.com/contactkeval/optstrat/internal/library"
	"github.com/contactkeval/optstrat/internal/logger"
	"github.com/contactkeval/optstrat/internal/matcher"
	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/pricing"
	"github.com/contactkeval/optstrat/internal/report"
	"github.com/contactkeval/optstrat/internal/strategydef"
)

func main() {
	configPath := flag.String("config", "matcher.json", "path to JSON config")
	rest := flag.Bool("rest", false, "run as REST server (serve match requests)")
	port := flag.String("port", ":8080", "REST server listen address")
	spot := flag.Float64("spot", 0, "underlying spot price for theoretical valuation (0 = skip)")
	vol := flag.Float64("vol", 0.25, "annualized volatility for theoretical valuation")
	rate := flag.Float64("rate", 0.02, "risk-free rate for theoretical valuation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("loading config: %v", err)
		os.Exit(1)
	}
	logger.SetVerbosity(cfg.Verbosity)

	run := func() (report.StrategyMatch, error) {
		src := buildSource(cfg)
		hs, err := holdings.Load(src, cfg.Underlying)
		if err != nil {
			return nil, err
		}
		c := collection.New(position.NewEquitySymbol(cfg.Underlying), hs)
		logger.Infof("loaded %d positions on %s (%d puts, %d calls)",
			c.Count(), cfg.Underlying, c.UniquePuts(), c.UniqueCalls())

		m := matcher.New(matcher.Options{
			Definitions:      selectDefinitions(cfg.Definitions),
			EnumeratorPolicy: selectPolicy(cfg.EnumeratorPolicy),
			MaxDuration:      cfg.MaxDuration(),
			MaxTotalMatches:  cfg.MaxTotalMatches,
			MaxMatchesPerLeg: cfg.MaxMatchesPerLeg,
		})
		matches := m.MatchOnce(c)
		for _, match := range matches {
			logger.Infof("matched %s x%d", match.Definition.Name, match.Multiplier())
			if *spot > 0 {
				mkt := pricing.Market{Spot: *spot, Rate: *rate, Sigma: *vol, AsOf: time.Now().UTC()}
				logger.Infof("  theoretical net premium: %.2f", pricing.NetPremium(match, mkt))
			}
		}
		return report.FromMatches(matches), nil
	}

	if *rest {
		mux := http.NewServeMux()
		mux.HandleFunc("/match", func(w http.ResponseWriter, r *http.Request) {
			logger.Infof("received /match request")
			res, err := run()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(res)
		})
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		logger.Infof("starting REST server on %s", *port)
		if err := http.ListenAndServe(*port, mux); err != nil {
			logger.Errorf("server: %v", err)
			os.Exit(1)
		}
		return
	}

	start := time.Now()
	res, err := run()
	if err != nil {
		logger.Errorf("match failed: %v", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Errorf("could not create output dir %s: %v", cfg.OutputDir, err)
		os.Exit(1)
	}
	if err := report.WriteJSON(res, cfg.OutputDir); err != nil {
		logger.Errorf("writing JSON report: %v", err)
	}
	if err := report.WriteCSV(res, cfg.OutputDir); err != nil {
		logger.Errorf("writing CSV report: %v", err)
	}
	logger.Infof("finished in %v, wrote %d strategies to %s", time.Since(start), len(res), cfg.OutputDir)
}

// buildSource wires the configured holdings source; when both a file and
// a URL survive validation (they are mutually exclusive today), the file
// wins and the URL becomes the fallback.
func buildSource(cfg *config.Config) holdings.Source {
	var httpSrc holdings.Source
	if cfg.HoldingsURL != "" {
		httpSrc = holdings.NewHTTPSource(cfg.HoldingsURL, nil)
	}
	if cfg.HoldingsFile != "" {
		return holdings.NewFileSource(cfg.HoldingsFile, httpSrc)
	}
	return httpSrc
}

// selectDefinitions filters the default library down to the configured
// names, preserving configured order; an empty list means the whole
// library.
func selectDefinitions(names []string) []strategydef.StrategyDefinition {
	defs := library.Default()
	if len(names) == 0 {
		return defs
	}
	byName := make(map[string]strategydef.StrategyDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	out := make([]strategydef.StrategyDefinition, 0, len(names))
	for _, n := range names {
		if d, ok := byName[n]; ok {
			out = append(out, d)
		} else {
			logger.Errorf("unknown strategy definition %q skipped", n)
		}
	}
	return out
}

func selectPolicy(name string) matcher.CollectionEnumerator {
	if name == "absolute_risk" {
		return matcher.AbsoluteRisk{}
	}
	return matcher.Default{}
}
