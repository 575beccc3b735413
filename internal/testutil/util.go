// Package testutil carries the fixture builders and golden-file helpers
// shared by test packages across the repository.
package testutil

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/position"
)

var update = flag.Bool(
	"update",
	false,
	"update golden files",
)

// anchor is the calendar date test scenarios offset their expirations
// from, in whole weeks.
var anchor = time.Date(2020, 10, 16, 0, 0, 0, 0, time.UTC)

// Week returns the expiration n whole weeks after the scenario anchor
// date.
func Week(n int) position.Expiration {
	return position.NewExpiration(anchor.AddDate(0, 0, 7*n))
}

// Call builds a call-contract holding on underlying.
func Call(underlying string, strike float64, week int, qty int64) collection.Holding {
	return collection.Holding{
		Symbol:   position.NewOptionSymbol(underlying, position.American, position.Call, position.NewStrike(strike), Week(week)),
		Quantity: qty,
	}
}

// Put builds a put-contract holding on underlying.
func Put(underlying string, strike float64, week int, qty int64) collection.Holding {
	return collection.Holding{
		Symbol:   position.NewOptionSymbol(underlying, position.American, position.Put, position.NewStrike(strike), Week(week)),
		Quantity: qty,
	}
}

// Equity builds a share holding on underlying.
func Equity(underlying string, qty int64) collection.Holding {
	return collection.Holding{
		Symbol:   position.NewEquitySymbol(underlying),
		Quantity: qty,
	}
}

//
// --- Golden file helpers ---
//

func writeGolden(t *testing.T, name string, v any) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		t.Fatalf("failed to write golden file: %v", err)
	}
}

func loadGolden(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	return b
}

// CompareWithGolden marshals v as indented JSON and compares it with the
// named golden file under the calling package's testdata directory; run
// the tests with -update to rewrite the golden files instead.
func CompareWithGolden(t *testing.T, name string, v any) {
	t.Helper()

	actual, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal actual JSON: %v", err)
	}

	if *update {
		writeGolden(t, name, v)
		return
	}

	expected := loadGolden(t, name)

	if !bytes.Equal(expected, actual) {
		t.Fatalf("golden mismatch for %s\nexpected:\n%s\nactual:\n%s",
			name, string(expected), string(actual))
	}
}
