package holdings

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/contactkeval/optstrat/internal/position"
)

const feed = `[
  {"security_type":"equity","symbol":"AAPL","quantity":1000},
  {"security_type":"option","underlying":"AAPL","right":"call","strike":"100","expiration":"2020-10-16","quantity":5},
  {"security_type":"option","underlying":"AAPL","right":"put","strike":"95.50","expiration":"2020-10-16","quantity":-3},
  {"security_type":"equity","symbol":"MSFT","quantity":200}
]`

func TestToHoldingOption(t *testing.T) {
	h, err := ToHolding(Record{
		SecurityType: "option",
		Underlying:   "AAPL",
		Right:        "call",
		Strike:       "102.50",
		Expiration:   "2020-10-16",
		Quantity:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Symbol.HasUnderlying() || h.Symbol.Right != position.Call {
		t.Fatalf("expected a call contract symbol, got %v", h.Symbol)
	}
	if h.Symbol.Strike.Compare(position.NewStrike(102.5)) != 0 {
		t.Fatalf("strike = %v, want 102.5", h.Symbol.Strike)
	}
	if h.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", h.Quantity)
	}
}

func TestToHoldingRejectsUnknownRight(t *testing.T) {
	_, err := ToHolding(Record{
		SecurityType: "option",
		Underlying:   "AAPL",
		Right:        "straddle",
		Strike:       "100",
		Expiration:   "2020-10-16",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown right")
	}
}

func TestFileSourceKeepsOnlyRequestedUnderlying(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	if err := os.WriteFile(path, []byte(feed), 0644); err != nil {
		t.Fatal(err)
	}
	hs, err := NewFileSource(path, nil).Load("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("got %d holdings, want 3 (MSFT equity filtered out)", len(hs))
	}
}

func TestHTTPSourceFetchesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("underlying"); got != "AAPL" {
			t.Errorf("underlying query param = %q, want AAPL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	hs, err := NewHTTPSource(srv.URL, nil).Load("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("got %d holdings, want 3", len(hs))
	}
}

func TestLoadFallsThroughToSecondary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), NewHTTPSource(srv.URL, nil))
	hs, err := Load(src, "AAPL")
	if err != nil {
		t.Fatalf("expected the secondary source to serve, got %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("got %d holdings, want 3", len(hs))
	}
}

func TestLoadReturnsLastErrorWhenAllFail(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), nil)
	if _, err := Load(src, "AAPL"); err == nil {
		t.Fatal("expected an error when every source fails")
	}
}
