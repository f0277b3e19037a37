package aggregate

import (
	"context"
	"reflect"
	"testing"
	"time"

	"assetfeed/internal/provider"
)

type call struct {
	kind   string
	symbol string
	id     string
	days   int
}

type recorder struct {
	calls []call
}

type fakeCrypto struct{ r *recorder }

func (f fakeCrypto) Fetch(_ context.Context, symbol, id string, days int) provider.Result {
	f.r.calls = append(f.r.calls, call{kind: "crypto", symbol: symbol, id: id, days: days})
	return provider.Fresh(provider.Asset{Symbol: symbol, Kind: provider.KindCrypto, History: []float64{1}})
}

type fakeEquity struct {
	r    *recorder
	fail map[string]bool
}

func (f fakeEquity) Fetch(_ context.Context, symbol string, days int) provider.Result {
	f.r.calls = append(f.r.calls, call{kind: "equity", symbol: symbol, days: days})
	if f.fail[symbol] {
		return provider.Failed(provider.Placeholder(symbol, provider.KindStock, testNow), context.DeadlineExceeded)
	}
	return provider.Fresh(provider.Asset{Symbol: symbol, Kind: provider.KindStock, History: []float64{1}})
}

func TestFetchAll_RoutesAndPreservesOrder(t *testing.T) {
	r := &recorder{}
	agg := New(fakeCrypto{r}, fakeEquity{r: r}, nil)

	tickers := []string{"AAPL", "BTC", "SPY", "ETH"}
	ids := map[string]string{"BTC": "bitcoin", "ETH": "ethereum"}

	out := agg.FetchAll(context.Background(), tickers, ids, 7)

	if len(out) != len(tickers) {
		t.Fatalf("want %d assets, got %d", len(tickers), len(out))
	}
	for i, a := range out {
		if a.Symbol != tickers[i] {
			t.Fatalf("position %d: want %s, got %s", i, tickers[i], a.Symbol)
		}
	}
	want := []call{
		{kind: "equity", symbol: "AAPL", days: 7},
		{kind: "crypto", symbol: "BTC", id: "bitcoin", days: 7},
		{kind: "equity", symbol: "SPY", days: 7},
		{kind: "crypto", symbol: "ETH", id: "ethereum", days: 7},
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("unexpected call sequence: %+v", r.calls)
	}
}

func TestFetchResults_FailureKeepsSlot(t *testing.T) {
	r := &recorder{}
	agg := New(fakeCrypto{r}, fakeEquity{r: r, fail: map[string]bool{"BAD": true}}, nil)

	res := agg.FetchResults(context.Background(), []string{"GOOD", "BAD", "BTC"}, map[string]string{"BTC": "bitcoin"}, 1)

	if len(res) != 3 {
		t.Fatalf("want 3 results, got %d", len(res))
	}
	if res[1].Status != provider.StatusFailed || !res[1].Asset.Error || res[1].Asset.Symbol != "BAD" {
		t.Fatalf("unexpected failed slot: %+v", res[1])
	}
	c := Counts(res)
	if c[provider.StatusFresh] != 2 || c[provider.StatusFailed] != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestFetchAll_Empty(t *testing.T) {
	agg := New(fakeCrypto{&recorder{}}, fakeEquity{r: &recorder{}}, nil)
	out := agg.FetchAll(context.Background(), nil, nil, 7)
	if len(out) != 0 {
		t.Fatalf("want empty, got %+v", out)
	}
}

func TestNormalizeTickers_TrimsUppercasesAndDedupes(t *testing.T) {
	got := NormalizeTickers([]string{" aapl", "BTC", "", "btc ", "Spy"})
	want := []string{"AAPL", "BTC", "SPY"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestNormalizeIDMap(t *testing.T) {
	got := NormalizeIDMap(map[string]string{"btc": " bitcoin ", "eth": "", "": "x"})
	want := map[string]string{"BTC": "bitcoin"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBySymbol_LaterWins(t *testing.T) {
	in := []provider.Asset{
		{Symbol: "AAPL", Price: 1},
		{Symbol: "btc", Price: 2},
		{Symbol: "AAPL", Price: 3},
	}
	m := BySymbol(in)
	if len(m) != 2 {
		t.Fatalf("want 2 rows, got %d", len(m))
	}
	if m["AAPL"].Price != 3 || m["BTC"].Price != 2 {
		t.Fatalf("unexpected index: %+v", m)
	}
	if got := Symbols(in); !reflect.DeepEqual(got, []string{"AAPL", "AAPL", "btc"}) {
		t.Fatalf("unexpected symbols: %v", got)
	}
}

var testNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
