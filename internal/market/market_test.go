package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient()
	c.baseURL = ts.URL
	c.httpClient = ts.Client()
	return c
}

func TestTokenQuoteParsesFirstPair(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/0xabc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pairs":[
			{"priceUsd":"1.25","priceChange":{"h24":-3.4},"volume":{"h24":120000}},
			{"priceUsd":"1.30","priceChange":{"h24":-2.0},"volume":{"h24":50}}
		]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	q, err := c.TokenQuote(context.Background(), "ETH", "0xabc")
	if err != nil {
		t.Fatal(err)
	}
	if q.Symbol != "ETH" || q.PriceUSD != 1.25 || q.Change24h != -3.4 || q.Volume24h != 120000 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestTokenQuoteNoPairs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.TokenQuote(context.Background(), "X", "0x0"); err == nil {
		t.Fatal("expected error with no pairs")
	}
}

func TestSnapshotFailSoft(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/latest/dex/tokens/good" {
			_, _ = w.Write([]byte(`{"pairs":[{"priceUsd":"2","priceChange":{"h24":1},"volume":{"h24":9}}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	quotes := c.Snapshot(context.Background(), map[string]string{
		"OK":  "good",
		"BAD": "broken",
	})
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	if q, ok := quotes["OK"]; !ok || q.PriceUSD != 2 {
		t.Fatalf("missing surviving quote: %+v", quotes)
	}
}
