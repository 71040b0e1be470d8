package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Quote is a point-in-time market snapshot for one token.
type Quote struct {
	Symbol    string
	PriceUSD  float64
	Change24h float64
	Volume24h float64
}

// Client fetches pair data from DexScreener.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		baseURL:    "https://api.dexscreener.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
	}
}

// TokenQuote returns the best-liquidity pair quote for a token address.
func (c *Client) TokenQuote(ctx context.Context, symbol, address string) (Quote, error) {
	u := c.baseURL + "/latest/dex/tokens/" + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil { return Quote{}, err }
	if err := c.limiter.Wait(ctx); err != nil { return Quote{}, err }
	resp, err := c.httpClient.Do(req)
	if err != nil { return Quote{}, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Quote{}, fmt.Errorf("dexscreener status %d", resp.StatusCode)
	}
	var raw struct {
		Pairs []struct {
			PriceUSD    string `json:"priceUsd"`
			PriceChange struct {
				H24 float64 `json:"h24"`
			} `json:"priceChange"`
			Volume struct {
				H24 float64 `json:"h24"`
			} `json:"volume"`
		} `json:"pairs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil { return Quote{}, err }
	if len(raw.Pairs) == 0 {
		return Quote{}, fmt.Errorf("no pairs for %s", symbol)
	}
	p := raw.Pairs[0]
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)
	return Quote{
		Symbol:    symbol,
		PriceUSD:  price,
		Change24h: p.PriceChange.H24,
		Volume24h: p.Volume.H24,
	}, nil
}

// Snapshot fetches quotes for every configured token. Fail-soft: tokens that
// error are simply absent from the result.
func (c *Client) Snapshot(ctx context.Context, tokens map[string]string) map[string]Quote {
	out := make(map[string]Quote, len(tokens))
	for sym, addr := range tokens {
		q, err := c.TokenQuote(ctx, sym, addr)
		if err != nil {
			continue
		}
		out[sym] = q
	}
	return out
}
