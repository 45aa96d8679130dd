package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultPriceURL quotes SOL in USD.
const DefaultPriceURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"

// DefaultPriceInterval is how often the quote is re-fetched.
const DefaultPriceInterval = time.Minute

// PriceFeed periodically fetches an external SOL/USD quote for display
// purposes. Price returns 0 until the first successful fetch.
type PriceFeed struct {
	url    string
	client *http.Client
	bits   atomic.Uint64
}

// NewPriceFeed creates a feed against the given quote URL; an empty URL
// selects the default source.
func NewPriceFeed(url string) *PriceFeed {
	if url == "" {
		url = DefaultPriceURL
	}
	return &PriceFeed{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Price returns the last fetched SOL/USD quote.
func (p *PriceFeed) Price() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Refresh fetches the quote once. A fetch error leaves the previous value
// in place.
func (p *PriceFeed) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch price: status %d", resp.StatusCode)
	}

	var payload struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	if payload.Solana.USD > 0 {
		p.bits.Store(math.Float64bits(payload.Solana.USD))
	}
	return nil
}

// Run refreshes the quote immediately and then on the given interval until
// the context is cancelled.
func (p *PriceFeed) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPriceInterval
	}
	if err := p.Refresh(ctx); err != nil {
		log.Printf("[price] refresh failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				log.Printf("[price] refresh failed: %v", err)
			}
		}
	}
}
