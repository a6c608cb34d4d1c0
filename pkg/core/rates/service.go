package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// fallbackRate is the hardcoded MMK-per-USD rate used when every source
	// and the mirror fail. Stale beats blank on the dashboard.
	fallbackRate = 4010.0

	cacheTTL  = time.Hour
	mirrorTTL = 24 * time.Hour

	// Each upstream gets a short leash so a hung source cannot stall the
	// dashboard render.
	sourceTimeout = 3 * time.Second
)

// Quote is one resolved USD/MMK exchange rate and where it came from.
type Quote struct {
	Rate      float64   `json:"rate"` // MMK per USD
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service resolves the USD/MMK rate through a source chain: Binance spot
// ticker, then exchangerate-api.com (needs a key), then exchangerate.host.
// Results are cached for an hour in memory and mirrored to disk so restarts
// within a day do not need the network.
type Service struct {
	// Endpoint overrides for tests. Empty means production URLs.
	BinanceURL         string
	ExchangeRateAPIURL string
	ExchangeHostURL    string

	// MirrorPath is the durable JSON copy of the last good quote. Empty
	// disables mirroring.
	MirrorPath string

	client *http.Client

	mu     sync.RWMutex
	cached *Quote

	scheduler *cron.Cron
}

func NewService(mirrorPath string) *Service {
	return &Service{
		MirrorPath: mirrorPath,
		client:     &http.Client{Timeout: sourceTimeout},
	}
}

// Get returns the current quote, fetching through the source chain when the
// in-memory cache is older than an hour. It never returns an error: the chain
// bottoms out at the mirror and then the hardcoded fallback.
func (s *Service) Get(ctx context.Context) Quote {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cached.FetchedAt) < cacheTTL {
		q := *s.cached
		s.mu.RUnlock()
		return q
	}
	s.mu.RUnlock()

	return s.Refresh(ctx)
}

// Refresh forces a fetch through the source chain regardless of cache age.
func (s *Service) Refresh(ctx context.Context) Quote {
	type source struct {
		name  string
		fetch func(context.Context) (float64, error)
	}
	chain := []source{
		{"binance", s.fetchBinance},
		{"exchangerate-api", s.fetchExchangeRateAPI},
		{"exchangerate.host", s.fetchExchangeHost},
	}

	for _, src := range chain {
		rate, err := src.fetch(ctx)
		if err != nil {
			fmt.Printf("[RATES] %s failed: %v\n", src.name, err)
			continue
		}
		if rate <= 0 {
			fmt.Printf("[RATES] %s returned non-positive rate %v\n", src.name, rate)
			continue
		}
		q := Quote{Rate: rate, Source: src.name, FetchedAt: time.Now()}
		s.store(q)
		return q
	}

	if q, ok := s.readMirror(); ok {
		fmt.Printf("[RATES] all sources down, serving mirror from %s\n", q.FetchedAt.Format(time.RFC3339))
		s.storeMemoryOnly(q)
		return q
	}

	q := Quote{Rate: fallbackRate, Source: "fallback", FetchedAt: time.Now()}
	s.storeMemoryOnly(q)
	return q
}

// ConvertToUSD converts an MMK amount using the current quote.
func (s *Service) ConvertToUSD(ctx context.Context, amountMMK float64) float64 {
	q := s.Get(ctx)
	if q.Rate == 0 {
		return 0
	}
	return amountMMK / q.Rate
}

// StartAutoRefresh schedules an hourly background refresh so interactive
// requests rarely pay the fetch latency. Call Stop on shutdown.
func (s *Service) StartAutoRefresh() error {
	if s.scheduler != nil {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		q := s.Refresh(ctx)
		fmt.Printf("[RATES] refreshed: %.2f MMK/USD via %s\n", q.Rate, q.Source)
	})
	if err != nil {
		return fmt.Errorf("RATES_CRON_ERROR: %v", err)
	}
	c.Start()
	s.scheduler = c
	return nil
}

func (s *Service) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Service) store(q Quote) {
	s.storeMemoryOnly(q)
	s.writeMirror(q)
}

func (s *Service) storeMemoryOnly(q Quote) {
	s.mu.Lock()
	s.cached = &q
	s.mu.Unlock()
}

// --- sources ---

func (s *Service) fetchBinance(ctx context.Context) (float64, error) {
	base := s.BinanceURL
	if base == "" {
		base = "https://api.binance.com"
	}
	var out struct {
		Price string `json:"price"`
	}
	if err := s.getJSON(ctx, base+"/api/v3/ticker/price?symbol=USDTMMK", &out); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(out.Price, 64)
}

func (s *Service) fetchExchangeRateAPI(ctx context.Context) (float64, error) {
	key := os.Getenv("EXCHANGERATE_API_KEY")
	if key == "" {
		return 0, fmt.Errorf("EXCHANGERATE_API_KEY not set")
	}
	base := s.ExchangeRateAPIURL
	if base == "" {
		base = "https://v6.exchangerate-api.com"
	}
	var out struct {
		Result         string  `json:"result"`
		ConversionRate float64 `json:"conversion_rate"`
	}
	url := fmt.Sprintf("%s/v6/%s/pair/USD/MMK", base, key)
	if err := s.getJSON(ctx, url, &out); err != nil {
		return 0, err
	}
	if out.Result != "success" {
		return 0, fmt.Errorf("result=%s", out.Result)
	}
	return out.ConversionRate, nil
}

func (s *Service) fetchExchangeHost(ctx context.Context) (float64, error) {
	base := s.ExchangeHostURL
	if base == "" {
		base = "https://api.exchangerate.host"
	}
	var out struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := s.getJSON(ctx, base+"/latest?base=USD&symbols=MMK", &out); err != nil {
		return 0, err
	}
	rate, ok := out.Rates["MMK"]
	if !ok {
		return 0, fmt.Errorf("MMK missing from response")
	}
	return rate, nil
}

func (s *Service) getJSON(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// --- mirror ---

func (s *Service) writeMirror(q Quote) {
	if s.MirrorPath == "" {
		return
	}
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := os.WriteFile(s.MirrorPath, data, 0o644); err != nil {
		fmt.Printf("[RATES] mirror write failed: %v\n", err)
	}
}

func (s *Service) readMirror() (Quote, bool) {
	if s.MirrorPath == "" {
		return Quote{}, false
	}
	data, err := os.ReadFile(s.MirrorPath)
	if err != nil {
		return Quote{}, false
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return Quote{}, false
	}
	if time.Since(q.FetchedAt) > mirrorTTL {
		return Quote{}, false
	}
	q.Source = q.Source + " (mirror)"
	return q, true
}
