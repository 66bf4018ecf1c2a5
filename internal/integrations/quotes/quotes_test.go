package quotes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiha11/Fincio/internal/models"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (m *memCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) MultiRemove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type stubSource struct {
	mu    sync.Mutex
	data  map[Feed][]Quote
	err   error
	calls int
}

func (s *stubSource) Fetch(_ context.Context, feed Feed) ([]Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data[feed], nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func liveData() map[Feed][]Quote {
	return map[Feed][]Quote{
		FeedGold:     {{Name: "Gram Altın", Buying: 3100, Selling: 3120}, {Name: "Çeyrek Altın", Buying: 5100}},
		FeedExchange: {{Code: "USD", Name: "Amerikan Doları", Buying: 36.1}, {Code: "EUR", Name: "Euro", Rate: 39.2}},
		FeedCrypto:   {{Code: "BTC", Name: "Bitcoin", Price: 3500000}},
		FeedStocks:   {{Code: "THYAO", Text: "Türk Hava Yolları", LastPrice: 290}},
	}
}

func TestClient_CachesForFiveMinutes(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{data: liveData()}
	clk := &clock{t: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	c := NewClient(src, newMemCache(), quietLogger(), WithClock(clk.now))

	first := c.Quotes(ctx, FeedGold)
	require.True(t, first.OK())
	assert.False(t, first.FromCache)

	clk.t = clk.t.Add(4 * time.Minute)
	second := c.Quotes(ctx, FeedGold)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, src.calls)

	clk.t = clk.t.Add(2 * time.Minute)
	third := c.Quotes(ctx, FeedGold)
	assert.False(t, third.FromCache)
	assert.Equal(t, 2, src.calls)
}

func TestClient_ServesStaleCacheOnFailure(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{data: liveData()}
	clk := &clock{t: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	c := NewClient(src, newMemCache(), quietLogger(), WithClock(clk.now))
	require.True(t, c.Quotes(ctx, FeedCrypto).OK())

	clk.t = clk.t.Add(time.Hour)
	src.err = errors.New("HTTP 503")
	r := c.Quotes(ctx, FeedCrypto)

	assert.True(t, r.Stale)
	assert.Error(t, r.Err)
	assert.Equal(t, liveData()[FeedCrypto], r.Data)
}

func TestBoard_AllLive(t *testing.T) {
	c := NewClient(&stubSource{data: liveData()}, newMemCache(), quietLogger())

	b := c.Board(context.Background())

	assert.False(t, b.HasError)
	assert.Empty(t, b.StatusMessage)
	assert.Len(t, b.Gold, 2)
	assert.Equal(t, "THYAO", b.Stocks[0].Code)
}

func TestBoard_Fallbacks(t *testing.T) {
	t.Run("connection error uses static data", func(t *testing.T) {
		c := NewClient(&stubSource{err: errors.New("HTTP 401")}, newMemCache(), quietLogger())

		b := c.Board(context.Background())

		assert.True(t, b.HasError)
		assert.Equal(t, StatusConnectionError, b.StatusMessage)
		assert.Equal(t, fallbackData[FeedGold], b.Gold)
		assert.Equal(t, fallbackData[FeedExchange], b.Exchange)
		assert.Equal(t, fallbackData[FeedCrypto], b.Crypto)
		assert.Equal(t, fallbackData[FeedStocks], b.Stocks)
	})

	t.Run("empty stock feed is not a connection error", func(t *testing.T) {
		data := liveData()
		data[FeedStocks] = nil
		stocks := &stubSource{err: ErrEmptyFeed}
		c := NewClient(&stubSource{data: data}, newMemCache(), quietLogger())
		c.sources[FeedStocks] = stocks

		b := c.Board(context.Background())

		assert.True(t, b.HasError)
		assert.Equal(t, StatusNotUpdated, b.StatusMessage)
		assert.Equal(t, fallbackData[FeedStocks], b.Stocks)
		assert.Len(t, b.Gold, 2)
	})
}

func TestFindAssetPrice(t *testing.T) {
	c := NewClient(&stubSource{data: liveData()}, newMemCache(), quietLogger())
	ctx := context.Background()

	tests := []struct {
		name      string
		assetType models.AssetType
		asset     string
		want      float64
		found     bool
	}{
		{"gold by partial name", models.AssetGold, "gram", 3100, true},
		{"gold name contains record", models.AssetGold, "Çeyrek Altın (22 ayar)", 5100, true},
		{"currency by code", models.AssetCurrency, "usd", 36.1, true},
		{"currency falls back to rate", models.AssetCurrency, "EUR", 39.2, true},
		{"crypto by name", models.AssetCrypto, "bitcoin", 3500000, true},
		{"stock by text", models.AssetStock, "hava yolları", 290, true},
		{"unknown stock", models.AssetStock, "XYZ", 0, false},
		{"unsupported type", models.AssetRealEstate, "Ev", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.FindAssetPrice(ctx, tt.assetType, tt.asset)
			assert.Equal(t, tt.found, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateProfitLoss(t *testing.T) {
	pl := CalculateProfitLoss(100, 125, 4)
	assert.Equal(t, 400.0, pl.BuyValue)
	assert.Equal(t, 500.0, pl.CurrentValue)
	assert.Equal(t, 100.0, pl.ProfitLoss)
	assert.Equal(t, 25.0, pl.Percentage)
	assert.True(t, pl.IsProfit)

	loss := CalculateProfitLoss(3, 2, 1)
	assert.Equal(t, -33.33, loss.Percentage)
	assert.False(t, loss.IsProfit)

	assert.Equal(t, 0.0, CalculateProfitLoss(0, 10, 5).Percentage)
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	c := NewClient(&stubSource{data: liveData()}, cache, quietLogger())
	c.Refresh(ctx)
	assert.Len(t, cache.data, 4)

	require.NoError(t, c.ClearCache(ctx))
	assert.Empty(t, cache.data)
}

func TestCollectAPISource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apikey secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/economy/goldPrice":
			_, _ = io.WriteString(w, `{"success":true,"result":[{"name":"Gram Altın","buying":3105.5,"selling":"3120,10"}]}`)
		case "/economy/cripto":
			_, _ = io.WriteString(w, `{"success":false}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	src := NewCollectAPISource(srv.URL, "secret", quietLogger())
	ctx := context.Background()

	gold, err := src.Fetch(ctx, FeedGold)
	require.NoError(t, err)
	require.Len(t, gold, 1)
	assert.Equal(t, models.Amount(3105.5), gold[0].Buying)

	_, err = src.Fetch(ctx, FeedCrypto)
	assert.Error(t, err)
	_, err = src.Fetch(ctx, FeedStocks)
	assert.Error(t, err)
}

const todayXML = `<?xml version="1.0" encoding="UTF-8"?>
<Tarih_Date Tarih="16.10.2026" Date="10/16/2026" Bulten_No="2026/196">
	<Currency CrossOrder="0" Kod="USD" CurrencyCode="USD">
		<Unit>1</Unit>
		<Isim>ABD DOLARI</Isim>
		<CurrencyName>US DOLLAR</CurrencyName>
		<ForexBuying>36.1200</ForexBuying>
		<ForexSelling>36.1850</ForexSelling>
	</Currency>
	<Currency CrossOrder="10" Kod="JPY" CurrencyCode="JPY">
		<Unit>100</Unit>
		<Isim>JAPON YENI</Isim>
		<ForexBuying>24.0500</ForexBuying>
		<ForexSelling>24.2100</ForexSelling>
	</Currency>
	<Currency CrossOrder="20" Kod="XDR" CurrencyCode="XDR">
		<Unit>1</Unit>
		<Isim>ÖZEL ÇEKME HAKKI (SDR)</Isim>
		<ForexBuying></ForexBuying>
	</Currency>
</Tarih_Date>`

func TestCentralBankSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, todayXML)
	}))
	defer srv.Close()

	src := NewCentralBankSource(srv.URL, quietLogger())
	got, err := src.Fetch(context.Background(), FeedExchange)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "USD", got[0].Code)
	assert.Equal(t, "ABD DOLARI", got[0].Name)
	assert.InDelta(t, 36.12, float64(got[0].Buying), 1e-9)
	assert.InDelta(t, 0.2405, float64(got[1].Buying), 1e-9)

	_, err = src.Fetch(context.Background(), FeedGold)
	assert.Error(t, err)
}

func TestCentralBankSource_BadXML(t *testing.T) {
	src := NewCentralBankSource("", quietLogger())
	_, err := src.parseXMLResponse([]byte("<Tarih_Date></Tarih_Date>"))
	assert.Error(t, err)
	_, err = src.parseXMLResponse([]byte("not xml <"))
	assert.Error(t, err)
}
