// Package quotes reads reference prices for gold, currencies, crypto and
// stocks. Every read goes through a short-lived cache and degrades to stale or
// built-in figures, so callers always get a price list back.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/semiha11/Fincio/internal/metrics"
	"github.com/semiha11/Fincio/internal/models"
)

// Feed names one price list.
type Feed string

const (
	FeedGold     Feed = "gold"
	FeedExchange Feed = "exchange"
	FeedCrypto   Feed = "crypto"
	FeedStocks   Feed = "stocks"
)

// Feeds lists every feed in display order.
var Feeds = []Feed{FeedGold, FeedExchange, FeedCrypto, FeedStocks}

var cacheKeys = map[Feed]string{
	FeedGold:     "@fincio_cache_gold",
	FeedExchange: "@fincio_cache_exchange",
	FeedCrypto:   "@fincio_cache_crypto",
	FeedStocks:   "@fincio_cache_stocks",
}

// CacheTTL is how long a fetched price list is served without refetching.
const CacheTTL = 5 * time.Minute

// Status messages shown when any feed falls back.
const (
	StatusConnectionError = "API Bağlantı Hatası: Lütfen anahtarınızı kontrol edin."
	StatusNotUpdated      = "Veriler güncellenemedi."
)

// ErrEmptyFeed is returned when a source answers without any records.
var ErrEmptyFeed = errors.New("feed returned no records")

// Quote is one price record. Feeds fill different fields: gold uses
// Name/Buying/Selling, currencies Code/Name/Buying/Selling or Rate, crypto
// Code/Name/Price and stocks Code/Text/LastPrice.
type Quote struct {
	Code      string        `json:"code,omitempty"`
	Name      string        `json:"name,omitempty"`
	Text      string        `json:"text,omitempty"`
	Buying    models.Amount `json:"buying,omitempty"`
	Selling   models.Amount `json:"selling,omitempty"`
	Rate      models.Amount `json:"rate,omitempty"`
	Price     models.Amount `json:"price,omitempty"`
	LastPrice models.Amount `json:"lastprice,omitempty"`
}

// Source fetches one feed from a remote service.
type Source interface {
	Fetch(ctx context.Context, feed Feed) ([]Quote, error)
}

// Cache is the durable key-value store used for fetched lists.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys []string) error
}

type cacheEntry struct {
	Data      []Quote `json:"data"`
	Timestamp int64   `json:"timestamp"`
}

// Result is the outcome of reading one feed.
type Result struct {
	Data      []Quote
	FromCache bool
	Stale     bool
	Err       error
}

// OK reports whether the feed produced usable records.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Data) > 0
}

// Client reads feeds through the cache.
type Client struct {
	sources map[Feed]Source
	cache   Cache
	log     *logrus.Logger
	now     func() time.Time
	ttl     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithExchangeSource serves the exchange feed from src instead of the default source.
func WithExchangeSource(src Source) Option {
	return func(c *Client) { c.sources[FeedExchange] = src }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client serving every feed from src.
func NewClient(src Source, cache Cache, log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		sources: map[Feed]Source{},
		cache:   cache,
		log:     log,
		now:     time.Now,
		ttl:     CacheTTL,
	}
	for _, f := range Feeds {
		c.sources[f] = src
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) readCache(ctx context.Context, feed Feed) (cacheEntry, bool) {
	raw, ok, err := c.cache.Get(ctx, cacheKeys[feed])
	if err != nil {
		c.log.WithError(err).WithField("feed", feed).Warn("Quote cache read failed")
		return cacheEntry{}, false
	}
	if !ok {
		return cacheEntry{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.log.WithError(err).WithField("feed", feed).Warn("Quote cache entry unreadable")
		return cacheEntry{}, false
	}
	return e, true
}

func (c *Client) writeCache(ctx context.Context, feed Feed, data []Quote) {
	raw, err := json.Marshal(cacheEntry{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		c.log.WithError(err).WithField("feed", feed).Warn("Quote cache encode failed")
		return
	}
	if err := c.cache.Set(ctx, cacheKeys[feed], string(raw)); err != nil {
		c.log.WithError(err).WithField("feed", feed).Warn("Quote cache write failed")
	}
}

func (c *Client) fresh(e cacheEntry) bool {
	return c.now().Sub(time.UnixMilli(e.Timestamp)) <= c.ttl
}

// Quotes returns the feed from a fresh cache entry or the remote source. When
// the source fails, an expired cache entry is served as stale data with Err
// still set.
func (c *Client) Quotes(ctx context.Context, feed Feed) Result {
	cached, ok := c.readCache(ctx, feed)
	if ok && c.fresh(cached) && len(cached.Data) > 0 {
		return Result{Data: cached.Data, FromCache: true}
	}
	data, err := c.fetch(ctx, feed)
	if err == nil {
		c.writeCache(ctx, feed, data)
		return Result{Data: data}
	}
	c.log.WithError(err).WithField("feed", feed).Warn("Quote fetch failed")
	if ok && len(cached.Data) > 0 {
		metrics.QuoteFallbacks.WithLabelValues(string(feed), "stale").Inc()
		return Result{Data: cached.Data, FromCache: true, Stale: true, Err: err}
	}
	return Result{Err: err}
}

func (c *Client) fetch(ctx context.Context, feed Feed) ([]Quote, error) {
	src, ok := c.sources[feed]
	if !ok || src == nil {
		return nil, fmt.Errorf("no source for feed %s", feed)
	}
	data, err := src.Fetch(ctx, feed)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFeed
	}
	return data, nil
}

// Refresh refetches every feed into the cache.
func (c *Client) Refresh(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, feed := range Feeds {
		feed := feed
		g.Go(func() error {
			data, err := c.fetch(gctx, feed)
			if err != nil {
				c.log.WithError(err).WithField("feed", feed).Warn("Quote refresh failed")
				return nil
			}
			c.writeCache(gctx, feed, data)
			return nil
		})
	}
	_ = g.Wait()
}

// ClearCache drops every cached feed.
func (c *Client) ClearCache(ctx context.Context) error {
	keys := make([]string, 0, len(cacheKeys))
	for _, f := range Feeds {
		keys = append(keys, cacheKeys[f])
	}
	if err := c.cache.MultiRemove(ctx, keys); err != nil {
		return fmt.Errorf("failed to clear quote cache: %w", err)
	}
	return nil
}

// Board is every feed at once, with built-in figures standing in for feeds
// that could not be read.
type Board struct {
	Gold          []Quote `json:"gold"`
	Exchange      []Quote `json:"exchange"`
	Crypto        []Quote `json:"crypto"`
	Stocks        []Quote `json:"stocks"`
	HasError      bool    `json:"hasError"`
	StatusMessage string  `json:"statusMessage,omitempty"`
}

// fallbackData is served for a feed with neither live nor cached records.
var fallbackData = map[Feed][]Quote{
	FeedGold:     {{Name: "Gram Altın", Buying: 3050, Selling: 3070}},
	FeedExchange: {{Code: "USD", Name: "Amerikan Doları", Buying: 35.50, Selling: 35.70}},
	FeedCrypto:   {{Code: "BTC", Name: "Bitcoin", Price: 3200000}},
	FeedStocks:   {{Code: "THYAO", Text: "Türk Hava Yolları", LastPrice: 285.50}},
}

// Board reads all feeds in parallel.
func (c *Client) Board(ctx context.Context) Board {
	results := make([]Result, len(Feeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range Feeds {
		i, feed := i, feed
		g.Go(func() error {
			results[i] = c.Quotes(gctx, feed)
			return nil
		})
	}
	_ = g.Wait()

	var b Board
	lists := []*[]Quote{&b.Gold, &b.Exchange, &b.Crypto, &b.Stocks}
	connErr := false
	for i, feed := range Feeds {
		r := results[i]
		*lists[i] = r.Data
		if r.OK() {
			continue
		}
		b.HasError = true
		if r.Err != nil && (feed == FeedGold || feed == FeedExchange) {
			connErr = true
		}
		if len(r.Data) == 0 {
			metrics.QuoteFallbacks.WithLabelValues(string(feed), "static").Inc()
			*lists[i] = fallbackData[feed]
		}
	}
	if b.HasError {
		b.StatusMessage = StatusNotUpdated
		if connErr {
			b.StatusMessage = StatusConnectionError
		}
	}
	return b
}

// FindAssetPrice looks up the unit price of a holding by type and name. The
// second result is false when no record matches.
func (c *Client) FindAssetPrice(ctx context.Context, assetType models.AssetType, name string) (float64, bool) {
	var feed Feed
	switch assetType {
	case models.AssetGold:
		feed = FeedGold
	case models.AssetCurrency:
		feed = FeedExchange
	case models.AssetCrypto:
		feed = FeedCrypto
	case models.AssetStock:
		feed = FeedStocks
	default:
		return 0, false
	}
	r := c.Quotes(ctx, feed)
	if len(r.Data) == 0 {
		return 0, false
	}
	q, ok := match(feed, r.Data, strings.ToLower(name))
	if !ok {
		return 0, false
	}
	return q.unitPrice(feed), true
}

func match(feed Feed, data []Quote, name string) (Quote, bool) {
	for _, q := range data {
		code := strings.ToLower(q.Code)
		label := strings.ToLower(q.Name)
		if feed == FeedStocks {
			label = strings.ToLower(q.Text)
		}
		switch feed {
		case FeedGold:
			if label != "" && (strings.Contains(label, name) || strings.Contains(name, label)) {
				return q, true
			}
		default:
			if (code != "" && code == name) || (label != "" && strings.Contains(label, name)) {
				return q, true
			}
		}
	}
	return Quote{}, false
}

func (q Quote) unitPrice(feed Feed) float64 {
	var candidates []models.Amount
	switch feed {
	case FeedGold:
		candidates = []models.Amount{q.Buying, q.Selling}
	case FeedExchange:
		candidates = []models.Amount{q.Buying, q.Rate}
	case FeedCrypto:
		candidates = []models.Amount{q.Price}
	case FeedStocks:
		candidates = []models.Amount{q.LastPrice, q.Price}
	}
	for _, v := range candidates {
		if v != 0 {
			return float64(v)
		}
	}
	return 0
}

func amountOf(d decimal.Decimal) models.Amount {
	return models.Amount(d.InexactFloat64())
}

// ProfitLoss compares a position's cost with its current value.
type ProfitLoss struct {
	BuyValue     float64 `json:"buyValue"`
	CurrentValue float64 `json:"currentValue"`
	ProfitLoss   float64 `json:"profitLoss"`
	Percentage   float64 `json:"percentage"`
	IsProfit     bool    `json:"isProfit"`
}

// CalculateProfitLoss values quantity units bought at buyPrice against
// currentPrice. Percentage is rounded to two decimals and zero without cost.
func CalculateProfitLoss(buyPrice, currentPrice, quantity float64) ProfitLoss {
	buy := decimal.NewFromFloat(buyPrice).Mul(decimal.NewFromFloat(quantity))
	current := decimal.NewFromFloat(currentPrice).Mul(decimal.NewFromFloat(quantity))
	diff := current.Sub(buy)
	pct := decimal.Zero
	if buy.IsPositive() {
		pct = diff.Div(buy).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return ProfitLoss{
		BuyValue:     buy.InexactFloat64(),
		CurrentValue: current.InexactFloat64(),
		ProfitLoss:   diff.InexactFloat64(),
		Percentage:   pct.InexactFloat64(),
		IsProfit:     !diff.IsNegative(),
	}
}
