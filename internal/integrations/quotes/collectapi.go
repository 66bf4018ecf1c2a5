package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var collectAPIPaths = map[Feed]string{
	FeedGold:     "/economy/goldPrice",
	FeedExchange: "/economy/exchange",
	FeedCrypto:   "/economy/cripto",
	FeedStocks:   "/economy/hisseSenedi",
}

// CollectAPISource reads all four feeds from the CollectAPI economy service.
type CollectAPISource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewCollectAPISource initializes a CollectAPI client.
func NewCollectAPISource(baseURL, apiKey string, log *logrus.Logger) *CollectAPISource {
	if apiKey != "" && !strings.HasPrefix(apiKey, "apikey ") {
		apiKey = "apikey " + apiKey
	}
	return &CollectAPISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type collectAPIResponse struct {
	Success bool    `json:"success"`
	Result  []Quote `json:"result"`
}

// Fetch retrieves one feed.
func (s *CollectAPISource) Fetch(ctx context.Context, feed Feed) ([]Quote, error) {
	path, ok := collectAPIPaths[feed]
	if !ok {
		return nil, fmt.Errorf("unknown feed %s", feed)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	s.log.Debugf("CollectAPI %s response: %d bytes", feed, len(body))

	var out collectAPIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !out.Success || out.Result == nil {
		return nil, fmt.Errorf("invalid response format")
	}
	return out.Result, nil
}
