package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CentralBankSource reads the exchange feed from the Turkish central bank's
// daily XML bulletin (today.xml). It serves no other feed.
type CentralBankSource struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewCentralBankSource initializes a central bank client.
func NewCentralBankSource(url string, log *logrus.Logger) *CentralBankSource {
	return &CentralBankSource{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Fetch retrieves the exchange feed.
func (s *CentralBankSource) Fetch(ctx context.Context, feed Feed) ([]Quote, error) {
	if feed != FeedExchange {
		return nil, fmt.Errorf("central bank serves only the exchange feed, not %s", feed)
	}
	body, err := s.sendRequest(ctx)
	if err != nil {
		return nil, err
	}
	return s.parseXMLResponse(body)
}

func (s *CentralBankSource) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

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

	s.log.Debugf("Central bank XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse turns each Currency element into a quote priced per one
// unit; currencies without a forex buying rate are skipped.
func (s *CentralBankSource) parseXMLResponse(rawBody []byte) ([]Quote, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	elements := doc.FindElements("//Tarih_Date/Currency")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no currency data found in XML")
	}

	out := make([]Quote, 0, len(elements))
	for _, el := range elements {
		code := el.SelectAttrValue("CurrencyCode", el.SelectAttrValue("Kod", ""))
		buying, ok := elementDecimal(el, "ForexBuying")
		if code == "" || !ok {
			continue
		}
		unit, ok := elementDecimal(el, "Unit")
		if !ok || !unit.IsPositive() {
			unit = decimal.NewFromInt(1)
		}
		selling, ok := elementDecimal(el, "ForexSelling")
		if !ok {
			selling = buying
		}
		out = append(out, Quote{
			Code:    code,
			Name:    elementText(el, "Isim"),
			Buying:  amountOf(buying.Div(unit)),
			Selling: amountOf(selling.Div(unit)),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no forex rates found in XML")
	}
	s.log.Infof("Retrieved %d central bank exchange rates", len(out))
	return out, nil
}

func elementText(el *etree.Element, tag string) string {
	child := el.FindElement("./" + tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func elementDecimal(el *etree.Element, tag string) (decimal.Decimal, bool) {
	text := strings.ReplaceAll(elementText(el, tag), ",", ".")
	if text == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
