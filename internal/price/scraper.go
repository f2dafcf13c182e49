package price

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenPageScraper extracts the current USD price from the explorer's
// token tracker page title, which looks like
// "<title>$1.23 | yAxis V2 (YAXIS) Token Tracker | Etherscan</title>".
type TokenPageScraper struct {
	url        string
	pattern    *regexp.Regexp
	httpClient *http.Client
}

func NewTokenPageScraper(explorerBaseURL, tokenContract, tokenName string, httpClient *http.Client) *TokenPageScraper {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	pattern := regexp.MustCompile(`(?i)<title>\s*\$([0-9][0-9,]*(?:\.[0-9]+)?)\s*\|\s*` + regexp.QuoteMeta(tokenName) + `\s+Token Tracker`)
	return &TokenPageScraper{
		url:        explorerBaseURL + "/token/" + tokenContract,
		pattern:    pattern,
		httpClient: httpClient,
	}
}

// Scrape fetches the token page and parses the dollar price out of its
// title. It fails on a non-success response, a title that does not match
// the pattern, or a matched value that is not a finite number.
func (s *TokenPageScraper) Scrape(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch token page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read token page: %w", err)
	}

	// The title can be split across lines in the served HTML.
	page := strings.NewReplacer("\r", " ", "\n", " ").Replace(string(body))
	match := s.pattern.FindStringSubmatch(page)
	if match == nil {
		return decimal.Zero, fmt.Errorf("no price found in page title at %s", s.url)
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse scraped price %q: %w", match[1], err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("scraped price %q is not finite", match[1])
	}

	return decimal.NewFromFloat(value).Round(2), nil
}
