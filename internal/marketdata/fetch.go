package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/pkg/models"
	"github.com/seenimoa/riskdesk/pkg/utils"
)

// Client fetches provider payloads over HTTP. A fetcher error never fails
// the bundle; the affected payload degrades to Absent and the next priority
// is tried by the extractor.
type Client struct {
	cfg    config.DataConfig
	maxNews int
	http   *http.Client
}

// NewClient creates a market-data client from configuration.
func NewClient(cfg config.DataConfig, maxNews int) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:     cfg,
		maxNews: maxNews,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchBundle gathers every provider payload for one ticker concurrently.
// It always returns a bundle; individual failures are logged and degrade
// to absent payloads.
func (c *Client) FetchBundle(ctx context.Context, ticker string) Bundle {
	bundle := Bundle{Ticker: ticker}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		payload, err := c.fetchPrimaryAggs(gctx, ticker)
		if err != nil {
			log.Printf("marketdata: primary aggregates for %s: %v", ticker, err)
			return nil
		}
		bundle.Primary = payload
		return nil
	})
	g.Go(func() error {
		details, err := c.fetchDetails(gctx, ticker)
		if err != nil {
			log.Printf("marketdata: ticker details for %s: %v", ticker, err)
			return nil
		}
		bundle.Details = details
		return nil
	})
	g.Go(func() error {
		payload, err := c.fetchStooqCSV(gctx, ticker)
		if err != nil {
			log.Printf("marketdata: stooq fallback for %s: %v", ticker, err)
			return nil
		}
		bundle.FallbackA = payload
		return nil
	})
	g.Go(func() error {
		payload, err := c.fetchYahooChart(gctx, ticker)
		if err != nil {
			log.Printf("marketdata: yahoo fallback for %s: %v", ticker, err)
			return nil
		}
		bundle.FallbackB = payload
		return nil
	})
	g.Go(func() error {
		headlines, err := c.fetchHeadlines(gctx, ticker)
		if err != nil {
			log.Printf("marketdata: headlines for %s: %v", ticker, err)
			return nil
		}
		bundle.Headlines = headlines
		return nil
	})

	_ = g.Wait() // every goroutine swallows its own error
	return bundle
}

// fetchPrimaryAggs pulls the last 30 days of daily aggregates from the paid
// provider. Query-param auth is tried first; a 403 falls back to bearer
// header auth, since some plans require it.
func (c *Client) fetchPrimaryAggs(ctx context.Context, ticker string) (Payload, error) {
	if c.cfg.PrimaryAPIKey == "" {
		return Absent, fmt.Errorf("no primary API key configured")
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))

	body, err := c.getJSONWithAuth(ctx, c.cfg.PrimaryBaseURL+path)
	if err != nil {
		return Absent, err
	}

	results := utils.LookupSlice(body, "results")
	if results == nil {
		return Absent, fmt.Errorf("response carries no results array")
	}
	closes := make([]float64, 0, len(results))
	for _, item := range results {
		if c, ok := utils.LookupFloat(item, "c"); ok {
			closes = append(closes, c)
		}
	}
	if len(closes) == 0 {
		return Absent, fmt.Errorf("no close values in results")
	}
	return AggsPayload(closes), nil
}

// fetchDetails pulls descriptive reference metadata from the primary
// provider. All fields are optional.
func (c *Client) fetchDetails(ctx context.Context, ticker string) (*models.TickerDetails, error) {
	if c.cfg.PrimaryAPIKey == "" {
		return nil, fmt.Errorf("no primary API key configured")
	}

	body, err := c.getJSONWithAuth(ctx, c.cfg.PrimaryBaseURL+"/v3/reference/tickers/"+ticker)
	if err != nil {
		return nil, err
	}

	details := &models.TickerDetails{
		Name:     utils.LookupString(body, "results", "name"),
		Sector:   utils.LookupString(body, "results", "sic_description"),
		Exchange: utils.LookupString(body, "results", "primary_exchange"),
		Currency: strings.ToUpper(utils.LookupString(body, "results", "currency_name")),
	}
	if mc, ok := utils.LookupFloat(body, "results", "market_cap"); ok {
		details.MarketCap = &mc
	}
	return details, nil
}

// getJSONWithAuth performs a GET with apiKey query-param auth, retrying
// once with an Authorization header on 403.
func (c *Client) getJSONWithAuth(ctx context.Context, url string) (any, error) {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}

	resp, err := c.get(ctx, url+sep+"apiKey="+c.cfg.PrimaryAPIKey, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		resp, err = c.get(ctx, url, "Bearer "+c.cfg.PrimaryAPIKey)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d at %s", resp.StatusCode, url)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}

// fetchStooqCSV pulls the free daily CSV download, trying the US-suffixed
// symbol form first.
func (c *Client) fetchStooqCSV(ctx context.Context, ticker string) (Payload, error) {
	lower := strings.ToLower(ticker)
	for _, sym := range []string{lower + ".us", lower} {
		url := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", c.cfg.StooqBaseURL, sym)
		resp, err := c.get(ctx, url, "")
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}
		text := string(raw)
		if strings.Contains(text, "Date,Open,High,Low,Close,Volume") {
			return CSVPayload(text), nil
		}
	}
	return Absent, fmt.Errorf("no data found")
}

// --- Yahoo v8 chart types ---

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchYahooChart pulls one month of daily closes from the free Yahoo chart
// endpoint. Null entries (market holidays) are dropped.
func (c *Client) fetchYahooChart(ctx context.Context, ticker string) (Payload, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1mo&interval=1d", c.cfg.YahooBaseURL, ticker)
	resp, err := c.get(ctx, url, "")
	if err != nil {
		return Absent, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Absent, fmt.Errorf("status %d", resp.StatusCode)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return Absent, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return Absent, fmt.Errorf("chart error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return Absent, fmt.Errorf("empty chart result")
	}

	raw := chart.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	if len(closes) == 0 {
		return Absent, fmt.Errorf("no close values")
	}
	return AggsPayload(closes), nil
}

func (c *Client) get(ctx context.Context, url, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")
	req.Header.Set("User-Agent", "riskdesk/1.0")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return c.http.Do(req)
}
