package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/pkg/models"
)

func testConfig(base string) config.DataConfig {
	return config.DataConfig{
		PrimaryBaseURL: base,
		PrimaryAPIKey:  "test-key",
		StooqBaseURL:   base,
		YahooBaseURL:   base,
		NewsFeedURL:    base + "/rss?s=%s",
		TimeoutSec:     5,
	}
}

func aggsJSON(closes ...float64) string {
	results := make([]map[string]float64, len(closes))
	for i, c := range closes {
		results[i] = map[string]float64{"c": c, "o": c - 1, "h": c + 1, "l": c - 2}
	}
	raw, _ := json.Marshal(map[string]any{"status": "OK", "results": results})
	return string(raw)
}

func TestFetchPrimaryAggsQueryParamAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v2/aggs/ticker/TSLA/") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("apiKey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, aggsJSON(100, 101, 102))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	payload, err := c.fetchPrimaryAggs(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchPrimaryAggs: %v", err)
	}
	if payload.Kind != KindAggs || len(payload.Closes) != 3 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestFetchPrimaryAggsBearerFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reject query-param auth, require bearer header.
		if r.Header.Get("Authorization") == "Bearer test-key" {
			fmt.Fprint(w, aggsJSON(100, 101))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	payload, err := c.fetchPrimaryAggs(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchPrimaryAggs: %v", err)
	}
	if len(payload.Closes) != 2 {
		t.Errorf("closes = %v", payload.Closes)
	}
}

func TestFetchPrimaryAggsNoKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.PrimaryAPIKey = ""
	c := NewClient(cfg, 0)
	if _, err := c.fetchPrimaryAggs(context.Background(), "TSLA"); err == nil {
		t.Error("expected error without API key")
	}
}

func TestFetchDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"name":             "Tesla, Inc.",
				"sic_description":  "Motor Vehicles",
				"primary_exchange": "XNAS",
				"currency_name":    "usd",
				"market_cap":       1.0e12,
			},
		})
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	details, err := c.fetchDetails(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchDetails: %v", err)
	}
	if details.Name != "Tesla, Inc." || details.Currency != "USD" || details.Exchange != "XNAS" {
		t.Errorf("details = %+v", details)
	}
	if details.MarketCap == nil || *details.MarketCap != 1.0e12 {
		t.Errorf("MarketCap = %v", details.MarketCap)
	}
}

func TestFetchDetailsPartialPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":{"name":"Tesla, Inc."}}`)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	details, err := c.fetchDetails(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchDetails: %v", err)
	}
	if details.Name != "Tesla, Inc." {
		t.Errorf("Name = %q", details.Name)
	}
	if details.Sector != "" || details.MarketCap != nil {
		t.Errorf("absent fields should stay zero: %+v", details)
	}
}

func TestFetchStooqTriesSymbolForms(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("s")
		requested = append(requested, sym)
		if sym == "tsla" { // only the bare form has data
			fmt.Fprint(w, "Date,Open,High,Low,Close,Volume\n2024-01-01,99,101,98,100,5000\n")
			return
		}
		fmt.Fprint(w, "No data")
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	payload, err := c.fetchStooqCSV(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchStooqCSV: %v", err)
	}
	if payload.Kind != KindCSV {
		t.Errorf("kind = %v", payload.Kind)
	}
	if len(requested) != 2 || requested[0] != "tsla.us" || requested[1] != "tsla" {
		t.Errorf("requested symbols = %v", requested)
	}
}

func TestFetchYahooChart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"indicators":{"quote":[{"close":[100.0,null,101.5,102.0]}]}}]}}`)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 0)
	payload, err := c.fetchYahooChart(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetchYahooChart: %v", err)
	}
	if len(payload.Closes) != 3 {
		t.Errorf("closes = %v (nulls must be dropped)", payload.Closes)
	}
}

func TestFetchBundleDegradesOnFailure(t *testing.T) {
	// Server that errors on everything: the bundle must still come back,
	// with every payload absent.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 3)
	bundle := c.FetchBundle(context.Background(), "TSLA")

	if bundle.Ticker != "TSLA" {
		t.Errorf("Ticker = %q", bundle.Ticker)
	}
	if bundle.Primary.Kind != KindAbsent || bundle.FallbackA.Kind != KindAbsent || bundle.FallbackB.Kind != KindAbsent {
		t.Errorf("expected absent payloads: %+v", bundle)
	}
	if bundle.Details != nil || bundle.Headlines != nil {
		t.Errorf("expected nil details/headlines")
	}

	series := ExtractSeries(bundle)
	if series.Source != models.ProvenanceNone {
		t.Errorf("source = %s, want none", series.Source)
	}
}

func TestFetchBundleHappyPath(t *testing.T) {
	closes := make([]float64, 0, 12)
	for i := 0; i < 12; i++ {
		closes = append(closes, 100+float64(i))
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v2/aggs/"):
			fmt.Fprint(w, aggsJSON(closes...))
		case strings.HasPrefix(r.URL.Path, "/v3/reference/"):
			fmt.Fprint(w, `{"results":{"name":"Tesla, Inc."}}`)
		case strings.HasPrefix(r.URL.Path, "/rss"):
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>`+
				`<item><title>Tesla &amp; the &lt;b&gt;grid&lt;/b&gt;</title><link>http://x</link></item>`+
				`<item><title>Second story</title></item></channel></rss>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), 5)
	bundle := c.FetchBundle(context.Background(), "TSLA")

	if bundle.Primary.Kind != KindAggs || len(bundle.Primary.Closes) != 12 {
		t.Errorf("primary = %+v", bundle.Primary)
	}
	if bundle.Details == nil || bundle.Details.Name != "Tesla, Inc." {
		t.Errorf("details = %+v", bundle.Details)
	}
	if len(bundle.Headlines) != 2 {
		t.Fatalf("headlines = %+v", bundle.Headlines)
	}
	if bundle.Headlines[0].Title != "Tesla & the grid" {
		t.Errorf("headline title = %q (HTML should be stripped)", bundle.Headlines[0].Title)
	}

	series := ExtractSeries(bundle)
	if series.Source != models.ProvenancePrimary || series.Len() != 12 {
		t.Errorf("series = %+v", series)
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain title", "plain title"},
		{"a &amp; b", "a & b"},
		{"<a href='x'>linked</a> text", "linked text"},
		{"  spaced  ", "spaced"},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
