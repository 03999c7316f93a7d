package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage REST API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avBar is the per-day object of TIME_SERIES_DAILY. Values arrive as strings.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (b avBar) toOHLCV(t time.Time) (model.OHLCV, error) {
	bar := model.OHLCV{Time: t}
	var err error
	if bar.Open, err = strconv.ParseFloat(b.Open, 64); err != nil {
		return bar, err
	}
	if bar.High, err = strconv.ParseFloat(b.High, 64); err != nil {
		return bar, err
	}
	if bar.Low, err = strconv.ParseFloat(b.Low, 64); err != nil {
		return bar, err
	}
	if bar.Close, err = strconv.ParseFloat(b.Close, 64); err != nil {
		return bar, err
	}
	bar.Volume, err = strconv.ParseFloat(b.Volume, 64)
	return bar, err
}

type avDaily struct {
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	Series       map[string]avBar `json:"Time Series (Daily)"`
}

type avOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Currency             string `json:"Currency"`
	MarketCapitalization string `json:"MarketCapitalization"`
	ErrorMessage         string `json:"Error Message"`
	Note                 string `json:"Note"`
	Information          string `json:"Information"`
}

// QueryRaw calls the /query endpoint and returns the body. Callers that
// need CSV functions such as EARNINGS_CALENDAR use it directly.
func (f *AlphaVantageFetcher) QueryRaw(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", f.APIKey)
	endpoint := f.BaseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", params.Get("function"), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage %s: status %d, body: %s", params.Get("function"), resp.StatusCode, string(body))
	}
	return body, nil
}

// Query calls a JSON function of the /query endpoint and decodes into out.
func (f *AlphaVantageFetcher) Query(ctx context.Context, params url.Values, out any) error {
	body, err := f.QueryRaw(ctx, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", params.Get("function"), err)
	}
	return nil
}

// apiError maps the in-body error fields Alpha Vantage returns with status 200.
func apiError(symbol, errMsg, note, info string) error {
	switch {
	case errMsg != "":
		return fmt.Errorf("alphavantage %s: %w", symbol, ErrUnknownSymbol)
	case note != "":
		return fmt.Errorf("alphavantage rate limited: %s", note)
	case info != "":
		return fmt.Errorf("alphavantage: %s", info)
	}
	return nil
}

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	if days > 100 {
		params.Set("outputsize", "full")
	}
	var daily avDaily
	if err := f.Query(ctx, params, &daily); err != nil {
		return nil, err
	}
	if err := apiError(symbol, daily.ErrorMessage, daily.Note, daily.Information); err != nil {
		return nil, err
	}
	if len(daily.Series) == 0 {
		return nil, fmt.Errorf("alphavantage %s: no data returned", symbol)
	}

	bars := make([]model.OHLCV, 0, len(daily.Series))
	for date, b := range daily.Series {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		bar, err := b.toOHLCV(t)
		if err != nil {
			continue
		}
		bars = append(bars, bar)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimBars(bars, days), nil
}

func (f *AlphaVantageFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)
	var ov avOverview
	if err := f.Query(ctx, params, &ov); err != nil {
		return nil, err
	}
	if err := apiError(symbol, ov.ErrorMessage, ov.Note, ov.Information); err != nil {
		return nil, err
	}
	if ov.Symbol == "" {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, ErrUnknownSymbol)
	}
	marketCap, _ := strconv.ParseFloat(ov.MarketCapitalization, 64)
	return &model.Profile{
		Symbol:      ov.Symbol,
		CompanyName: ov.Name,
		Sector:      ov.Sector,
		MarketCap:   marketCap,
		Currency:    ov.Currency,
	}, nil
}
