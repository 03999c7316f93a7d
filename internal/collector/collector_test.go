package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/model"
)

const yahooChartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","currency":"USD","longName":"Apple Inc.","regularMarketPrice":190.5},
  "timestamp":[1704292200,1704205800,1704378600,1704465000],
  "indicators":{"quote":[{
    "open":[185.0,187.1,null,182.0],
    "high":[186.0,188.4,null,183.1],
    "low":[183.9,183.8,null,180.9],
    "close":[184.2,185.6,null,181.9],
    "volume":[58414500,82488700,null,62303300]}]}}],"error":null}}`

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(yahooChartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "SPX", 252)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Contains(t, gotQuery, "range=2y")
	require.Len(t, bars, 3, "null session is skipped")
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 185.6, bars[0].Close)
	assert.Equal(t, 181.9, bars[2].Close)

	bars, err = f.FetchDailyBars(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestYahooFetcher_StampsExchangeLocalDate(t *testing.T) {
	// 2024-01-03 10:00 in Sydney is 2024-01-02 23:00 UTC
	body := `{"chart":{"result":[{
  "meta":{"symbol":"BHP.AX","currency":"AUD","exchangeTimezoneName":"Australia/Sydney"},
  "timestamp":[1704236400],
  "indicators":{"quote":[{"open":[45.1],"high":[45.9],"low":[44.8],"close":[45.5],"volume":[1000]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "BHP.AX", 5)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "2024-01-03", bars[0].Time.Format("2006-01-02"))
	assert.Equal(t, "2024-01-02", bars[0].Time.UTC().Format("2006-01-02"))
	assert.Equal(t, time.Unix(1704236400, 0).Unix(), bars[0].Time.Unix())
}

func TestYahooFetcher_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooChartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	p, err := f.FetchProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", p.CompanyName)
	assert.Equal(t, "USD", p.Currency)
}

func TestYahooFetcher_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "NOPE", 30)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestAlphaVantageFetcher_FetchDailyBars(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"Meta Data":{},"Time Series (Daily)":{
		  "2024-01-03":{"1. open":"184.22","2. high":"185.88","3. low":"183.43","4. close":"184.25","5. volume":"58414460"},
		  "2024-01-02":{"1. open":"187.15","2. high":"188.44","3. low":"183.89","4. close":"185.64","5. volume":"82488674"},
		  "2024-01-04":{"1. open":"182.15","2. high":"183.09","3. low":"180.88","4. close":"bad","5. volume":"71983570"}}}`))
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher(srv.URL, "demo", "")
	bars, err := f.FetchDailyBars(context.Background(), "AAPL", 300)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "function=TIME_SERIES_DAILY")
	assert.Contains(t, gotQuery, "outputsize=full")
	assert.Contains(t, gotQuery, "apikey=demo")
	require.Len(t, bars, 2)
	assert.Equal(t, 185.64, bars[0].Close)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Time)
}

func TestAlphaVantageFetcher_Errors(t *testing.T) {
	body := `{"Error Message":"Invalid API call."}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher(srv.URL, "demo", "")
	_, err := f.FetchDailyBars(context.Background(), "NOPE", 30)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	body = `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`
	_, err = f.FetchProfile(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownSymbol))
	assert.True(t, strings.Contains(err.Error(), "rate limited"))
}

func TestAlphaVantageFetcher_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
		w.Write([]byte(`{"Symbol":"MSFT","Name":"Microsoft Corporation","Sector":"TECHNOLOGY","Currency":"USD","MarketCapitalization":"3100000000000"}`))
	}))
	defer srv.Close()

	p, err := NewAlphaVantageFetcher(srv.URL, "demo", "").FetchProfile(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Corporation", p.CompanyName)
	assert.Equal(t, 3.1e12, p.MarketCap)
}

type fakeRedis struct {
	data   map[string][]byte
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type countingFetcher struct {
	MockFetcher
	calls int
}

func (c *countingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	c.calls++
	return c.MockFetcher.FetchDailyBars(ctx, symbol, days)
}

func TestCachedFetcher_ReadThrough(t *testing.T) {
	next := &countingFetcher{MockFetcher: MockFetcher{Price: 100, End: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)}}
	rdb := newFakeRedis()
	c := NewCachedFetcher(next, rdb, time.Hour, zap.NewNop())

	first, err := c.FetchDailyBars(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	second, err := c.FetchDailyBars(context.Background(), "AAPL", 30)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.Contains(t, rdb.data, "bars:mock:AAPL:30")
	assert.Equal(t, "mock+redis", c.Name())
}

func TestCachedFetcher_ReadErrorFallsThrough(t *testing.T) {
	next := &countingFetcher{MockFetcher: MockFetcher{Price: 100}}
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection reset")
	c := NewCachedFetcher(next, rdb, time.Hour, zap.NewNop())

	bars, err := c.FetchDailyBars(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, bars, 10)
	assert.Equal(t, 1, next.calls)
}

func TestMockFetcher(t *testing.T) {
	boom := errors.New("boom")
	m := &MockFetcher{Price: 50, Fail: map[string]error{"BAD": boom}}
	bars, err := m.FetchDailyBars(context.Background(), "OK", 5)
	require.NoError(t, err)
	assert.Len(t, bars, 5)
	assert.True(t, bars[0].Time.Before(bars[4].Time))

	_, err = m.FetchDailyBars(context.Background(), "BAD", 5)
	assert.ErrorIs(t, err, boom)

	m.Profiles = map[string]*model.Profile{}
	_, err = m.FetchProfile(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}
