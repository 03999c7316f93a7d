package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockScope/internal/collector"
	"StockScope/internal/model"
)

// perSource caps how many articles one source contributes.
const perSource = 10

// Source returns recent articles about a symbol.
type Source interface {
	Name() string
	Articles(ctx context.Context, symbol string) ([]model.Article, error)
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func get(ctx context.Context, client *http.Client, endpoint string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

// NewsAPISource searches newsapi.org for the symbol and its company name.
type NewsAPISource struct {
	BaseURL string
	APIKey  string
	Days    int
	Client  *http.Client
	// Profiles resolves the company name for the query; optional.
	Profiles collector.Fetcher
	now      func() time.Time
}

func NewNewsAPISource(apiKey string, profiles collector.Fetcher) *NewsAPISource {
	return &NewsAPISource{
		BaseURL:  "https://newsapi.org",
		APIKey:   apiKey,
		Days:     7,
		Client:   defaultClient(),
		Profiles: profiles,
		now:      time.Now,
	}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (s *NewsAPISource) Articles(ctx context.Context, symbol string) ([]model.Article, error) {
	q := fmt.Sprintf("%q", symbol)
	if s.Profiles != nil {
		if p, err := s.Profiles.FetchProfile(ctx, symbol); err == nil && p.CompanyName != "" && p.CompanyName != symbol {
			q = fmt.Sprintf("%q OR %q", symbol, p.CompanyName)
		}
	}
	end := s.now().UTC()
	params := url.Values{
		"q":        {q},
		"from":     {end.AddDate(0, 0, -s.Days).Format("2006-01-02")},
		"to":       {end.Format("2006-01-02")},
		"sortBy":   {"relevancy"},
		"pageSize": {"20"},
		"language": {"en"},
	}
	body, err := get(ctx, s.Client, s.BaseURL+"/v2/everything?"+params.Encode(),
		http.Header{"X-Api-Key": {s.APIKey}})
	if err != nil {
		return nil, fmt.Errorf("newsapi %s: %w", symbol, err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", symbol, resp.Message)
	}

	var out []model.Article
	for _, a := range resp.Articles {
		if a.Title == "" || a.Description == "" {
			continue
		}
		out = append(out, model.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
		if len(out) == perSource {
			break
		}
	}
	return out, nil
}

// AlphaVantageSource reads the NEWS_SENTIMENT feed.
type AlphaVantageSource struct {
	av *collector.AlphaVantageFetcher
}

func NewAlphaVantageSource(av *collector.AlphaVantageFetcher) *AlphaVantageSource {
	return &AlphaVantageSource{av: av}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

type avFeed struct {
	Feed []struct {
		Title         string  `json:"title"`
		Summary       string  `json:"summary"`
		URL           string  `json:"url"`
		TimePublished string  `json:"time_published"`
		Source        string  `json:"source"`
		OverallScore  float64 `json:"overall_sentiment_score"`
	} `json:"feed"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (s *AlphaVantageSource) Articles(ctx context.Context, symbol string) ([]model.Article, error) {
	var feed avFeed
	err := s.av.Query(ctx, url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {symbol},
		"limit":    {fmt.Sprint(perSource)},
	}, &feed)
	if err != nil {
		return nil, err
	}
	if feed.Note != "" || feed.Information != "" {
		return nil, fmt.Errorf("alphavantage news: %s%s", feed.Note, feed.Information)
	}

	var out []model.Article
	for _, item := range feed.Feed {
		published, _ := time.Parse("20060102T150405", item.TimePublished)
		score := item.OverallScore
		source := item.Source
		if source == "" {
			source = "Alpha Vantage"
		}
		out = append(out, model.Article{
			Title:         item.Title,
			Description:   item.Summary,
			URL:           item.URL,
			PublishedAt:   published,
			Source:        source,
			ProviderScore: &score,
		})
		if len(out) == perSource {
			break
		}
	}
	return out, nil
}

// FinvizSource scrapes the news table of a Finviz quote page.
type FinvizSource struct {
	BaseURL string
	Client  *http.Client
	Limit   int
}

func NewFinvizSource() *FinvizSource {
	return &FinvizSource{BaseURL: "https://finviz.com", Client: defaultClient(), Limit: 5}
}

func (s *FinvizSource) Name() string { return "finviz" }

const finvizStamp = "Jan-02-06 03:04PM"

func (s *FinvizSource) Articles(ctx context.Context, symbol string) ([]model.Article, error) {
	body, err := get(ctx, s.Client, s.BaseURL+"/quote.ashx?t="+url.QueryEscape(symbol),
		http.Header{"User-Agent": {"Mozilla/5.0 (compatible; stockscope)"}})
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", symbol, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("finviz parse: %w", err)
	}

	var out []model.Article
	var day string
	doc.Find("#news-table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("a").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return true
		}

		// rows after the first of a day carry only the time
		stamp := strings.Fields(strings.TrimSpace(row.Find("td").First().Text()))
		switch len(stamp) {
		case 2:
			day = stamp[0]
			stamp = stamp[1:]
		case 0:
			stamp = []string{""}
		}
		published, _ := time.Parse(finvizStamp, day+" "+stamp[0])

		source := strings.Trim(strings.TrimSpace(row.Find("span").Last().Text()), "()")
		if source == "" {
			source = "Finviz"
		}
		out = append(out, model.Article{
			Title:       title,
			Description: title,
			URL:         href,
			PublishedAt: published,
			Source:      source,
		})
		return len(out) < s.Limit
	})
	return out, nil
}
