package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"portfolio-tracker/internal/models"
)

const (
	defaultQuoteBaseURL = "https://query1.finance.yahoo.com"
	quoteTimeout        = 10 * time.Second
	maxRedirects        = 5
)

var errTooManyRedirects = errors.New("too many redirects")

// QuoteClient fetches a live quote for one symbol. Implementations never
// return a Go error: every failure mode collapses into an unavailable result
// so callers treat a bad symbol and a dead network identically.
type QuoteClient interface {
	Fetch(symbol string) models.QuoteResult
}

// HTTPQuoteClient fetches quotes from a Yahoo-chart-style endpoint, one
// request per call. No caching, no retries.
type HTTPQuoteClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPQuoteClient creates a client against baseURL (the default public
// endpoint when empty). The underlying client times out after 10 seconds and
// follows at most 5 redirect hops.
func NewHTTPQuoteClient(baseURL string) *HTTPQuoteClient {
	if baseURL == "" {
		baseURL = defaultQuoteBaseURL
	}

	return &HTTPQuoteClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: quoteTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

// chartResponse mirrors the fields we need from the quote source. Prices are
// pointers so a missing field is distinguishable from zero.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch requests the symbol's chart document and extracts the current price
// and the change against the previous close, both rounded to 2 decimals.
func (c *HTTPQuoteClient) Fetch(symbol string) models.QuoteResult {
	fetchURL := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequest(http.MethodGet, fetchURL, nil)
	if err != nil {
		return models.Unavailable(models.FailureTransport)
	}
	req.Header.Set("User-Agent", "portfolio-tracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) {
			log.Printf("quote fetch for %s exceeded redirect limit", symbol)
			return models.Unavailable(models.FailureRedirectLimit)
		}
		log.Printf("quote fetch for %s failed: %v", symbol, err)
		return models.Unavailable(models.FailureTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("quote source returned %d for %s", resp.StatusCode, symbol)
		return models.Unavailable(models.FailureRemoteError)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Unavailable(models.FailureTransport)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("quote payload for %s is not valid JSON: %v", symbol, err)
		return models.Unavailable(models.FailureMalformed)
	}

	if payload.Chart.Error != nil {
		log.Printf("quote source error for %s: %s", symbol, payload.Chart.Error.Code)
		return models.Unavailable(models.FailureRemoteError)
	}

	if len(payload.Chart.Result) == 0 {
		return models.Unavailable(models.FailureMalformed)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return models.Unavailable(models.FailureMalformed)
	}

	// previousClose is the primary field; chartPreviousClose is the fallback.
	previousClose := meta.PreviousClose
	if previousClose == nil {
		previousClose = meta.ChartPreviousClose
	}
	if previousClose == nil {
		return models.Unavailable(models.FailureMalformed)
	}

	return models.QuoteResult{
		Quote: models.Quote{
			Price:  round2(*meta.RegularMarketPrice),
			Change: round2(*meta.RegularMarketPrice - *previousClose),
		},
	}
}
