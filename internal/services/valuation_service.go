package services

import (
	"sort"
	"sync"

	"portfolio-tracker/internal/models"
)

// HoldingsSource is the slice of the holdings repository the valuation engine
// needs.
type HoldingsSource interface {
	Load() ([]models.Holding, error)
}

// ValuationService turns holdings plus live quotes into per-stock, per-account
// and whole-portfolio aggregates. It owns no persisted state: every call
// re-reads holdings and re-fetches quotes.
type ValuationService struct {
	holdingsRepo HoldingsSource
	quotes       QuoteClient
}

func NewValuationService(holdingsRepo HoldingsSource, quotes QuoteClient) *ValuationService {
	return &ValuationService{holdingsRepo: holdingsRepo, quotes: quotes}
}

// fetchQuotes fetches each distinct symbol exactly once, concurrently. The
// aggregation below reads the finished map in deterministic order, so results
// do not depend on fetch completion order.
func (s *ValuationService) fetchQuotes(holdings []models.Holding) map[string]models.QuoteResult {
	seen := make(map[string]bool)
	var symbols []string
	for _, h := range holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			symbols = append(symbols, h.Symbol)
		}
	}

	results := make(map[string]models.QuoteResult, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			result := s.quotes.Fetch(symbol)
			mu.Lock()
			results[symbol] = result
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return results
}

// accountNames returns the distinct account names in lexicographic order.
// Accounts exist only as groupings of holdings, so an account with no holdings
// never appears.
func accountNames(holdings []models.Holding) []string {
	seen := make(map[string]bool)
	var names []string
	for _, h := range holdings {
		if !seen[h.Account] {
			seen[h.Account] = true
			names = append(names, h.Account)
		}
	}
	sort.Strings(names)
	return names
}

// valueAccount builds the stock rows and totals for one account from the
// already-fetched quote map. Unpriced holdings become error rows: counted in
// StockCount, excluded from both sums.
func valueAccount(account string, holdings []models.Holding, quotes map[string]models.QuoteResult) ([]models.StockValuation, models.AccountValuation) {
	var stocks []models.StockValuation
	valuation := models.AccountValuation{Account: account}

	for _, h := range holdings {
		if h.Account != account {
			continue
		}
		valuation.StockCount++

		result := quotes[h.Symbol]
		if !result.Available() {
			stocks = append(stocks, models.StockValuation{
				Symbol:   h.Symbol,
				Quantity: h.Quantity,
				Err:      true,
			})
			continue
		}

		sv := models.StockValuation{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			Price:       result.Quote.Price,
			Change:      result.Quote.Change,
			Value:       round2(h.Quantity * result.Quote.Price),
			ValueChange: round2(h.Quantity * result.Quote.Change),
		}
		stocks = append(stocks, sv)

		valuation.TotalValue = round2(valuation.TotalValue + sv.Value)
		valuation.TotalChange = round2(valuation.TotalChange + sv.ValueChange)
	}

	return stocks, valuation
}

// ComputeAccountValuations returns one valuation per account, accounts sorted
// lexicographically. An account whose holdings are all unpriced still appears,
// with zero totals.
func (s *ValuationService) ComputeAccountValuations() ([]models.AccountValuation, error) {
	holdings, err := s.holdingsRepo.Load()
	if err != nil {
		return nil, err
	}
	return s.valuationsFor(holdings), nil
}

func (s *ValuationService) valuationsFor(holdings []models.Holding) []models.AccountValuation {
	quotes := s.fetchQuotes(holdings)

	var valuations []models.AccountValuation
	for _, account := range accountNames(holdings) {
		_, valuation := valueAccount(account, holdings, quotes)
		valuations = append(valuations, valuation)
	}
	return valuations
}

// ComputeSummary returns every account valuation plus grand totals. The grand
// totals sum already-rounded per-account figures; there is no re-rounding of
// raw per-stock values across accounts.
func (s *ValuationService) ComputeSummary() (models.PortfolioSummary, error) {
	valuations, err := s.ComputeAccountValuations()
	if err != nil {
		return models.PortfolioSummary{}, err
	}

	summary := models.PortfolioSummary{Accounts: valuations}
	for _, v := range valuations {
		summary.TotalValue = round2(summary.TotalValue + v.TotalValue)
		summary.TotalChange = round2(summary.TotalChange + v.TotalChange)
	}
	return summary, nil
}

// AccountStocks returns the per-stock rows for one account, including error
// rows for holdings whose quote was unavailable.
func (s *ValuationService) AccountStocks(account string) ([]models.StockValuation, models.AccountValuation, error) {
	holdings, err := s.holdingsRepo.Load()
	if err != nil {
		return nil, models.AccountValuation{}, err
	}

	quotes := s.fetchQuotes(holdingsForAccount(holdings, account))
	stocks, valuation := valueAccount(account, holdings, quotes)
	return stocks, valuation, nil
}

func holdingsForAccount(holdings []models.Holding, account string) []models.Holding {
	var filtered []models.Holding
	for _, h := range holdings {
		if h.Account == account {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
