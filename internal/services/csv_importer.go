package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"portfolio-tracker/internal/models"
)

// ParseHoldingsCSV reads an uploaded holdings file. The header row is
// mandatory and must contain the account, symbol and quantity columns. Rows
// that fail validation (missing field, unparsable or non-positive quantity)
// are skipped without failing the upload; symbols are upper-cased and all
// fields trimmed before storage.
func ParseHoldingsCSV(r io.Reader) ([]models.Holding, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	accountCol, ok := columns["account"]
	if !ok {
		return nil, fmt.Errorf("CSV header missing column %q", "account")
	}
	symbolCol, ok := columns["symbol"]
	if !ok {
		return nil, fmt.Errorf("CSV header missing column %q", "symbol")
	}
	quantityCol, ok := columns["quantity"]
	if !ok {
		return nil, fmt.Errorf("CSV header missing column %q", "quantity")
	}

	var holdings []models.Holding
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken row is a bad row like any other.
			skipped++
			continue
		}

		holding, ok := parseRow(record, accountCol, symbolCol, quantityCol)
		if !ok {
			skipped++
			continue
		}
		holdings = append(holdings, holding)
	}

	if skipped > 0 {
		log.Printf("CSV import skipped %d invalid rows", skipped)
	}

	return holdings, nil
}

func parseRow(record []string, accountCol, symbolCol, quantityCol int) (models.Holding, bool) {
	last := accountCol
	if symbolCol > last {
		last = symbolCol
	}
	if quantityCol > last {
		last = quantityCol
	}
	if len(record) <= last {
		return models.Holding{}, false
	}

	account := strings.TrimSpace(record[accountCol])
	symbol := strings.ToUpper(strings.TrimSpace(record[symbolCol]))
	quantityStr := strings.TrimSpace(record[quantityCol])

	if account == "" || symbol == "" || quantityStr == "" {
		return models.Holding{}, false
	}

	quantity, err := strconv.ParseFloat(quantityStr, 64)
	if err != nil || quantity <= 0 {
		return models.Holding{}, false
	}

	return models.Holding{Account: account, Symbol: symbol, Quantity: quantity}, true
}
