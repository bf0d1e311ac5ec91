package services

import (
	"strings"
	"testing"

	"portfolio-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHoldingsCSV_AcceptsAndNormalizes(t *testing.T) {
	input := "account,symbol,quantity\nacct1, AAPL, 10\n"

	holdings, err := ParseHoldingsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, models.Holding{Account: "acct1", Symbol: "AAPL", Quantity: 10.0}, holdings[0])
}

func TestParseHoldingsCSV_UppercasesSymbol(t *testing.T) {
	input := "account,symbol,quantity\nira,msft,2.5\n"

	holdings, err := ParseHoldingsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "MSFT", holdings[0].Symbol)
	assert.Equal(t, 2.5, holdings[0].Quantity)
}

func TestParseHoldingsCSV_SkipsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"negative quantity", "acct1, AAPL, -5"},
		{"zero quantity", "acct1, AAPL, 0"},
		{"unparsable quantity", "acct1, AAPL, ten"},
		{"missing symbol", "acct1, , 5"},
		{"missing account", " , AAPL, 5"},
		{"short row", "acct1, AAPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "account,symbol,quantity\n" + tt.row + "\nacct2, GOOG, 1\n"

			holdings, err := ParseHoldingsCSV(strings.NewReader(input))
			require.NoError(t, err)
			// Only the trailing valid row survives.
			require.Len(t, holdings, 1)
			assert.Equal(t, "acct2", holdings[0].Account)
		})
	}
}

func TestParseHoldingsCSV_ExtraColumnsIgnored(t *testing.T) {
	input := "note,account,symbol,quantity\nsomething,acct1,IBM,4\n"

	holdings, err := ParseHoldingsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "IBM", holdings[0].Symbol)
}

func TestParseHoldingsCSV_MissingHeaderColumn(t *testing.T) {
	input := "account,ticker,quantity\nacct1,AAPL,10\n"

	_, err := ParseHoldingsCSV(strings.NewReader(input))
	assert.Error(t, err)
}

func TestParseHoldingsCSV_EmptyInput(t *testing.T) {
	_, err := ParseHoldingsCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseHoldingsCSV_HeaderOnly(t *testing.T) {
	holdings, err := ParseHoldingsCSV(strings.NewReader("account,symbol,quantity\n"))
	require.NoError(t, err)
	assert.Empty(t, holdings)
}
