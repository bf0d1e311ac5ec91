package middleware

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-tracker/internal/database"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/repository"
	"portfolio-tracker/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuotes serves fixed quotes; unknown symbols are unavailable.
type stubQuotes struct {
	quotes map[string]models.Quote
}

func (s *stubQuotes) Fetch(symbol string) models.QuoteResult {
	if q, ok := s.quotes[symbol]; ok {
		return models.QuoteResult{Quote: q}
	}
	return models.Unavailable(models.FailureRemoteError)
}

func newTestRouter(t *testing.T, quotes map[string]models.Quote) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateSchema(db))

	holdingsRepo := repository.NewHoldingsRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	valuations := services.NewValuationService(holdingsRepo, &stubQuotes{quotes: quotes})
	snapshots := services.NewSnapshotService(holdingsRepo, snapshotRepo, valuations)

	handler := NewPortfolioHandler(holdingsRepo, snapshotRepo, valuations, snapshots)

	router := gin.New()
	router.GET("/", handler.GetPortfolio)
	router.POST("/upload", handler.UploadHoldings)
	router.POST("/clear", handler.ClearHoldings)
	router.POST("/snapshot", handler.TakeSnapshot)
	return router
}

func uploadCSV(t *testing.T, router *gin.Engine, csv string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "holdings.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadThenAccountsView(t *testing.T) {
	router := newTestRouter(t, map[string]models.Quote{
		"X": {Price: 10, Change: 1},
	})

	w := uploadCSV(t, router, "account,symbol,quantity\nA,X,2\nA,Y,1\nB,X,1\n")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":3`)

	req := httptest.NewRequest(http.MethodGet, "/?view=accounts", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 30.0, summary.TotalValue)
	assert.Equal(t, 3.0, summary.TotalChange)
	require.Len(t, summary.Accounts, 2)
	assert.Equal(t, "A", summary.Accounts[0].Account)
	assert.Equal(t, 2, summary.Accounts[0].StockCount)
}

func TestStocksViewRequiresAccount(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/?view=stocks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStocksViewShowsErrorRows(t *testing.T) {
	router := newTestRouter(t, map[string]models.Quote{
		"X": {Price: 10, Change: 1},
	})
	uploadCSV(t, router, "account,symbol,quantity\nA,X,2\nA,Y,1\n")

	req := httptest.NewRequest(http.MethodGet, "/?view=stocks&account=A", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Account    string                  `json:"account"`
		StockCount int                     `json:"stock_count"`
		Stocks     []models.StockValuation `json:"stocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "A", body.Account)
	assert.Equal(t, 2, body.StockCount)
	require.Len(t, body.Stocks, 2)
	assert.False(t, body.Stocks[0].Err)
	assert.True(t, body.Stocks[1].Err)
}

func TestSnapshotEndpointAndHistoryView(t *testing.T) {
	router := newTestRouter(t, map[string]models.Quote{
		"X": {Price: 10, Change: 1},
	})
	uploadCSV(t, router, "account,symbol,quantity\nA,X,2\n")

	req := httptest.NewRequest(http.MethodPost, "/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, 20.0, snapshot.Accounts["A"])

	req = httptest.NewRequest(http.MethodGet, "/?view=history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Snapshots []models.Snapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Snapshots, 1)
	assert.Equal(t, snapshot.Date, history.Snapshots[0].Date)
}

func TestSnapshotEndpointWithNoHoldings(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "snapshot skipped")
}

func TestClearEmptiesHoldings(t *testing.T) {
	router := newTestRouter(t, map[string]models.Quote{"X": {Price: 1}})
	uploadCSV(t, router, "account,symbol,quantity\nA,X,2\n")

	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 0.0, summary.TotalValue)
	assert.Empty(t, summary.Accounts)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not multipart"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsBadHeader(t *testing.T) {
	router := newTestRouter(t, nil)

	w := uploadCSV(t, router, "foo,bar\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// failingHoldings serves holdings but refuses every write.
type failingHoldings struct {
	holdings []models.Holding
}

func (f *failingHoldings) Load() ([]models.Holding, error) {
	return f.holdings, nil
}

func (f *failingHoldings) ReplaceAll([]models.Holding) error {
	return errors.New("disk full")
}

// failingSnapshotWrites loads an empty history but refuses every write.
type failingSnapshotWrites struct{}

func (f *failingSnapshotWrites) Load() ([]models.Snapshot, error) {
	return nil, nil
}

func (f *failingSnapshotWrites) ReplaceAll([]models.Snapshot) error {
	return errors.New("disk full")
}

func newFailingStoreRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	holdingsRepo := &failingHoldings{holdings: []models.Holding{
		{Account: "A", Symbol: "X", Quantity: 2},
	}}
	snapshotRepo := &failingSnapshotWrites{}
	valuations := services.NewValuationService(holdingsRepo, &stubQuotes{quotes: map[string]models.Quote{
		"X": {Price: 10, Change: 1},
	}})
	snapshots := services.NewSnapshotService(holdingsRepo, snapshotRepo, valuations)

	handler := NewPortfolioHandler(holdingsRepo, snapshotRepo, valuations, snapshots)

	router := gin.New()
	router.POST("/upload", handler.UploadHoldings)
	router.POST("/clear", handler.ClearHoldings)
	router.POST("/snapshot", handler.TakeSnapshot)
	return router
}

func TestUploadReturns500OnStoreWriteFailure(t *testing.T) {
	router := newFailingStoreRouter(t)

	w := uploadCSV(t, router, "account,symbol,quantity\nA,X,2\n")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk full")
}

func TestClearReturns500OnStoreWriteFailure(t *testing.T) {
	router := newFailingStoreRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSnapshotReturns500OnStoreWriteFailure(t *testing.T) {
	router := newFailingStoreRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "taking snapshot")
}

func TestUnknownView(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/?view=pie", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
