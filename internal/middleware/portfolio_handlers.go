package middleware

import (
	"fmt"
	"net/http"

	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/services"

	"github.com/gin-gonic/gin"
)

// HoldingsStore is what the handlers need from the holdings repository.
type HoldingsStore interface {
	Load() ([]models.Holding, error)
	ReplaceAll(holdings []models.Holding) error
}

// SnapshotStore is what the handlers need from the snapshot repository.
type SnapshotStore interface {
	Load() ([]models.Snapshot, error)
}

// PortfolioHandler wires the HTTP surface to the stores and services.
type PortfolioHandler struct {
	holdingsRepo HoldingsStore
	snapshotRepo SnapshotStore
	valuations   *services.ValuationService
	snapshots    *services.SnapshotService
}

func NewPortfolioHandler(holdingsRepo HoldingsStore, snapshotRepo SnapshotStore, valuations *services.ValuationService, snapshots *services.SnapshotService) *PortfolioHandler {
	return &PortfolioHandler{
		holdingsRepo: holdingsRepo,
		snapshotRepo: snapshotRepo,
		valuations:   valuations,
		snapshots:    snapshots,
	}
}

// GetPortfolio renders one of the three views selected by ?view=. The default
// is the account summary.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	view := c.DefaultQuery("view", "accounts")

	switch view {
	case "accounts":
		summary, err := h.valuations.ComputeSummary()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("computing valuations: %v", err)})
			return
		}
		c.JSON(http.StatusOK, summary)

	case "history":
		snapshots, err := h.snapshotRepo.Load()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("loading history: %v", err)})
			return
		}
		if snapshots == nil {
			snapshots = []models.Snapshot{}
		}
		c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})

	case "stocks":
		account := c.Query("account")
		if account == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "the stocks view requires an account parameter"})
			return
		}
		stocks, valuation, err := h.valuations.AccountStocks(account)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("computing valuations: %v", err)})
			return
		}
		if stocks == nil {
			stocks = []models.StockValuation{}
		}
		c.JSON(http.StatusOK, gin.H{
			"account":      valuation.Account,
			"total_value":  valuation.TotalValue,
			"total_change": valuation.TotalChange,
			"stock_count":  valuation.StockCount,
			"stocks":       stocks,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown view %q", view)})
	}
}

// UploadHoldings replaces the stored holdings with the rows of the uploaded
// CSV. Invalid rows are skipped silently; only a missing file or an unusable
// header fails the request.
func (h *PortfolioHandler) UploadHoldings(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a CSV file upload is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("opening upload: %v", err)})
		return
	}
	defer file.Close()

	holdings, err := services.ParseHoldingsCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.holdingsRepo.ReplaceAll(holdings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("storing holdings: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": len(holdings)})
}

// ClearHoldings empties the stored holdings set.
func (h *PortfolioHandler) ClearHoldings(c *gin.Context) {
	if err := h.holdingsRepo.ReplaceAll(nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("clearing holdings: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "holdings cleared"})
}

// TakeSnapshot runs the snapshot procedure synchronously, the same procedure
// the daily timer runs.
func (h *PortfolioHandler) TakeSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.TakeSnapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("taking snapshot: %v", err)})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no holdings stored, snapshot skipped"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
