package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	"github.com/mamadbah2/smartstore/internal/service/inventory"
	"github.com/mamadbah2/smartstore/internal/service/reporting"
)

// InventoryService is the engine surface exposed over HTTP.
type InventoryService interface {
	CreateBin(binID string, maxCapacity int, temperature, humidity float64) error
	AddItemToBin(binID string, item models.Item) error
	RemoveItemFromBin(binID, name string) error
	TakeOutQuantity(binID, name string, qty int) (int, error)
	GetBinContents(binID string) ([]models.Item, error)
	GetBinStatus(binID string) (models.BinStatus, error)
	ListBins() []string
	UpdateBinConditions(binID string, temperature, humidity *float64) error
	CheckBinSafety(binID string) (models.SafetyReport, error)
	CheckAllBinsSafety() []models.SafetyReport
	GetAllSafetyViolations() []models.SafetyViolation
	GetSafetySummary() models.SafetySummary
	AutoRemoveExpired(binID string) ([]models.RemovedItem, error)
	CheckFifoWarnings(binID string) (models.FifoWarnings, error)
	RecommendConditions(itemName string) models.Recommendation
}

// ReportGenerator produces the daily report on demand and reads back the last one stored.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context) (models.InventoryReport, error)
	LatestReport(ctx context.Context) (models.InventoryReport, error)
}

// InventoryHandler serves the bins API.
type InventoryHandler struct {
	svc     InventoryService
	reports ReportGenerator
	logger  *zap.Logger
	now     func() time.Time
}

// NewInventoryHandler constructs the HTTP adapter. reports may be nil.
func NewInventoryHandler(svc InventoryService, reports ReportGenerator, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, reports: reports, logger: logger, now: time.Now}
}

type createBinRequest struct {
	ID          string   `json:"id" binding:"required"`
	MaxCapacity int      `json:"max_capacity"`
	Temperature *float64 `json:"temperature" binding:"required"`
	Humidity    *float64 `json:"humidity" binding:"required"`
}

type addItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Quantity    int      `json:"quantity"`
	Temperature *float64 `json:"temperature" binding:"required"`
	Humidity    *float64 `json:"humidity" binding:"required"`
	ExpiryDate  string   `json:"expiry_date" binding:"required"`
}

type withdrawRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity"`
}

type conditionsRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// ListBins returns the status of every bin.
func (h *InventoryHandler) ListBins(c *gin.Context) {
	ids := h.svc.ListBins()
	statuses := make([]models.BinStatus, 0, len(ids))
	for _, id := range ids {
		status, err := h.svc.GetBinStatus(id)
		if err != nil {
			continue
		}
		statuses = append(statuses, status)
	}
	c.JSON(http.StatusOK, gin.H{"bins": statuses})
}

// CreateBin registers a bin.
func (h *InventoryHandler) CreateBin(c *gin.Context) {
	var req createBinRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.CreateBin(req.ID, req.MaxCapacity, *req.Temperature, *req.Humidity); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondStatus(c, http.StatusCreated, req.ID)
}

// GetBin returns one bin's status.
func (h *InventoryHandler) GetBin(c *gin.Context) {
	h.respondStatus(c, http.StatusOK, c.Param("id"))
}

// ListItems returns a bin's items in FIFO order.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.svc.GetBinContents(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddItem stores a new lot in the bin.
func (h *InventoryHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := models.NewItem(req.Name, req.Quantity, *req.Temperature, *req.Humidity, req.ExpiryDate, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	binID := c.Param("id")
	if err := h.svc.AddItemToBin(binID, item); err != nil {
		h.writeError(c, err)
		return
	}

	status, err := h.svc.GetBinStatus(binID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item, "status": status})
}

// RemoveItem drops the first item with the exact name.
func (h *InventoryHandler) RemoveItem(c *gin.Context) {
	if err := h.svc.RemoveItemFromBin(c.Param("id"), c.Param("name")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Withdraw takes units out of the oldest matching lot.
func (h *InventoryHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if !h.bind(c, &req) {
		return
	}

	binID := c.Param("id")
	taken, err := h.svc.TakeOutQuantity(binID, req.Name, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status, err := h.svc.GetBinStatus(binID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requested": req.Quantity, "taken": taken, "status": status})
}

// UpdateConditions changes the bin set-point; omitted fields keep their value.
func (h *InventoryHandler) UpdateConditions(c *gin.Context) {
	var req conditionsRequest
	if !h.bind(c, &req) {
		return
	}

	binID := c.Param("id")
	if err := h.svc.UpdateBinConditions(binID, req.Temperature, req.Humidity); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondStatus(c, http.StatusOK, binID)
}

// BinSafety evaluates one bin.
func (h *InventoryHandler) BinSafety(c *gin.Context) {
	report, err := h.svc.CheckBinSafety(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Sweep evicts expired items from the bin.
func (h *InventoryHandler) Sweep(c *gin.Context) {
	removed, err := h.svc.AutoRemoveExpired(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if removed == nil {
		removed = []models.RemovedItem{}
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Warnings runs the FIFO check on the bin.
func (h *InventoryHandler) Warnings(c *gin.Context) {
	warnings, err := h.svc.CheckFifoWarnings(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, warnings)
}

// AllSafety evaluates every bin.
func (h *InventoryHandler) AllSafety(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bins": h.svc.CheckAllBinsSafety()})
}

// Violations lists every threshold breach.
func (h *InventoryHandler) Violations(c *gin.Context) {
	violations := h.svc.GetAllSafetyViolations()
	if violations == nil {
		violations = []models.SafetyViolation{}
	}
	c.JSON(http.StatusOK, gin.H{"violations": violations})
}

// SafetySummary aggregates safe and unsafe bin counts.
func (h *InventoryHandler) SafetySummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetSafetySummary())
}

// Recommend returns storage conditions for an item type.
func (h *InventoryHandler) Recommend(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.RecommendConditions(c.Param("name")))
}

// DailyReport generates and stores the daily report immediately.
func (h *InventoryHandler) DailyReport(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reporting disabled"})
		return
	}

	report, err := h.reports.GenerateDailyReport(c.Request.Context())
	if err != nil {
		h.logger.Warn("daily report partially stored", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"report": report, "warning": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// LatestReport returns the most recently stored daily report.
func (h *InventoryHandler) LatestReport(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reporting disabled"})
		return
	}

	report, err := h.reports.LatestReport(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *InventoryHandler) respondStatus(c *gin.Context, code int, binID string) {
	status, err := h.svc.GetBinStatus(binID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(code, status)
}

func (h *InventoryHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *InventoryHandler) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("inventory request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrUnknownBin),
		errors.Is(err, inventory.ErrItemNotFound),
		errors.Is(err, models.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, reporting.ErrNoReportStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, inventory.ErrDuplicateBin), errors.Is(err, inventory.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrUnsafeEnvironment),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidDateFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
