package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// Inventory is the read side of the engine the reports are built from.
type Inventory interface {
	ListBins() []string
	GetBinStatus(binID string) (models.BinStatus, error)
	GetSafetySummary() models.SafetySummary
	GetAllSafetyViolations() []models.SafetyViolation
}

// ErrNoReportStore indicates reports are not persisted, so none can be read back.
var ErrNoReportStore = errors.New("report store not configured")

// ReportStore persists full report documents.
type ReportStore interface {
	SaveInventoryReport(ctx context.Context, report models.InventoryReport) error
	LatestInventoryReport(ctx context.Context) (models.InventoryReport, error)
}

// RowWriter appends tabular rows to a sheet range.
type RowWriter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Service produces daily inventory reports and fans them out to the configured stores.
type Service struct {
	inventory  Inventory
	store      ReportStore
	sheet      RowWriter
	sheetRange string
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a reporting service. store and sheet may be nil.
func NewService(inv Inventory, store ReportStore, sheet RowWriter, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory:  inv,
		store:      store,
		sheet:      sheet,
		sheetRange: sheetRange,
		logger:     logger,
		now:        time.Now,
	}
}

// BuildReport snapshots every bin along with the safety picture.
func (s *Service) BuildReport() models.InventoryReport {
	now := s.now().UTC()
	report := models.InventoryReport{
		Date:      models.DateOf(now),
		CreatedAt: now,
	}

	for _, binID := range s.inventory.ListBins() {
		status, err := s.inventory.GetBinStatus(binID)
		if err != nil {
			// Removed between listing and reading.
			s.logger.Debug("skip bin in report", zap.String("bin_id", binID), zap.Error(err))
			continue
		}
		report.Bins = append(report.Bins, status)
		report.TotalUnits += status.CurrentCapacity
	}

	report.Safety = s.inventory.GetSafetySummary()
	report.Violations = s.inventory.GetAllSafetyViolations()
	return report
}

// GenerateDailyReport builds the report and writes it to every configured destination.
// A failing destination is logged and does not stop the others; the first failure
// is returned alongside the report.
func (s *Service) GenerateDailyReport(ctx context.Context) (models.InventoryReport, error) {
	report := s.BuildReport()
	var firstErr error

	if s.store != nil {
		if err := s.store.SaveInventoryReport(ctx, report); err != nil {
			s.logger.Error("failed to store inventory report", zap.Error(err))
			firstErr = fmt.Errorf("store report: %w", err)
		}
	}

	if s.sheet != nil {
		if err := s.sheet.AppendRows(ctx, s.sheetRange, sheetRows(report)); err != nil {
			s.logger.Error("failed to append report rows", zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("append report rows: %w", err)
			}
		}
	}

	s.logger.Info("daily report generated",
		zap.Int("bins", len(report.Bins)),
		zap.Int("total_units", report.TotalUnits),
		zap.Int("unsafe_bins", report.Safety.UnsafeBins))
	return report, firstErr
}

// LatestReport returns the most recently stored report.
func (s *Service) LatestReport(ctx context.Context) (models.InventoryReport, error) {
	if s.store == nil {
		return models.InventoryReport{}, ErrNoReportStore
	}
	return s.store.LatestInventoryReport(ctx)
}

// Summary renders a report as a short chat message.
func Summary(report models.InventoryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory report %s\n", report.Date.Format(models.DateLayout))
	if len(report.Bins) == 0 {
		b.WriteString("No bins registered.")
		return b.String()
	}

	fmt.Fprintf(&b, "%d units across %d bins, %d/%d bins safe.", report.TotalUnits, len(report.Bins),
		report.Safety.SafeBins, report.Safety.TotalBins)
	for _, bin := range report.Bins {
		fmt.Fprintf(&b, "\n- %s: %d/%d units, %d lots", bin.BinID, bin.CurrentCapacity, bin.MaxCapacity, bin.ItemCount)
		if bin.AtCapacity {
			b.WriteString(" (full)")
		}
	}
	for _, v := range report.Violations {
		for _, breach := range v.Violations {
			fmt.Fprintf(&b, "\n! %s %s %.1f above limit", v.BinID, breach.Kind, breach.Excess)
		}
	}
	return b.String()
}

func sheetRows(report models.InventoryReport) [][]interface{} {
	date := report.Date.Format(models.DateLayout)
	rows := make([][]interface{}, 0, len(report.Bins))
	for _, bin := range report.Bins {
		rows = append(rows, []interface{}{
			date,
			bin.BinID,
			bin.CurrentCapacity,
			bin.MaxCapacity,
			bin.AvailableCapacity,
			bin.ItemCount,
			bin.Temperature,
			bin.Humidity,
		})
	}
	return rows
}
