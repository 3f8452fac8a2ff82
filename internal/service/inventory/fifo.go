package inventory

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

type keyedItem struct {
	item models.Item
	days int
}

type segment struct {
	entries []keyedItem
	final   bool
}

// fifoOrder sorts items by days until expiry, soonest first. It is a three-way
// quicksort around the middle element, driven by an explicit stack: each pass
// splits a segment into smaller, equal and larger keys, keeping the relative
// order inside each part, and emits left + middle + right.
func fifoOrder(items []models.Item, now time.Time) []models.Item {
	entries := make([]keyedItem, len(items))
	for i, item := range items {
		entries[i] = keyedItem{item: item, days: item.DaysUntilExpiry(now)}
	}

	out := make([]models.Item, 0, len(items))
	stack := []segment{{entries: entries}}
	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seg.final || len(seg.entries) <= 1 {
			for _, entry := range seg.entries {
				out = append(out, entry.item)
			}
			continue
		}

		pivot := seg.entries[len(seg.entries)/2].days
		var left, middle, right []keyedItem
		for _, entry := range seg.entries {
			switch {
			case entry.days < pivot:
				left = append(left, entry)
			case entry.days > pivot:
				right = append(right, entry)
			default:
				middle = append(middle, entry)
			}
		}

		// Pushed in reverse so the left part is emitted first.
		stack = append(stack,
			segment{entries: right},
			segment{entries: middle, final: true},
			segment{entries: left})
	}

	return out
}

func sortBin(bin *models.Bin, now time.Time) {
	bin.ReplaceItems(fifoOrder(bin.ListItems(), now))
}

// sweepExpired removes every item with no shelf life left and returns what it removed.
func sweepExpired(bin *models.Bin, now time.Time) []models.RemovedItem {
	var removed []models.RemovedItem
	for _, item := range bin.ListItems() {
		if item.DaysUntilExpiry(now) > 0 {
			continue
		}
		if bin.RemoveLot(item.LotID) {
			removed = append(removed, models.RemovedItem{
				LotID:      item.LotID,
				Name:       item.Name,
				Quantity:   item.Quantity,
				ExpiryDate: item.ExpiryDate,
			})
		}
	}
	return removed
}

// AutoRemoveExpired evicts every expired item from the bin and returns the removed set.
// A second call with no time change returns an empty set.
func (e *Engine) AutoRemoveExpired(binID string) ([]models.RemovedItem, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	removed := sweepExpired(slot.bin, e.now())
	status := statusOf(slot.bin)
	slot.mu.Unlock()

	if len(removed) > 0 {
		e.recorder.ObserveBin(status)
	}
	e.reportRemoved(binID, removed)

	return removed, nil
}

// CheckFifoWarnings sweeps expired stock and then flags what expires today and what
// expires within the soon window, alerting each group at its own severity.
func (e *Engine) CheckFifoWarnings(binID string) (models.FifoWarnings, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return models.FifoWarnings{}, err
	}

	warnings := models.FifoWarnings{BinID: binID}

	slot.mu.Lock()
	now := e.now()
	warnings.Expired = sweepExpired(slot.bin, now)
	for _, item := range slot.bin.ListItems() {
		days := item.DaysUntilExpiry(now)
		switch {
		case days <= 0:
			warnings.ExpiringToday = append(warnings.ExpiringToday, item)
		case days <= e.cfg.SoonWindowDays:
			warnings.ExpiringSoon = append(warnings.ExpiringSoon, item)
		}
	}
	status := statusOf(slot.bin)
	slot.mu.Unlock()

	if len(warnings.Expired) > 0 {
		e.recorder.ObserveBin(status)
	}
	e.reportRemoved(binID, warnings.Expired)

	if len(warnings.ExpiringToday) > 0 {
		e.notify(models.Alert{
			Title:    "Expiring Today",
			Message:  fmt.Sprintf("Bin %s: use immediately: %s.", binID, describeItems(warnings.ExpiringToday)),
			Severity: models.SeverityError,
			BinID:    binID,
		})
	}
	if len(warnings.ExpiringSoon) > 0 {
		e.notify(models.Alert{
			Title:    "Expiring Soon",
			Message:  fmt.Sprintf("Bin %s: use first: %s.", binID, describeItems(warnings.ExpiringSoon)),
			Severity: models.SeverityWarning,
			BinID:    binID,
		})
	}

	return warnings, nil
}

func (e *Engine) reportRemoved(binID string, removed []models.RemovedItem) {
	if len(removed) == 0 {
		return
	}

	units := 0
	parts := make([]string, 0, len(removed))
	for _, r := range removed {
		units += r.Quantity
		parts = append(parts, fmt.Sprintf("%s x%d", r.Name, r.Quantity))
	}

	e.recorder.ItemsEvicted(binID, units)
	e.logger.Info("expired items removed",
		zap.String("bin_id", binID),
		zap.Int("lots", len(removed)),
		zap.Int("units", units))
	e.notify(models.Alert{
		Title:    "Expired Items Removed",
		Message:  fmt.Sprintf("Bin %s: removed %s.", binID, strings.Join(parts, ", ")),
		Severity: models.SeverityInfo,
		BinID:    binID,
	})
}

func describeItems(items []models.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d (exp %s)", item.Name, item.Quantity, item.ExpiryDate.Format(models.DateLayout)))
	}
	return strings.Join(parts, ", ")
}
