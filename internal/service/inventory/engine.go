package inventory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// AlertSink receives structured alerts produced by the engine. Implementations must
// not block; the engine logs and ignores delivery errors.
type AlertSink interface {
	Notify(alert models.Alert) error
}

// Recorder observes engine activity, typically to export metrics.
type Recorder interface {
	ObserveBin(status models.BinStatus)
	ItemsEvicted(binID string, units int)
	UnitsWithdrawn(binID string, units int)
	AddRejected(binID, reason string)
}

type binSlot struct {
	mu  sync.Mutex
	bin *models.Bin
}

// Engine owns every bin and enforces capacity, safety and FIFO rules on them.
// Operations on one bin are serialized; different bins proceed independently.
type Engine struct {
	cfg      Config
	sink     AlertSink
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.RWMutex
	bins map[string]*binSlot
}

// NewEngine constructs an empty engine. sink, recorder and logger may be nil.
func NewEngine(cfg Config, sink AlertSink, recorder Recorder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.SoonWindowDays <= 0 {
		cfg.SoonWindowDays = DefaultSoonWindowDays
	}

	return &Engine{
		cfg:      cfg,
		sink:     sink,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		bins:     make(map[string]*binSlot),
	}
}

// CreateBin registers a new bin. The safety gate runs before the duplicate check.
func (e *Engine) CreateBin(binID string, maxCapacity int, temperature, humidity float64) error {
	if !e.IsEnvironmentSafe(temperature, humidity) {
		err := fmt.Errorf("%w: bin %s requested at %.1f°C / %.1f%%", ErrUnsafeEnvironment, binID, temperature, humidity)
		e.notify(models.Alert{
			Title:    "Unsafe Conditions",
			Message:  describeViolations(e.violations(temperature, humidity)),
			Severity: models.SeverityError,
			BinID:    binID,
		})
		return err
	}

	if maxCapacity <= 0 {
		return fmt.Errorf("%w: max capacity must be positive, got %d", ErrInvalidQuantity, maxCapacity)
	}

	e.mu.Lock()
	if _, exists := e.bins[binID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateBin, binID)
	}
	bin := models.NewBin(binID, maxCapacity, temperature, humidity)
	e.bins[binID] = &binSlot{bin: bin}
	e.mu.Unlock()

	e.recorder.ObserveBin(statusOf(bin))
	e.logger.Info("bin created",
		zap.String("bin_id", binID),
		zap.Int("max_capacity", maxCapacity),
		zap.Float64("temperature", temperature),
		zap.Float64("humidity", humidity))

	return nil
}

// AddItemToBin stores item if the bin has room for its whole quantity, then
// restores FIFO order and sweeps expired stock.
func (e *Engine) AddItemToBin(binID string, item models.Item) error {
	slot, err := e.lookup(binID)
	if err != nil {
		return err
	}

	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, item.Quantity)
	}

	slot.mu.Lock()
	bin := slot.bin
	current := bin.TotalQuantity()
	if current+item.Quantity > bin.MaxCapacity {
		slot.mu.Unlock()

		e.recorder.AddRejected(binID, "capacity")
		e.logger.Warn("add rejected, capacity exceeded",
			zap.String("bin_id", binID),
			zap.String("item", item.Name),
			zap.Int("current", current),
			zap.Int("requested", item.Quantity),
			zap.Int("max_capacity", bin.MaxCapacity))
		e.notify(models.Alert{
			Title: "Capacity Exceeded",
			Message: fmt.Sprintf("Cannot add %d %s to bin %s: %d of %d units used, %d available.",
				item.Quantity, item.Name, binID, current, bin.MaxCapacity, bin.MaxCapacity-current),
			Severity: models.SeverityError,
			BinID:    binID,
		})
		return fmt.Errorf("%w: bin %s holds %d/%d units, cannot add %d", ErrCapacityExceeded, binID, current, bin.MaxCapacity, item.Quantity)
	}

	if item.LotID == "" || hasLot(bin, item.LotID) {
		item.LotID = uuid.NewString()
	}

	now := e.now()
	bin.AddItem(item)
	sortBin(bin, now)
	removed := sweepExpired(bin, now)
	status := statusOf(bin)
	slot.mu.Unlock()

	e.recorder.ObserveBin(status)
	e.logger.Info("item added",
		zap.String("bin_id", binID),
		zap.String("item", item.Name),
		zap.String("lot_id", item.LotID),
		zap.Int("quantity", item.Quantity),
		zap.Int("current_capacity", status.CurrentCapacity))
	e.reportRemoved(binID, removed)

	return nil
}

// RemoveItemFromBin drops the first item whose name matches exactly.
func (e *Engine) RemoveItemFromBin(binID, name string) error {
	slot, err := e.lookup(binID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	if !slot.bin.RemoveItem(name) {
		slot.mu.Unlock()
		return fmt.Errorf("%w: %s in bin %s", ErrItemNotFound, name, binID)
	}
	sortBin(slot.bin, e.now())
	status := statusOf(slot.bin)
	slot.mu.Unlock()

	e.recorder.ObserveBin(status)
	e.logger.Info("item removed", zap.String("bin_id", binID), zap.String("item", name))
	return nil
}

// GetBinContents returns a snapshot of the bin's items in FIFO order.
func (e *Engine) GetBinContents(binID string) ([]models.Item, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.bin.ListItems(), nil
}

// GetBinStatus reports capacity in units along with the record count.
func (e *Engine) GetBinStatus(binID string) (models.BinStatus, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return models.BinStatus{}, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return statusOf(slot.bin), nil
}

// ListBins returns every registered bin identifier in lexical order.
func (e *Engine) ListBins() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.bins))
	for id := range e.bins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TakeOutQuantity withdraws up to qty units from the first FIFO lot whose name
// matches case-insensitively and returns the units actually removed.
func (e *Engine) TakeOutQuantity(binID, name string, qty int) (int, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return 0, err
	}

	if qty <= 0 {
		return 0, fmt.Errorf("%w: withdrawal must be positive, got %d", ErrInvalidQuantity, qty)
	}

	slot.mu.Lock()
	bin := slot.bin
	now := e.now()
	sortBin(bin, now)

	var target *models.Item
	items := bin.ListItems()
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			target = &items[i]
			break
		}
	}
	if target == nil {
		slot.mu.Unlock()
		return 0, fmt.Errorf("%w: %s in bin %s", ErrItemNotFound, name, binID)
	}

	taken := qty
	if qty >= target.Quantity {
		taken = target.Quantity
		bin.RemoveLot(target.LotID)
	} else {
		bin.SetLotQuantity(target.LotID, target.Quantity-qty)
	}

	sortBin(bin, now)
	removed := sweepExpired(bin, now)
	status := statusOf(bin)
	slot.mu.Unlock()

	e.recorder.UnitsWithdrawn(binID, taken)
	e.recorder.ObserveBin(status)
	e.logger.Info("quantity withdrawn",
		zap.String("bin_id", binID),
		zap.String("item", target.Name),
		zap.String("lot_id", target.LotID),
		zap.Int("requested", qty),
		zap.Int("taken", taken))
	e.reportRemoved(binID, removed)

	return taken, nil
}

func hasLot(bin *models.Bin, lotID string) bool {
	for _, item := range bin.ListItems() {
		if item.LotID == lotID {
			return true
		}
	}
	return false
}

func (e *Engine) lookup(binID string) (*binSlot, error) {
	e.mu.RLock()
	slot, ok := e.bins[binID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBin, binID)
	}
	return slot, nil
}

// slots returns every bin slot ordered by bin identifier.
func (e *Engine) slots() []*binSlot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*binSlot, 0, len(e.bins))
	for _, slot := range e.bins {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].bin.ID < out[j].bin.ID })
	return out
}

// notify hands an alert to the sink. Delivery problems never affect the caller.
func (e *Engine) notify(alert models.Alert) {
	if e.sink == nil {
		return
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = e.now()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("alert sink panicked", zap.Any("panic", r), zap.String("title", alert.Title))
		}
	}()

	if err := e.sink.Notify(alert); err != nil {
		e.logger.Error("alert delivery failed", zap.Error(err), zap.String("title", alert.Title))
	}
}

func statusOf(bin *models.Bin) models.BinStatus {
	current := bin.TotalQuantity()
	return models.BinStatus{
		BinID:             bin.ID,
		CurrentCapacity:   current,
		MaxCapacity:       bin.MaxCapacity,
		AvailableCapacity: bin.MaxCapacity - current,
		ItemCount:         bin.Len(),
		AtCapacity:        current >= bin.MaxCapacity,
		Temperature:       bin.Temperature,
		Humidity:          bin.Humidity,
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveBin(models.BinStatus) {}
func (nopRecorder) ItemsEvicted(string, int)    {}
func (nopRecorder) UnitsWithdrawn(string, int)  {}
func (nopRecorder) AddRejected(string, string)  {}
