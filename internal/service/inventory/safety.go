package inventory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// IsEnvironmentSafe reports whether both readings are within the configured thresholds.
func (e *Engine) IsEnvironmentSafe(temperature, humidity float64) bool {
	return temperature <= e.cfg.MaxSafeTemp && humidity <= e.cfg.MaxSafeHumidity
}

// UpdateBinConditions changes a bin's set-point. Nil arguments keep the current value.
// The merged conditions must pass the safety gate or nothing changes.
func (e *Engine) UpdateBinConditions(binID string, temperature, humidity *float64) error {
	slot, err := e.lookup(binID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	bin := slot.bin
	newTemp, newHumidity := bin.Temperature, bin.Humidity
	if temperature != nil {
		newTemp = *temperature
	}
	if humidity != nil {
		newHumidity = *humidity
	}

	if !e.IsEnvironmentSafe(newTemp, newHumidity) {
		slot.mu.Unlock()
		violations := e.violations(newTemp, newHumidity)
		e.logger.Warn("condition update rejected",
			zap.String("bin_id", binID),
			zap.Float64("temperature", newTemp),
			zap.Float64("humidity", newHumidity))
		e.notify(models.Alert{
			Title:    "Unsafe Conditions",
			Message:  fmt.Sprintf("Bin %s: %s", binID, describeViolations(violations)),
			Severity: models.SeverityError,
			BinID:    binID,
		})
		return fmt.Errorf("%w: bin %s at %.1f°C / %.1f%%", ErrUnsafeEnvironment, binID, newTemp, newHumidity)
	}

	bin.SetConditions(newTemp, newHumidity)
	status := statusOf(bin)
	slot.mu.Unlock()

	e.recorder.ObserveBin(status)
	e.logger.Info("bin conditions updated",
		zap.String("bin_id", binID),
		zap.Float64("temperature", newTemp),
		zap.Float64("humidity", newHumidity))
	return nil
}

// CheckBinSafety evaluates one bin against the thresholds without changing it.
func (e *Engine) CheckBinSafety(binID string) (models.SafetyReport, error) {
	slot, err := e.lookup(binID)
	if err != nil {
		return models.SafetyReport{}, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return e.safetyOf(slot.bin), nil
}

// CheckAllBinsSafety evaluates every bin, ordered by bin identifier.
func (e *Engine) CheckAllBinsSafety() []models.SafetyReport {
	slots := e.slots()
	reports := make([]models.SafetyReport, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		reports = append(reports, e.safetyOf(slot.bin))
		slot.mu.Unlock()
	}
	return reports
}

// GetAllSafetyViolations lists, per unsafe bin, each breached threshold and by how much.
func (e *Engine) GetAllSafetyViolations() []models.SafetyViolation {
	var out []models.SafetyViolation
	for _, slot := range e.slots() {
		slot.mu.Lock()
		violations := e.violations(slot.bin.Temperature, slot.bin.Humidity)
		binID := slot.bin.ID
		slot.mu.Unlock()

		if len(violations) > 0 {
			out = append(out, models.SafetyViolation{BinID: binID, Violations: violations})
		}
	}
	return out
}

// GetSafetySummary aggregates bin counts. With no bins the safe percentage is 100.
func (e *Engine) GetSafetySummary() models.SafetySummary {
	reports := e.CheckAllBinsSafety()

	summary := models.SafetySummary{TotalBins: len(reports), SafePercentage: 100}
	for _, r := range reports {
		if r.Safe {
			summary.SafeBins++
		} else {
			summary.UnsafeBins++
		}
	}
	if summary.TotalBins > 0 {
		summary.SafePercentage = float64(summary.SafeBins) / float64(summary.TotalBins) * 100
	}
	return summary
}

func (e *Engine) safetyOf(bin *models.Bin) models.SafetyReport {
	tempSafe := bin.Temperature <= e.cfg.MaxSafeTemp
	humiditySafe := bin.Humidity <= e.cfg.MaxSafeHumidity
	return models.SafetyReport{
		BinID:           bin.ID,
		Temperature:     bin.Temperature,
		Humidity:        bin.Humidity,
		TemperatureSafe: tempSafe,
		HumiditySafe:    humiditySafe,
		Safe:            tempSafe && humiditySafe,
	}
}

func (e *Engine) violations(temperature, humidity float64) []models.Violation {
	var out []models.Violation
	if temperature > e.cfg.MaxSafeTemp {
		out = append(out, models.Violation{
			Kind:      models.ViolationTemperature,
			Value:     temperature,
			Threshold: e.cfg.MaxSafeTemp,
			Excess:    temperature - e.cfg.MaxSafeTemp,
		})
	}
	if humidity > e.cfg.MaxSafeHumidity {
		out = append(out, models.Violation{
			Kind:      models.ViolationHumidity,
			Value:     humidity,
			Threshold: e.cfg.MaxSafeHumidity,
			Excess:    humidity - e.cfg.MaxSafeHumidity,
		})
	}
	return out
}

func describeViolations(violations []models.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s %.1f exceeds %.1f by %.1f", v.Kind, v.Value, v.Threshold, v.Excess))
	}
	return strings.Join(parts, "; ")
}
