package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

const namespace = "smartstore"

// Recorder exports engine activity as Prometheus collectors. It satisfies
// inventory.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	binUnits      *prometheus.GaugeVec
	binCapacity   *prometheus.GaugeVec
	binLots       *prometheus.GaugeVec
	evictedUnits  *prometheus.CounterVec
	withdrawn     *prometheus.CounterVec
	addRejections *prometheus.CounterVec
}

// NewRecorder registers the inventory collectors on a private registry, along
// with the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		binUnits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bin_units",
			Help:      "Units currently stored in a bin.",
		}, []string{"bin"}),
		binCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bin_max_capacity_units",
			Help:      "Maximum units a bin can hold.",
		}, []string{"bin"}),
		binLots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bin_lots",
			Help:      "Item records currently stored in a bin.",
		}, []string{"bin"}),
		evictedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_units_evicted_total",
			Help:      "Units removed because they reached their expiry date.",
		}, []string{"bin"}),
		withdrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_withdrawn_total",
			Help:      "Units taken out of a bin.",
		}, []string{"bin"}),
		addRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "add_rejections_total",
			Help:      "Item additions refused by the engine.",
		}, []string{"bin", "reason"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.binUnits,
		r.binCapacity,
		r.binLots,
		r.evictedUnits,
		r.withdrawn,
		r.addRejections,
	)
	return r
}

// ObserveBin records the bin's current units, capacity and lot count.
func (r *Recorder) ObserveBin(status models.BinStatus) {
	r.binUnits.WithLabelValues(status.BinID).Set(float64(status.CurrentCapacity))
	r.binCapacity.WithLabelValues(status.BinID).Set(float64(status.MaxCapacity))
	r.binLots.WithLabelValues(status.BinID).Set(float64(status.ItemCount))
}

// ItemsEvicted counts units removed because they expired.
func (r *Recorder) ItemsEvicted(binID string, units int) {
	r.evictedUnits.WithLabelValues(binID).Add(float64(units))
}

// UnitsWithdrawn counts units taken out of a bin.
func (r *Recorder) UnitsWithdrawn(binID string, units int) {
	r.withdrawn.WithLabelValues(binID).Add(float64(units))
}

// AddRejected counts refused additions by reason.
func (r *Recorder) AddRejected(binID, reason string) {
	r.addRejections.WithLabelValues(binID, reason).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
