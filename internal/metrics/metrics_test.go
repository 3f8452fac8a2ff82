package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

func TestRecorderTracksBinActivity(t *testing.T) {
	r := NewRecorder()

	r.ObserveBin(models.BinStatus{BinID: "A", CurrentCapacity: 40, MaxCapacity: 100, ItemCount: 3})
	r.ObserveBin(models.BinStatus{BinID: "A", CurrentCapacity: 25, MaxCapacity: 100, ItemCount: 2})
	r.ItemsEvicted("A", 10)
	r.UnitsWithdrawn("A", 5)
	r.UnitsWithdrawn("A", 2)
	r.AddRejected("A", "capacity")

	assert.Equal(t, 25.0, testutil.ToFloat64(r.binUnits.WithLabelValues("A")))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.binCapacity.WithLabelValues("A")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.binLots.WithLabelValues("A")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.evictedUnits.WithLabelValues("A")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.withdrawn.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.addRejections.WithLabelValues("A", "capacity")))
}

func TestHandlerExposesInventorySeries(t *testing.T) {
	r := NewRecorder()
	r.ObserveBin(models.BinStatus{BinID: "cold-1", CurrentCapacity: 7, MaxCapacity: 50, ItemCount: 1})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `smartstore_bin_units{bin="cold-1"} 7`)
}

func TestRegistryGathersInventoryAndRuntimeSeries(t *testing.T) {
	r := NewRecorder()
	r.ObserveBin(models.BinStatus{BinID: "A", CurrentCapacity: 1, MaxCapacity: 10, ItemCount: 1})
	r.ObserveBin(models.BinStatus{BinID: "B", CurrentCapacity: 2, MaxCapacity: 10, ItemCount: 1})

	count, err := testutil.GatherAndCount(r.Registry(), "smartstore_bin_units")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}
