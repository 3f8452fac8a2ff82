package inventory

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

func assertFIFO(t *testing.T, items []models.Item) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].DaysUntilExpiry(testNow), items[i].DaysUntilExpiry(testNow),
			"items %d and %d out of FIFO order", i-1, i)
	}
}

func TestFifoOrderIsStableOnTies(t *testing.T) {
	a := itemIn(t, "A", 1, 3)
	b := itemIn(t, "B", 1, 1)
	c := itemIn(t, "C", 1, 3)
	d := itemIn(t, "D", 1, 1)
	e := itemIn(t, "E", 1, 2)

	got := fifoOrder([]models.Item{a, b, c, d, e}, testNow)

	names := make([]string, 0, len(got))
	for _, item := range got {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, names)
}

func TestFifoOrderHandlesLargeSortedInput(t *testing.T) {
	items := make([]models.Item, 0, 5000)
	for i := 0; i < 5000; i++ {
		items = append(items, itemIn(t, "Carrot", 1, 5000-i))
	}

	got := fifoOrder(items, testNow)
	require.Len(t, got, len(items))
	assertFIFO(t, got)
}

func TestFifoOrderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := make([]models.Item, 0, 300)
	for i := 0; i < 300; i++ {
		items = append(items, itemIn(t, "Onion", 1, rng.Intn(40)-5))
	}

	got := fifoOrder(items, testNow)
	require.Len(t, got, len(items))
	assertFIFO(t, got)
	assert.Empty(t, fifoOrder(nil, testNow))
}

func TestAutoRemoveExpiredIsIdempotent(t *testing.T) {
	engine, sink := newTestEngine(t)
	require.NoError(t, engine.CreateBin("A", 100, 4, 90))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Carrot", 4, 1)))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Onion", 2, 3)))

	// A day passes: the carrot lot reaches its expiry date.
	engine.now = func() time.Time { return testNow.AddDate(0, 0, 1) }

	removed, err := engine.AutoRemoveExpired("A")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "Carrot", removed[0].Name)
	assert.Equal(t, 4, removed[0].Quantity)
	assert.Contains(t, sink.titles(), "Expired Items Removed")

	removed, err = engine.AutoRemoveExpired("A")
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = engine.AutoRemoveExpired("missing")
	assert.True(t, errors.Is(err, ErrUnknownBin))
}

func TestCheckFifoWarnings(t *testing.T) {
	engine, sink := newTestEngine(t)
	require.NoError(t, engine.CreateBin("A", 100, 4, 90))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Lettuce", 2, 1)))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Spinach", 3, 3)))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Carrot", 4, 4)))
	require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Onion", 5, 30)))

	engine.now = func() time.Time { return testNow.AddDate(0, 0, 1) }

	warnings, err := engine.CheckFifoWarnings("A")
	require.NoError(t, err)

	require.Len(t, warnings.Expired, 1)
	assert.Equal(t, "Lettuce", warnings.Expired[0].Name)
	assert.Empty(t, warnings.ExpiringToday)
	require.Len(t, warnings.ExpiringSoon, 1)
	assert.Equal(t, "Spinach", warnings.ExpiringSoon[0].Name)

	severities := map[string]models.Severity{}
	for _, a := range sink.alerts {
		severities[a.Title] = a.Severity
	}
	assert.Equal(t, models.SeverityInfo, severities["Expired Items Removed"])
	assert.Equal(t, models.SeverityWarning, severities["Expiring Soon"])
	assert.NotContains(t, severities, "Expiring Today")

	status, err := engine.GetBinStatus("A")
	require.NoError(t, err)
	assert.Equal(t, 12, status.CurrentCapacity)
}

func TestMutationsKeepFIFOOrder(t *testing.T) {
	engine, _ := newTestEngine(t)
	require.NoError(t, engine.CreateBin("A", 1000, 4, 90))

	for i, days := range []int{9, 2, 7, 2, 5, 1, 8} {
		require.NoError(t, engine.AddItemToBin("A", itemIn(t, "Carrot", 10+i, days)))
		items, err := engine.GetBinContents("A")
		require.NoError(t, err)
		assertFIFO(t, items)
	}

	_, err := engine.TakeOutQuantity("A", "Carrot", 25)
	require.NoError(t, err)
	items, err := engine.GetBinContents("A")
	require.NoError(t, err)
	assertFIFO(t, items)
	assertCapacityInvariant(t, engine)
}
