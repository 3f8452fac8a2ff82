package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	"github.com/mamadbah2/smartstore/internal/service/inventory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	engine := inventory.NewEngine(inventory.DefaultConfig(), nil, nil, nil)
	return NewService(engine, nil)
}

func run(t *testing.T, s *Service, text string) (string, error) {
	t.Helper()
	return s.HandleCommand(context.Background(), models.ParseCommand(text), "224600000000")
}

func inDays(n int) string {
	return time.Now().AddDate(0, 0, n).Format(models.DateLayout)
}

func TestCreateAddShowTake(t *testing.T) {
	s := newTestService(t)

	reply, err := run(t, s, "/create A 100 10 80")
	require.NoError(t, err)
	assert.Equal(t, "Bin A created: 100 units at 10.0°C / 80.0%.", reply)

	reply, err = run(t, s, fmt.Sprintf("/add A Bell_Pepper 30 8 90 %s", inDays(10)))
	require.NoError(t, err)
	assert.Contains(t, reply, "Added 30 Bell Pepper to bin A")
	assert.Contains(t, reply, "30/100 units used")

	_, err = run(t, s, fmt.Sprintf("/add A Tomato 20 12 85 %s", inDays(3)))
	require.NoError(t, err)

	reply, err = run(t, s, "/show A")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Bin A (oldest first):\n1. Tomato x20, expires %s (3 days left)\n2. Bell Pepper x30, expires %s (10 days left)",
		inDays(3), inDays(10)), reply)

	reply, err = run(t, s, "/take A tomato 25")
	require.NoError(t, err)
	assert.Equal(t, "Took 20 tomato from bin A. Only 20 were left in the oldest lot.", reply)

	reply, err = run(t, s, "/status A")
	require.NoError(t, err)
	assert.Equal(t, "Bin A: 30/100 units used, 70 free, 1 lots.", reply)

	reply, err = run(t, s, "/remove A Bell_Pepper")
	require.NoError(t, err)
	assert.Equal(t, "Removed Bell Pepper from bin A.", reply)

	reply, err = run(t, s, "/show A")
	require.NoError(t, err)
	assert.Equal(t, "Bin A is empty.", reply)
}

func TestConditionsKeepsUnspecifiedReading(t *testing.T) {
	s := newTestService(t)
	_, err := run(t, s, "/create cold 50 4 90")
	require.NoError(t, err)

	reply, err := run(t, s, "/conditions cold 2 -")
	require.NoError(t, err)
	assert.Equal(t, "Bin cold now at 2.0°C / 90.0%.", reply)

	_, err = run(t, s, "/conditions cold 40 -")
	assert.True(t, errors.Is(err, inventory.ErrUnsafeEnvironment))
}

func TestSafetyAndBins(t *testing.T) {
	s := newTestService(t)

	reply, err := run(t, s, "/bins")
	require.NoError(t, err)
	assert.Equal(t, "No bins yet. Create one with /create.", reply)

	_, err = run(t, s, "/create B 10 5 90")
	require.NoError(t, err)
	_, err = run(t, s, "/create A 10 5 90")
	require.NoError(t, err)

	reply, err = run(t, s, "/bins")
	require.NoError(t, err)
	assert.Equal(t, "Bins: A, B", reply)

	reply, err = run(t, s, "/safety")
	require.NoError(t, err)
	assert.Equal(t, "2/2 bins safe (100%).", reply)

	reply, err = run(t, s, "/safety A")
	require.NoError(t, err)
	assert.Equal(t, "Bin A is safe: 5.0°C (ok), 90.0% humidity (ok).", reply)
}

func TestRecommend(t *testing.T) {
	s := newTestService(t)

	reply, err := run(t, s, "/recommend Tomato")
	require.NoError(t, err)
	assert.Equal(t, "Tomato: store at 12.0°C, 85.0% humidity, about 7.0 days shelf life (known profile).", reply)

	reply, err = run(t, s, "/recommend xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz: store at 4.0°C, 90.0% humidity, about 14.0 days shelf life (default profile).", reply)
}

func TestHandleCommandErrors(t *testing.T) {
	s := newTestService(t)
	_, err := run(t, s, "/create A 10 5 90")
	require.NoError(t, err)

	tests := []struct {
		text string
		want error
	}{
		{text: "hello there", want: ErrUnsupportedCommand},
		{text: "/create A ten 5 90", want: ErrInvalidArguments},
		{text: "/create A 10 5 90", want: inventory.ErrDuplicateBin},
		{text: "/create Z 10 30 90", want: inventory.ErrUnsafeEnvironment},
		{text: "/add A Tomato 5 12 85 19-10-2026", want: models.ErrInvalidDateFormat},
		{text: fmt.Sprintf("/add A Tomato 50 12 85 %s", inDays(5)), want: inventory.ErrCapacityExceeded},
		{text: fmt.Sprintf("/add Q Tomato 5 12 85 %s", inDays(5)), want: inventory.ErrUnknownBin},
		{text: "/take A Onion 1", want: inventory.ErrItemNotFound},
		{text: "/take A Onion 0", want: inventory.ErrInvalidQuantity},
		{text: "/show", want: ErrInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := run(t, s, tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.NotEmpty(t, DescribeError(err))
		})
	}
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "No such item in that bin.", DescribeError(fmt.Errorf("%w: x", inventory.ErrItemNotFound)))
	assert.Equal(t, "Invalid arguments: usage /show <bin>", DescribeError(fmt.Errorf("%w: usage /show <bin>", ErrInvalidArguments)))
	assert.Equal(t, "Something went wrong, please try again.", DescribeError(errors.New("boom")))
}
