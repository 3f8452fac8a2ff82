package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	client "github.com/mamadbah2/smartstore/pkg/clients/whatsapp"
)

type memorySink struct {
	name string
	mu   sync.Mutex
	got  []models.Alert
	err  error
	boom bool
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) Deliver(_ context.Context, alert models.Alert) error {
	if s.boom {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, alert)
	return s.err
}

func TestDispatcherFansOutToEverySink(t *testing.T) {
	failing := &memorySink{name: "failing", err: errors.New("offline")}
	panicking := &memorySink{name: "panicking", boom: true}
	healthy := &memorySink{name: "healthy"}

	d := NewDispatcher(8, nil, failing, panicking, healthy)
	require.NoError(t, d.Notify(models.Alert{Title: "one"}))
	require.NoError(t, d.Notify(models.Alert{Title: "two"}))
	d.Close()

	require.Len(t, healthy.got, 2)
	assert.Equal(t, "one", healthy.got[0].Title)
	assert.Equal(t, "two", healthy.got[1].Title)
	assert.Len(t, failing.got, 2)
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(1, nil)
	d.Close()
	d.Close()

	assert.True(t, errors.Is(d.Notify(models.Alert{Title: "late"}), ErrClosed))
}

type blockingSink struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Deliver(context.Context, models.Alert) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), started: make(chan struct{})}
	d := NewDispatcher(1, nil, sink)

	require.NoError(t, d.Notify(models.Alert{Title: "in flight"}))
	<-sink.started
	require.NoError(t, d.Notify(models.Alert{Title: "queued"}))
	assert.True(t, errors.Is(d.Notify(models.Alert{Title: "dropped"}), ErrQueueFull))

	close(sink.release)
	d.Close()
}

func TestLogSinkUsesSeverityLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))

	for _, sev := range []models.Severity{models.SeverityInfo, models.SeverityWarning, models.SeverityError} {
		require.NoError(t, sink.Deliver(context.Background(), models.Alert{Title: string(sev), Message: "msg", Severity: sev}))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

type fakeWhatsApp struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeWhatsApp) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func TestWhatsAppSinkFiltersBySeverity(t *testing.T) {
	wa := &fakeWhatsApp{}
	sink := NewWhatsAppSink(wa, "224600000000", "")

	ctx := context.Background()
	require.NoError(t, sink.Deliver(ctx, models.Alert{Title: "Expired Items Removed", Severity: models.SeverityInfo}))
	require.NoError(t, sink.Deliver(ctx, models.Alert{Title: "Expiring Soon", Message: "Bin A: use first", Severity: models.SeverityWarning}))

	require.Len(t, wa.sent, 1)
	assert.Equal(t, "224600000000", wa.sent[0].To)
	assert.Equal(t, "⚠️ Expiring Soon\nBin A: use first", wa.sent[0].Body)

	wa.err = errors.New("rate limited")
	assert.Error(t, sink.Deliver(ctx, models.Alert{Title: "x", Severity: models.SeverityError}))
}
