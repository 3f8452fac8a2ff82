package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// ErrQueueFull indicates an alert was dropped because the delivery queue is saturated.
var ErrQueueFull = errors.New("alert queue full")

// ErrClosed indicates the dispatcher no longer accepts alerts.
var ErrClosed = errors.New("alert dispatcher closed")

const deliveryTimeout = 10 * time.Second

// Sink delivers one alert to a destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, alert models.Alert) error
}

// Dispatcher queues alerts and fans them out to every sink from a single worker,
// so producers never wait on delivery.
type Dispatcher struct {
	sinks  []Sink
	queue  chan models.Alert
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(queueSize int, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan models.Alert, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

// Notify enqueues the alert without blocking.
func (d *Dispatcher) Notify(alert models.Alert) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- alert:
		return nil
	default:
		d.logger.Warn("alert dropped", zap.String("title", alert.Title), zap.String("severity", string(alert.Severity)))
		return ErrQueueFull
	}
}

// Close stops accepting alerts and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for alert := range d.queue {
		for _, sink := range d.sinks {
			d.deliver(sink, alert)
		}
	}
}

func (d *Dispatcher) deliver(sink Sink, alert models.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("alert sink panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
		}
	}()

	if err := sink.Deliver(ctx, alert); err != nil {
		d.logger.Error("alert delivery failed",
			zap.String("sink", sink.Name()),
			zap.String("title", alert.Title),
			zap.Error(err))
	}
}

// LogSink writes alerts to the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink builds a sink on top of logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Name identifies the sink in logs.
func (s *LogSink) Name() string { return "log" }

// Deliver logs the alert at the level matching its severity.
func (s *LogSink) Deliver(_ context.Context, alert models.Alert) error {
	fields := []zap.Field{
		zap.String("title", alert.Title),
		zap.String("bin_id", alert.BinID),
		zap.Time("at", alert.Timestamp),
	}
	switch alert.Severity {
	case models.SeverityError:
		s.logger.Error(alert.Message, fields...)
	case models.SeverityWarning:
		s.logger.Warn(alert.Message, fields...)
	default:
		s.logger.Info(alert.Message, fields...)
	}
	return nil
}

// FormatText renders an alert as a short chat message.
func FormatText(alert models.Alert) string {
	icon := "ℹ️"
	switch alert.Severity {
	case models.SeverityWarning:
		icon = "⚠️"
	case models.SeverityError:
		icon = "🚨"
	}
	return fmt.Sprintf("%s %s\n%s", icon, alert.Title, alert.Message)
}
