package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	"github.com/mamadbah2/smartstore/internal/service/reporting"
)

const reportTimeout = 2 * time.Minute

// Sweeper runs the FIFO check on bins.
type Sweeper interface {
	ListBins() []string
	CheckFifoWarnings(binID string) (models.FifoWarnings, error)
}

// Reporter generates the daily inventory report.
type Reporter interface {
	GenerateDailyReport(ctx context.Context) (models.InventoryReport, error)
}

// Messenger delivers the report summary.
type Messenger interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Options holds the cron specs and where the report summary goes.
type Options struct {
	SweepSchedule  string
	ReportSchedule string
	Location       *time.Location
	ReportTo       string
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	opts      Options
	sweeper   Sweeper
	reporter  Reporter
	messenger Messenger
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. reporter and messenger may be nil,
// which disables the daily report or its delivery.
func NewScheduler(opts Options, sweeper Sweeper, reporter Reporter, messenger Messenger, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	cronLog := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(opts.Location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &Scheduler{
		cron:      c,
		opts:      opts,
		sweeper:   sweeper,
		reporter:  reporter,
		messenger: messenger,
		logger:    logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.SweepSchedule, s.SweepAll); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", s.opts.SweepSchedule, err)
	}

	if s.reporter != nil && s.opts.ReportSchedule != "" {
		if _, err := s.cron.AddFunc(s.opts.ReportSchedule, s.SendDailyReport); err != nil {
			return fmt.Errorf("schedule daily report %q: %w", s.opts.ReportSchedule, err)
		}
	}

	s.logger.Info("starting scheduler",
		zap.String("sweep", s.opts.SweepSchedule),
		zap.String("report", s.opts.ReportSchedule),
		zap.String("location", s.opts.Location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// SweepAll evicts expired stock and raises FIFO warnings in every bin.
func (s *Scheduler) SweepAll() {
	var evicted, today, soon int
	for _, binID := range s.sweeper.ListBins() {
		warnings, err := s.sweeper.CheckFifoWarnings(binID)
		if err != nil {
			s.logger.Warn("fifo check failed", zap.String("bin_id", binID), zap.Error(err))
			continue
		}
		evicted += len(warnings.Expired)
		today += len(warnings.ExpiringToday)
		soon += len(warnings.ExpiringSoon)
	}

	s.logger.Info("expiry sweep finished",
		zap.Int("evicted_lots", evicted),
		zap.Int("expiring_today", today),
		zap.Int("expiring_soon", soon))
}

// SendDailyReport generates the report and sends its summary to the manager.
func (s *Scheduler) SendDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := s.reporter.GenerateDailyReport(ctx)
	if err != nil {
		// Destinations failed but the snapshot itself is still worth sending.
		s.logger.Error("daily report incomplete", zap.Error(err))
	}

	if s.messenger == nil || s.opts.ReportTo == "" {
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.opts.ReportTo,
		Message: reporting.Summary(report),
	}
	if err := s.messenger.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
		return
	}
	s.logger.Info("daily report sent")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
