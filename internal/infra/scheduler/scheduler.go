package scheduler

import (
	"context"
	"fmt"
	"time"

	"teacher_registry/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SummaryProvider is the part of the registry the reporter reads.
type SummaryProvider interface {
	Summary(ctx context.Context) (app.Summary, error)
}

// RegistryReporter periodically logs how many teachers the registry holds.
type RegistryReporter struct {
	cronEngine *cron.Cron
	registry   SummaryProvider
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
}

func NewRegistryReporter(registry SummaryProvider, baseLogger *logrus.Entry, cronSpec string) *RegistryReporter {
	return &RegistryReporter{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		registry:   registry,
		logger:     baseLogger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		timeout:    30 * time.Second,
	}
}

// Start registers the report job and starts the cron engine.
func (s *RegistryReporter) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.reportJob); err != nil {
		return fmt.Errorf("could not add registry report cron job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Registry reporter started")
	return nil
}

func (s *RegistryReporter) reportJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.Report(ctx); err != nil {
		s.logger.WithError(err).Error("Registry report failed")
	}
}

// Report logs one registry summary.
func (s *RegistryReporter) Report(ctx context.Context) error {
	sum, err := s.registry.Summary(ctx)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"total":    sum.Total,
		"active":   sum.Active,
		"inactive": sum.Inactive,
	}).Info("Registry summary")
	return nil
}

// Stop stops scheduling and waits for a running job to finish.
func (s *RegistryReporter) Stop() {
	s.logger.Info("Stopping registry reporter...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Registry reporter stopped")
}
