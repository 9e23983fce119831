package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/v-anushka05/mockmate-backend/internal/metrics"
	"go.uber.org/zap"
)

// NoShowMarker is the slice of the booking store the sweeper needs.
type NoShowMarker interface {
	MarkPastNoShows(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper periodically moves past-dated scheduled bookings to no-show.
// Nothing else in the workflow ever sets that status.
type Sweeper struct {
	bookings NoShowMarker
	cron     *cron.Cron
	spec     string
	logger   *zap.Logger
}

func NewSweeper(bookings NoShowMarker, spec string, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		cron:     cron.New(),
		spec:     spec,
		logger:   logger,
	}
}

// Start registers the cron job and runs one sweep immediately so a
// restart does not leave stale scheduled bookings behind.
func (s *Sweeper) Start(ctx context.Context) error {
	s.sweep(ctx)

	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("No-show sweeper started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the cron scheduler and waits for a running sweep.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("No-show sweeper stopped")
}

func (s *Sweeper) sweep(ctx context.Context) {
	// Bookings dated before today are over; same-day ones may still run.
	// Midnight comes from the calendar date in the server zone, not an
	// epoch truncation, which lands at UTC midnight.
	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	swept, err := s.bookings.MarkPastNoShows(ctx, cutoff)
	if err != nil {
		s.logger.Error("No-show sweep failed", zap.Error(err))
		return
	}

	if swept > 0 {
		metrics.NoShowsSwept.Add(float64(swept))
		s.logger.Info("Swept past bookings to no-show", zap.Int64("count", swept))
	}
}
