package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// ShareJanitor periodically removes expired and exhausted share records.
// Consumption already refuses such shares; the janitor only reclaims space.
type ShareJanitor struct {
	purger   SharePurger
	interval time.Duration
	logger   *logger.Logger
}

func NewShareJanitor(purger SharePurger, interval time.Duration, logger *logger.Logger) *ShareJanitor {
	return &ShareJanitor{
		purger:   purger,
		interval: interval,
		logger:   logger,
	}
}

// Run purges once at start and then on every tick until ctx is done. A
// non-positive interval disables the janitor.
func (j *ShareJanitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Warn().Msg("share janitor disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("share janitor stopped")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *ShareJanitor) purge(ctx context.Context) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Err(err).Msg("purging expired shares failed")
		}
		return
	}
	if n > 0 {
		j.logger.Info().Int64("purged", n).Msg("expired shares purged")
	}
}
