// Background refresh: keeps the library list and the current catalog in
// step with the server while the daemon runs.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/catalog"
	"github.com/vrsandeep/truphotos-go/internal/session"
)

// EngineSource hands out the engine for the current selection, or nil when
// no library is selected. The api server implements this.
type EngineSource interface {
	Engine() *catalog.Engine
}

// StartRefresh schedules a periodic refresh of libraries and catalog.
// interval is in minutes; 0 disables scheduling. The returned scheduler is
// already running.
func StartRefresh(manager *session.Manager, engines EngineSource, interval int, log zerolog.Logger) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	log = log.With().Str("component", "jobs").Logger()
	if interval == 0 {
		log.Info().Msg("Refresh interval is 0, scheduled refresh is disabled")
		s.StartAsync()
		return s
	}

	log.Info().Int("minutes", interval).Msg("Scheduling periodic refresh")
	_, err := s.Every(interval).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if manager.State() == session.StateUnauthenticated {
			return
		}
		if err := manager.RefreshLibraries(ctx); err != nil {
			log.Warn().Err(err).Msg("Scheduled library refresh failed")
		}
		if engine := engines.Engine(); engine != nil {
			if err := engine.LoadInitial(ctx); err != nil {
				log.Warn().Err(err).Msg("Scheduled catalog refresh failed")
			}
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Error scheduling refresh job")
	}

	s.StartAsync()
	return s
}
