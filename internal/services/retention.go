package services

import (
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/config"
	"queue-system/internal/store"
)

// SweepCompleted deletes completed participants whose service finished
// before the retention window. Runs from cron; deletes are best-effort so
// one bad row never aborts the sweep.
func SweepCompleted(app core.App, cfg *config.Config) {
	cutoff := time.Now().UTC().Add(-cfg.RetentionWindow)

	records, err := app.FindRecordsByFilter(store.CollectionParticipants,
		"state = 'completed' && service_completed_at != '' && service_completed_at < {:cutoff}",
		"service_completed_at", 0, 0,
		dbx.Params{"cutoff": cutoff.Format(dbTimeLayout)})
	if err != nil {
		slog.Error("retention sweep query failed", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	deleted := 0
	for _, record := range records {
		if err := app.Delete(record); err != nil {
			slog.Warn("retention sweep delete failed", "participant", record.Id, "error", err)
			continue
		}
		deleted++
	}
	slog.Info("retention sweep finished", "candidates", len(records), "deleted", deleted)
}
