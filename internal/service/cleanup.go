package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// Timeout applied to each individual blob delete during a purge run so one
// slow object cannot stall the whole sweep.
const purgeBlobTimeout = 10 * time.Second

// CleanupService removes cancelled meetings once they age past the retention
// window. Blob deletion is best-effort per file; row deletion happens in one
// transaction at the end of the run.
type CleanupService struct {
	meetings  repository.MeetingRepository
	store     storage.Storage
	tx        repository.TxManager
	retention time.Duration

	purgedMeetings prometheus.Counter
	deletedBlobs   prometheus.Counter
	failedBlobs    prometheus.Counter
}

// NewCleanupService constructs a CleanupService and registers its metrics.
func NewCleanupService(meetings repository.MeetingRepository, store storage.Storage, tx repository.TxManager, retentionDays int, reg prometheus.Registerer) (*CleanupService, error) {
	s := &CleanupService{
		meetings:  meetings,
		store:     store,
		tx:        tx,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		purgedMeetings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_purged_meetings_total",
			Help: "Total number of cancelled meetings removed by the retention job.",
		}),
		deletedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_deleted_blobs_total",
			Help: "Total number of document blobs removed by the retention job.",
		}),
		failedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_failed_blob_deletes_total",
			Help: "Total number of document blob deletions that failed during purge runs.",
		}),
	}
	for _, c := range []prometheus.Counter{s.purgedMeetings, s.deletedBlobs, s.failedBlobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run executes one purge pass. Blob failures are logged and never abort the
// run; only the final row-deletion transaction can fail it.
func (s *CleanupService) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.retention)
	logJSON("info", "cleanup run started", map[string]any{"cutoff": cutoff.Format(time.RFC3339)})

	expired, err := s.meetings.FindCancelledBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find cancelled meetings: %w", err)
	}
	if len(expired) == 0 {
		logJSON("info", "cleanup run finished, nothing to purge", nil)
		return nil
	}

	ids := make([]string, 0, len(expired))
	for i := range expired {
		m := &expired[i]
		for _, doc := range m.Documents {
			if err := s.deleteBlob(ctx, doc.StoragePath); err != nil {
				s.failedBlobs.Inc()
				logJSON("warn", "failed to delete document blob", map[string]any{
					"meeting_id":  m.ID,
					"document_id": doc.ID,
					"key":         doc.StoragePath,
					"error":       err.Error(),
				})
				continue
			}
			s.deletedBlobs.Inc()
		}
		ids = append(ids, m.ID)
	}

	// One transaction for all rows. A meeting deleted out from under the job
	// in the meantime simply affects zero rows.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.meetings.DeleteBatch(ctx, ids)
	})
	if err != nil {
		return fmt.Errorf("delete purged meetings: %w", err)
	}

	s.purgedMeetings.Add(float64(len(ids)))
	logJSON("info", "cleanup run finished", map[string]any{"purged_meetings": len(ids)})
	return nil
}

func (s *CleanupService) deleteBlob(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, purgeBlobTimeout)
	defer cancel()
	return s.store.Delete(ctx, key)
}
