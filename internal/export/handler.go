package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/jobs"
	"github.com/andresuchitra/duitku/internal/store"
)

// NewJobHandler returns the handler the job queue runs for each snapshot
// export job. It builds the snapshot from the store and uploads it.
func NewJobHandler(st store.Store, up Uploader, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		exportJob, ok := job.(*jobs.ExportSnapshotJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", exportJob.JobID).
			Str("user_id", exportJob.UserID).
			Str("object_name", exportJob.ObjectName).
			Msg("Processing snapshot export job")

		snapshot, err := BuildSnapshot(ctx, st, exportJob.UserID, time.Now())
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", exportJob.JobID).
				Msg("Failed to build snapshot")
			return err
		}

		data, err := snapshot.Marshal()
		if err != nil {
			return err
		}

		if err := up.Upload(ctx, exportJob.ObjectName, data); err != nil {
			log.Error().
				Err(err).
				Str("job_id", exportJob.JobID).
				Str("object_name", exportJob.ObjectName).
				Msg("Failed to upload snapshot")
			return err
		}

		log.Info().
			Str("job_id", exportJob.JobID).
			Str("object_name", exportJob.ObjectName).
			Int("bytes", len(data)).
			Msg("Snapshot export completed")

		return nil
	}
}
