package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/spendwise/internal/gcs"
	"github.com/dvloznov/spendwise/internal/jobs"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/statement"
)

// NewJobHandler returns a jobs.JobHandler that analyzes the CSV named by an
// AnalyzeJob and stores the dashboard on the job. Invalid URIs and invalid
// CSV files are permanent failures; fetch errors are retried.
func NewJobHandler(a *Analyzer) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeJob)
		if !ok {
			return jobs.Permanent(fmt.Errorf("unsupported job type %q", job.GetType()))
		}

		if _, _, err := gcs.ParseURI(analyzeJob.GCSURI); err != nil {
			return jobs.Permanent(err)
		}

		log := logger.FromContext(ctx)
		log.Info().Str("gcs_uri", analyzeJob.GCSURI).Msg("Processing analysis job")

		res, err := a.AnalyzeFromGCS(ctx, analyzeJob.GCSURI)
		if err != nil {
			var ve *statement.ValidationError
			if errors.As(err, &ve) {
				return jobs.Permanent(ve)
			}
			return err
		}

		analyzeJob.RunID = res.RunID
		analyzeJob.Result = &res.Dashboard
		return nil
	}
}
