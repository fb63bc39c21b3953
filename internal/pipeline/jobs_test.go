package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/spendwise/internal/jobs"
	"github.com/dvloznov/spendwise/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otherJob struct{}

func (otherJob) GetID() string             { return "x" }
func (otherJob) GetType() jobs.JobType     { return "other" }
func (otherJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

func TestJobHandler_StoresDashboard(t *testing.T) {
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: &MockFetcher{}})
	handler := pipeline.NewJobHandler(a)

	job := &jobs.AnalyzeJob{JobID: "j1", GCSURI: "gs://bucket/jan.csv"}
	require.NoError(t, handler(context.Background(), job))

	require.NotNil(t, job.Result)
	assert.NotEmpty(t, job.RunID)
	assert.Len(t, job.Result.Transactions, 3)
}

func TestJobHandler_InvalidCSVIsPermanent(t *testing.T) {
	fetcher := &MockFetcher{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			return []byte("Date,Description\n2024-01-01,x\n"), nil
		},
	}
	handler := pipeline.NewJobHandler(pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: fetcher}))

	err := handler(context.Background(), &jobs.AnalyzeJob{GCSURI: "gs://bucket/bad.csv"})

	assert.ErrorIs(t, err, jobs.ErrPermanent)
	assert.Equal(t, "CSV must have exactly 3 columns. Found 2 columns.", err.Error())
}

func TestJobHandler_FetchErrorIsRetryable(t *testing.T) {
	fetcher := &MockFetcher{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			return nil, errors.New("connection reset")
		},
	}
	handler := pipeline.NewJobHandler(pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: fetcher}))

	err := handler(context.Background(), &jobs.AnalyzeJob{GCSURI: "gs://bucket/jan.csv"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, jobs.ErrPermanent)
}

func TestJobHandler_RejectsBadInput(t *testing.T) {
	handler := pipeline.NewJobHandler(pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: &MockFetcher{}}))

	assert.ErrorIs(t, handler(context.Background(), &jobs.AnalyzeJob{GCSURI: "/tmp/jan.csv"}), jobs.ErrPermanent)
	assert.ErrorIs(t, handler(context.Background(), otherJob{}), jobs.ErrPermanent)
}
