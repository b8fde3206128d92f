package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/sales/engine"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

// ProcessStream drives one job from its chunk stream to a terminal state.
// A closed channel means the caller is done sending and the aggregate
// should be finalized. A cancelled context aborts the job: the partial
// artifact never materializes and the sink receives an error status
// instead of a summary.
func (u *Usecase) ProcessStream(ctx context.Context, jobID string, chunks <-chan entity.ChunkMessage, sink Notifier) error {
	if jobID == "" {
		return pkgerror.NewInvalidInput(errors.New("job id is required"))
	}
	if chunks == nil || sink == nil {
		return pkgerror.NewServer(errors.New("missing stream dependency"))
	}

	startedAt := u.clock.Now()
	if err := u.store.UpdateMeta(ctx, jobID, func(meta *entity.JobMeta) {
		meta.Status = entity.JobStatusProcessing
		meta.StartedAt = startedAt.Unix()
	}); err != nil {
		return normalizeErr(err)
	}

	proc := engine.NewProcessor()
	reporter := engine.NewReporter(u.config.ProgressInterval)
	reporter.Begin(startedAt)

	for {
		select {
		case <-ctx.Done():
			return u.failJob(ctx, jobID, sink, context.Cause(ctx))
		case msg, ok := <-chunks:
			if !ok {
				return u.finishStream(ctx, jobID, proc, reporter, sink, startedAt)
			}

			if err := proc.ProcessChunk(msg); err != nil {
				return u.failJob(ctx, jobID, sink, err)
			}

			if now := u.clock.Now(); reporter.Due(now) {
				status := reporter.Status(proc.Stats(), now)
				if err := sink.Publish(ctx, entity.Notification{JobID: jobID, Progress: &status}); err != nil {
					return u.failJob(ctx, jobID, sink, fmt.Errorf("publish progress: %w", err))
				}
			}
		}
	}
}

func (u *Usecase) finishStream(
	ctx context.Context,
	jobID string,
	proc *engine.Processor,
	reporter *engine.Reporter,
	sink Notifier,
	startedAt time.Time,
) error {
	// The chunk producer cancels before closing the channel, so a closed
	// channel with a dead context is an abort, not a completed stream.
	if ctx.Err() != nil {
		return u.failJob(ctx, jobID, sink, context.Cause(ctx))
	}

	if err := proc.Finish(); err != nil {
		return u.failJob(ctx, jobID, sink, err)
	}

	final := reporter.Final(proc.Stats(), u.clock.Now())
	if err := sink.Publish(ctx, entity.Notification{JobID: jobID, Progress: &final}); err != nil {
		return u.failJob(ctx, jobID, sink, fmt.Errorf("publish progress: %w", err))
	}

	result, err := proc.Finalize()
	if err != nil {
		return u.failJob(ctx, jobID, sink, err)
	}

	summary, err := u.persistResult(ctx, result, startedAt)
	if err != nil {
		return u.failJob(ctx, jobID, sink, err)
	}

	if err := sink.Publish(ctx, entity.Notification{JobID: jobID, Summary: &summary}); err != nil {
		if rmErr := u.storage.Remove(context.WithoutCancel(ctx), summary.ResultFileName); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove unannounced artifact",
				"job_id", jobID, "file", summary.ResultFileName, "error", rmErr)
		}
		return u.failJob(ctx, jobID, sink, fmt.Errorf("publish summary: %w", err))
	}

	if err := u.store.UpdateMeta(ctx, jobID, func(meta *entity.JobMeta) {
		meta.Status = entity.JobStatusComplete
		meta.EndedAt = u.clock.Now().Unix()
		meta.RowsProcessed = summary.RowsProcessed
		meta.MalformedRows = summary.MalformedRows
		meta.ProcessedPercentage = summary.ProcessedPercentage
		meta.ResultFileName = summary.ResultFileName
		meta.ResultFileURL = summary.StorageResultFileURL
		meta.TotalSales = summary.TotalSales
		meta.UniqueDepartments = summary.UniqueDepartments
		meta.ProcessingTimeSeconds = summary.ProcessingTimeSeconds
	}); err != nil {
		return normalizeErr(err)
	}

	return nil
}

func (u *Usecase) persistResult(ctx context.Context, result engine.Result, startedAt time.Time) (entity.ResultSummary, error) {
	name := u.id.Generate() + ".csv"

	var buf bytes.Buffer
	if err := engine.WriteArtifact(&buf, result.Entries); err != nil {
		return entity.ResultSummary{}, fmt.Errorf("render artifact: %w", err)
	}

	url, err := u.storage.Save(ctx, name, buf.Bytes())
	if err != nil {
		return entity.ResultSummary{}, fmt.Errorf("persist artifact: %w", err)
	}

	elapsed := u.clock.Now().Sub(startedAt).Seconds()
	elapsed = math.Round(elapsed*100) / 100

	return entity.ResultSummary{
		ResultFileName:        name,
		RowsProcessed:         result.RowsProcessed,
		MalformedRows:         result.MalformedRows,
		ProcessedPercentage:   100,
		TotalSales:            result.TotalSales,
		UniqueDepartments:     result.UniqueDepartments,
		ProcessingTimeSeconds: elapsed,
		StorageResultFileURL:  url,
	}, nil
}

// failJob drives a job to FAILED. It runs on a detached context because the
// triggering condition is often a cancelled one, and the status write and
// error notification must still land.
func (u *Usecase) failJob(ctx context.Context, jobID string, sink Notifier, cause error) error {
	cctx := context.WithoutCancel(ctx)

	status := entity.ErrorStatus{Message: cause.Error()}
	if err := sink.Publish(cctx, entity.Notification{JobID: jobID, Error: &status}); err != nil {
		slog.WarnContext(cctx, "failed to publish error status", "job_id", jobID, "error", err)
	}

	endedAt := u.clock.Now().Unix()
	if err := u.store.UpdateMeta(cctx, jobID, func(meta *entity.JobMeta) {
		if meta.Status.Terminal() {
			return
		}
		meta.Status = entity.JobStatusFailed
		meta.Err = cause.Error()
		meta.EndedAt = endedAt
	}); err != nil {
		slog.ErrorContext(cctx, "failed to mark job failed", "job_id", jobID, "error", err)
	}

	return cause
}
