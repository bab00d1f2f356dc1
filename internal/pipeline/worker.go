package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/syllabus"
)

// Worker processes a single book job.
type Worker struct {
	runner *Runner
	log    *slog.Logger
}

func NewWorker(runner *Runner, log *slog.Logger) *Worker {
	return &Worker{runner: runner, log: log}
}

// Process runs the full pipeline for a job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	snap := job.Snapshot()
	log := w.log.With("job_id", snap.ID, "filename", snap.Filename)

	// Per-job copy so hooks and title never leak between jobs.
	r := *w.runner
	r.log = log
	r.Title = snap.Title
	r.OnPhase = func(p Phase) {
		job.SetStatus(statusForPhase(p), string(p))
	}
	r.Progress = job.SetTopicProgress

	log.Info("job started")
	res, err := r.Run(ctx, job.InputPath(), job.OutputPath())
	if err != nil {
		log.Error("job failed", "phase", failedPhase(err), "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, failedPhase(err))
		return
	}

	job.SetTopicProgress(res.Topics, res.Outline.TopicCount())
	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed", "topics", res.Topics, "duration_ms", res.Duration.Milliseconds())
}

func statusForPhase(p Phase) JobStatus {
	switch p {
	case PhaseExtracting:
		return StatusExtracting
	case PhaseGenerating:
		return StatusGenerating
	default:
		return StatusAssembling
	}
}

func failedPhase(err error) string {
	switch {
	case errors.Is(err, syllabus.ErrExtraction):
		return string(PhaseExtracting)
	case errors.Is(err, generate.ErrGeneration), errors.Is(err, context.Canceled):
		return string(PhaseGenerating)
	default:
		return string(PhaseAssembling)
	}
}
