package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/syllabook/internal/config"
	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/metrics"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("orchestrator stopped")
)

// OutputFilename is the name of the rendered book inside a job directory.
const OutputFilename = "book.docx"

// Orchestrator runs book jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	runner *Runner
	log    *slog.Logger
	cfg    config.Config

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once
	cleanupIn time.Duration

	mu      sync.Mutex // guards stopped and sends on queue
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, client generate.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		runner:    NewRunner(cfg, client, log),
		log:       log,
		cfg:       cfg,
		cleanupIn: 5 * time.Minute,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.runner, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.JobQueueDepth.Set(float64(len(o.queue)))
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cleanupIn)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Info("expired jobs removed", "count", n)
				}
			}
		}
	}()
}

// Stop cancels in-flight jobs and waits for workers to exit. Later calls to
// Submit return ErrStopped.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.stopped = true
		close(o.queue)
		o.mu.Unlock()

		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
	})
}

// SubmitUpload stores an uploaded syllabus in its own job directory under
// DataDir and queues it.
func (o *Orchestrator) SubmitUpload(filename, title string, data []byte) (*Job, error) {
	job := NewJob(filename, title)
	dir := filepath.Join(o.cfg.DataDir, job.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	input := filepath.Join(dir, filename)
	if err := os.WriteFile(input, data, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	job.SetFiles(dir, input, filepath.Join(dir, OutputFilename))

	if err := o.Submit(job); err != nil {
		os.RemoveAll(dir)
		return job, err
	}
	return job, nil
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		metrics.JobQueueDepth.Set(float64(len(o.queue)))
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
