package pipeline

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a book job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusGenerating JobStatus = "generating"
	StatusAssembling JobStatus = "assembling"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions happen from s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single syllabus-to-book run.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	dir        string // working directory holding input and output
	inputPath  string
	outputPath string
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalTopics int      `json:"total_topics"`
	TopicsDone  int      `json:"topics_done"`
	Errors      []string `json:"errors"`
}

// NewJob creates a queued job with a fresh id.
func NewJob(filename, title string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs older than the TTL along with their files.
// It returns the number of jobs removed.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	now := time.Now()
	var expired []*Job
	for id, job := range s.jobs {
		job.mu.Lock()
		stale := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if stale {
			delete(s.jobs, id)
			expired = append(expired, job)
		}
	}
	s.mu.Unlock()

	for _, job := range expired {
		if dir := job.Dir(); dir != "" {
			os.RemoveAll(dir)
		}
	}
	return len(expired)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTopicProgress records how many topics are done out of total.
func (j *Job) SetTopicProgress(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalTopics = total
	if done > j.Progress.TopicsDone {
		j.Progress.TopicsDone = done
	}
	j.UpdatedAt = time.Now()
}

// SetFiles records the job's working directory and input/output paths.
func (j *Job) SetFiles(dir, input, output string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dir = dir
	j.inputPath = input
	j.outputPath = output
}

// Dir returns the job's working directory.
func (j *Job) Dir() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dir
}

// InputPath returns the uploaded syllabus location.
func (j *Job) InputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputPath
}

// OutputPath returns where the finished book is written.
func (j *Job) OutputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputPath
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			TotalTopics: j.Progress.TotalTopics,
			TopicsDone:  j.Progress.TopicsDone,
			Errors:      errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
