package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of an editing job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusLoading   JobStatus = "loading"
	StatusEditing   JobStatus = "editing"
	StatusComparing JobStatus = "comparing"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single manuscript edit.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	instruction string
	fileData    []byte
	cleanData   []byte
	redlineData []byte
	errors      []string
}

// Progress tracks paragraph-level progress.
type Progress struct {
	TotalParagraphs int      `json:"total_paragraphs"`
	ParagraphsDone  int      `json:"paragraphs_done"`
	Edited          int      `json:"edited"`
	Skipped         int      `json:"skipped"`
	Failed          int      `json:"failed"`
	Errors          []string `json:"errors"`
}

func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetParagraphs records per-paragraph progress.
func (j *Job) SetParagraphs(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ParagraphsDone = done
	j.Progress.TotalParagraphs = total
	j.UpdatedAt = time.Now()
}

// SetReport records the outcome counts of the editing pass.
func (j *Job) SetReport(rep Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalParagraphs = rep.Total
	j.Progress.ParagraphsDone = rep.Total
	j.Progress.Edited = rep.Edited
	j.Progress.Skipped = rep.Skipped
	j.Progress.Failed = rep.Failed
	j.errors = append(j.errors, rep.Errors...)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

func (j *Job) SetInstruction(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.instruction = s
}

func (j *Job) Instruction() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.instruction
}

func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

func (j *Job) SetArtifacts(clean, redline []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cleanData = clean
	j.redlineData = redline
	// The upload is no longer needed once the artifacts exist.
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

func (j *Job) Artifacts() (clean, redline []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cleanData, j.redlineData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalParagraphs: j.Progress.TotalParagraphs,
			ParagraphsDone:  j.Progress.ParagraphsDone,
			Edited:          j.Progress.Edited,
			Skipped:         j.Progress.Skipped,
			Failed:          j.Progress.Failed,
			Errors:          errs,
		},
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
