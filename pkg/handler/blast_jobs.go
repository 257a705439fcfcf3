package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlastJobStatus represents the lifecycle of a BLAST request.
type BlastJobStatus string

const (
	BlastJobQueued    BlastJobStatus = "queued"
	BlastJobRunning   BlastJobStatus = "running"
	BlastJobCompleted BlastJobStatus = "completed"
	BlastJobFailed    BlastJobStatus = "failed"
)

// BlastJob tracks one remote NCBI search between page views.
type BlastJob struct {
	ID         string
	RID        string
	Program    string
	Database   string
	QueryLabel string
	Status     BlastJobStatus
	Result     string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (j BlastJob) Finished() bool {
	return j.Status == BlastJobCompleted || j.Status == BlastJobFailed
}

// BlastJobManager stores BLAST job states indexed by job ID.
type BlastJobManager struct {
	mu   sync.RWMutex
	jobs map[string]*BlastJob
}

// NewBlastJobManager constructs a job manager with no jobs.
func NewBlastJobManager() *BlastJobManager {
	return &BlastJobManager{
		jobs: make(map[string]*BlastJob),
	}
}

// NewJob registers a queued job.
func (m *BlastJobManager) NewJob(program, database, queryLabel string) BlastJob {
	now := time.Now()
	job := &BlastJob{
		ID:         uuid.NewString(),
		Program:    program,
		Database:   database,
		QueryLabel: queryLabel,
		Status:     BlastJobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return *job
}

// SetRunning records the NCBI request id once the search is accepted.
func (m *BlastJobManager) SetRunning(jobID, rid string) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobRunning
		job.RID = rid
	})
}

// CompleteJob stores the BLAST output and marks the job complete.
func (m *BlastJobManager) CompleteJob(jobID string, result string) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobCompleted
		job.Result = result
	})
}

// FailJob records a failure and attaches a user-facing error message.
func (m *BlastJobManager) FailJob(jobID string, message string) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobFailed
		job.Error = message
	})
}

// GetJob returns a snapshot of the job.
func (m *BlastJobManager) GetJob(jobID string) (BlastJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return BlastJob{}, false
	}
	return *job, true
}

// Prune drops finished jobs older than finishedAge and unfinished jobs not
// updated within staleAge, and reports how many went.
func (m *BlastJobManager) Prune(finishedAge, staleAge time.Duration) int {
	now := time.Now()
	finishedCutoff := now.Add(-finishedAge)
	staleCutoff := now.Add(-staleAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, job := range m.jobs {
		cutoff := staleCutoff
		if job.Finished() {
			cutoff = finishedCutoff
		}
		if job.UpdatedAt.Before(cutoff) {
			delete(m.jobs, id)
			n++
		}
	}
	return n
}

func (m *BlastJobManager) updateJob(jobID string, update func(job *BlastJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}
