package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus is the lifecycle state of a background job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobType names the kind of work a job performs
type JobType string

const (
	JobTypeIngestion     JobType = "ingestion"
	JobTypeCleanup       JobType = "cleanup"
	JobTypeWordCloud     JobType = "wordcloud"
	JobTypeSearchReindex JobType = "search_reindex"
	JobTypeRenderRefresh JobType = "render_refresh"
)

// Job tracks one background operation through its lifecycle
type Job struct {
	ID          ulid.ULID  `json:"id"`
	Type        JobType    `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`         // 0-100
	CurrentStep string     `json:"currentStep"`      // Human-readable current step
	TotalSteps  int        `json:"totalSteps"`       // Total number of steps
	Message     string     `json:"message"`          // Status message
	Error       string     `json:"error,omitempty"`  // Error message if failed
	Result      string     `json:"result,omitempty"` // JSON result data
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// jobColumns is the select list shared by every job query.
const jobColumns = `id, type, status, progress, current_step, total_steps, message, error, result,
       created_at, updated_at, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one row in jobColumns order, parsing the stored ULID.
func scanJob(row rowScanner) (Job, error) {
	var job Job
	var idStr string
	err := row.Scan(
		&idStr,
		&job.Type,
		&job.Status,
		&job.Progress,
		&job.CurrentStep,
		&job.TotalSteps,
		&job.Message,
		&job.Error,
		&job.Result,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.ID, err = ulid.Parse(idStr)
	return job, err
}

func (p *PostgresDB) queryJobs(query string, args ...any) ([]Job, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CreateJob creates a new job in the database
func (p *PostgresDB) CreateJob(jobType JobType, message string) (*Job, error) {
	now := time.Now()
	jobID, err := NewULID(now)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        jobID,
		Type:      jobType,
		Status:    JobStatusPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO jobs (id, type, status, progress, current_step, total_steps, message, error, result, created_at, updated_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = p.db.Exec(query,
		job.ID.String(), job.Type, job.Status, job.Progress, job.CurrentStep, job.TotalSteps,
		job.Message, job.Error, job.Result, job.CreatedAt, job.UpdatedAt, job.StartedAt, job.CompletedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJobProgress updates the progress of a job
func (p *PostgresDB) UpdateJobProgress(jobID ulid.ULID, progress int, currentStep string) error {
	_, err := p.db.Exec(
		`UPDATE jobs SET progress = $1, current_step = $2, updated_at = $3 WHERE id = $4`,
		progress, currentStep, time.Now(), jobID.String())
	return err
}

// UpdateJobStatus updates the status of a job
func (p *PostgresDB) UpdateJobStatus(jobID ulid.ULID, status JobStatus, message string) error {
	now := time.Now()

	// nil leaves started_at alone through the COALESCE and nulls
	// completed_at while the job is still live
	var startedAt, completedAt any
	if status == JobStatusRunning {
		startedAt = now
	}
	switch status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		completedAt = now
	}

	_, err := p.db.Exec(
		`UPDATE jobs
		 SET status = $1, message = $2, updated_at = $3, started_at = COALESCE(started_at, $4), completed_at = $5
		 WHERE id = $6`,
		status, message, now, startedAt, completedAt, jobID.String())
	return err
}

// UpdateJobError marks a job as failed with an error message
func (p *PostgresDB) UpdateJobError(jobID ulid.ULID, errorMsg string) error {
	now := time.Now()
	_, err := p.db.Exec(
		`UPDATE jobs SET status = $1, error = $2, updated_at = $3, completed_at = $4 WHERE id = $5`,
		JobStatusFailed, errorMsg, now, now, jobID.String())
	return err
}

// CompleteJob marks a job as completed with optional result data
func (p *PostgresDB) CompleteJob(jobID ulid.ULID, result string) error {
	now := time.Now()
	_, err := p.db.Exec(
		`UPDATE jobs SET status = $1, progress = 100, result = $2, updated_at = $3, completed_at = $4 WHERE id = $5`,
		JobStatusCompleted, result, now, now, jobID.String())
	return err
}

// GetJob retrieves a job by ID
func (p *PostgresDB) GetJob(jobID ulid.ULID) (*Job, error) {
	job, err := scanJob(p.db.QueryRow(
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID.String()))
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetRecentJobs retrieves the most recent jobs with pagination
func (p *PostgresDB) GetRecentJobs(limit, offset int) ([]Job, error) {
	return p.queryJobs(
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

// GetActiveJobs retrieves all running or pending jobs
func (p *PostgresDB) GetActiveJobs() ([]Job, error) {
	return p.queryJobs(
		`SELECT `+jobColumns+` FROM jobs WHERE status IN ($1, $2) ORDER BY created_at DESC`,
		JobStatusPending, JobStatusRunning)
}

// DeleteOldJobs deletes finished jobs older than the specified duration
func (p *PostgresDB) DeleteOldJobs(olderThan time.Duration) (int, error) {
	result, err := p.db.Exec(
		`DELETE FROM jobs WHERE status IN ($1, $2, $3) AND completed_at < $4`,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
