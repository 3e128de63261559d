package storage

import (
	"github.com/google/uuid"

	"pagebuilder/internal/domain"
)

// ImportRunStore keeps the history of catalog import runs.
type ImportRunStore struct {
	db *DB
}

func NewImportRunStore(db *DB) *ImportRunStore {
	return &ImportRunStore{db: db}
}

func (s *ImportRunStore) CreateImportRun(r *domain.ImportRun) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO import_runs (id, job_name, started_at, finished_at, status, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.JobName, r.StartedAt, r.FinishedAt, r.Status, r.RowsRead, r.RowsWritten, r.Error,
	)
	return err
}

// ListImportRuns returns the latest runs of jobName, newest first.
func (s *ImportRunStore) ListImportRuns(jobName string, limit int) ([]domain.ImportRun, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, job_name, started_at, finished_at, status, rows_read, rows_written, error
		 FROM import_runs WHERE job_name = ? ORDER BY started_at DESC LIMIT ?`,
		jobName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ImportRun
	for rows.Next() {
		var r domain.ImportRun
		if err := rows.Scan(&r.ID, &r.JobName, &r.StartedAt, &r.FinishedAt, &r.Status, &r.RowsRead, &r.RowsWritten, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ domain.ImportRunStore = (*ImportRunStore)(nil)
