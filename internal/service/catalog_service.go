package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pagebuilder/internal/catalog"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/guard"
)

// ─────────────────────────────────────────────────────────────
// Catalog Service: product imports, schedules and file watches
// ─────────────────────────────────────────────────────────────

// ErrJobRunning is returned when an import job is already in flight.
var ErrJobRunning = errors.New("import job is already running")

// watchDebounce coalesces the burst of write events an editor produces.
const watchDebounce = 500 * time.Millisecond

// CatalogService runs catalog import jobs on demand, on a cron schedule and
// when a watched file changes.
type CatalogService struct {
	engine      *catalog.Engine
	runs        domain.ImportRunStore
	emitter     EventEmitter
	logger      *zap.Logger
	jobs        []catalog.Job
	runningJobs guard.Guard

	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewCatalogService creates a CatalogService. Jobs failing validation are
// rejected here so schedules never reference a broken job.
func NewCatalogService(
	engine *catalog.Engine,
	runs domain.ImportRunStore,
	jobs []catalog.Job,
	emitter EventEmitter,
	logger *zap.Logger,
) (*CatalogService, error) {
	seen := make(map[string]bool, len(jobs))
	for i := range jobs {
		if err := jobs[i].Validate(); err != nil {
			return nil, err
		}
		if seen[jobs[i].Name] {
			return nil, fmt.Errorf("duplicate import job %q", jobs[i].Name)
		}
		seen[jobs[i].Name] = true
	}
	return &CatalogService{
		engine:  engine,
		runs:    runs,
		emitter: emitter,
		logger:  logger,
		jobs:    append([]catalog.Job(nil), jobs...),
	}, nil
}

func (s *CatalogService) ListJobs() []catalog.Job {
	return append([]catalog.Job(nil), s.jobs...)
}

func (s *CatalogService) GetJob(name string) (*catalog.Job, error) {
	for i := range s.jobs {
		if s.jobs[i].Name == name {
			j := s.jobs[i]
			return &j, nil
		}
	}
	return nil, fmt.Errorf("import job %s: %w", name, domain.ErrNotFound)
}

// ListSources returns the available source descriptors.
func (s *CatalogService) ListSources() []catalog.SourceSpec {
	return s.engine.Sources.Specs()
}

// ListRuns returns the last runs of a job, newest first.
func (s *CatalogService) ListRuns(name string, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.runs.ListImportRuns(name, limit)
}

// Preview reads a job's products without writing them.
func (s *CatalogService) Preview(ctx context.Context, name string, limit int) ([]domain.Product, error) {
	job, err := s.GetJob(name)
	if err != nil {
		return nil, err
	}
	previewCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.engine.Preview(previewCtx, job, limit)
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes an import job synchronously, records the run and emits
// catalog:imported on success.
func (s *CatalogService) RunJob(ctx context.Context, name string) (*catalog.Result, error) {
	if !s.runningJobs.TryLock(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrJobRunning)
	}
	defer s.runningJobs.Unlock(name)

	job, err := s.GetJob(name)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	result, runErr := s.engine.Run(runCtx, job)

	run := &domain.ImportRun{
		JobName:     name,
		StartedAt:   start,
		FinishedAt:  time.Now(),
		Status:      result.Status,
		RowsRead:    result.RowsRead,
		RowsWritten: result.RowsWritten,
		Error:       result.Error,
	}
	if err := s.runs.CreateImportRun(run); err != nil {
		s.logger.Warn("record import run", zap.String("job", name), zap.Error(err))
	}

	if runErr != nil {
		s.logger.Error("import failed", zap.String("job", name), zap.Error(runErr))
		return result, fmt.Errorf("import %s: %w", name, runErr)
	}
	s.logger.Info("import finished",
		zap.String("job", name),
		zap.Int("read", result.RowsRead),
		zap.Int("written", result.RowsWritten),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("took", result.Duration),
	)
	s.emitter.Emit(ctx, EventCatalogImported, result)
	return result, nil
}

// ── Watchers (cron + file watch) ──────────────────────────

// Start tears down the current watcher and cron and rebuilds them from the
// job list. Triggered runs use ctx.
func (s *CatalogService) Start(ctx context.Context) error {
	s.Stop()

	var scheduled []catalog.Job
	pathToJob := make(map[string]string)
	for _, j := range s.jobs {
		if j.Schedule != "" {
			scheduled = append(scheduled, j)
		}
		if j.WatchPath != "" {
			abs, err := filepath.Abs(j.WatchPath)
			if err != nil {
				return fmt.Errorf("watch path %q: %w", j.WatchPath, err)
			}
			pathToJob[abs] = j.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(scheduled) > 0 {
		c := cron.New()
		for _, j := range scheduled {
			name := j.Name
			if _, err := c.AddFunc(j.Schedule, func() { s.trigger(ctx, name, "schedule") }); err != nil {
				return fmt.Errorf("job %s: invalid schedule %q: %w", name, j.Schedule, err)
			}
		}
		c.Start()
		s.cronSched = c
		s.logger.Info("catalog cron started", zap.Int("jobs", len(scheduled)))
	}

	if len(pathToJob) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.stopLocked()
		return fmt.Errorf("create watcher: %w", err)
	}
	watchedDirs := make(map[string]bool)
	for path := range pathToJob {
		dir := filepath.Dir(path)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("watch dir", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watchedDirs[dir] = true
	}
	s.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	go s.watchLoop(watchCtx, watcher, pathToJob)

	s.logger.Info("catalog watcher started", zap.Int("files", len(pathToJob)))
	return nil
}

func (s *CatalogService) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pathToJob map[string]string) {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			name, ok := pathToJob[abs]
			if !ok {
				continue
			}
			if t, exists := timers[name]; exists {
				t.Stop()
			}
			timers[name] = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				s.trigger(ctx, name, "file_watch")
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func (s *CatalogService) trigger(ctx context.Context, name, reason string) {
	s.logger.Debug("catalog trigger", zap.String("job", name), zap.String("reason", reason))
	if _, err := s.RunJob(ctx, name); err != nil && !errors.Is(err, ErrJobRunning) {
		s.logger.Warn("triggered import failed", zap.String("job", name), zap.String("reason", reason), zap.Error(err))
	}
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
func (s *CatalogService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down the watcher and the cron scheduler. It is safe to call
// more than once.
func (s *CatalogService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *CatalogService) stopLocked() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		<-s.cronSched.Stop().Done()
		s.cronSched = nil
	}
}
