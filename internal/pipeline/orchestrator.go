package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kdurfey/redline/internal/config"
	"github.com/kdurfey/redline/internal/correct"
)

// CorrectorFactory builds a corrector carrying a job's instruction.
type CorrectorFactory func(ctx context.Context, instruction string) (correct.Corrector, error)

// Orchestrator runs queued editing jobs on a bounded worker pool.
type Orchestrator struct {
	jobs         *JobStore
	queue        chan *Job
	newCorrector CorrectorFactory
	stats        *correct.Stats
	log          *slog.Logger
	cfg          config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, newCorrector CorrectorFactory, stats *correct.Stats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:         NewJobStore(cfg.JobTTL),
		queue:        make(chan *Job, cfg.MaxQueueSize),
		newCorrector: newCorrector,
		stats:        stats,
		log:          log,
		cfg:          cfg,
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
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Stats returns the shared model latency stats.
func (o *Orchestrator) Stats() *correct.Stats {
	return o.stats
}

// process runs the full pipeline for one uploaded manuscript. The upload is
// staged into a temp directory so the file-path based stores and comparers
// can work on it; artifacts are pulled back into memory for download.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusLoading, "staging upload")
	dir, err := os.MkdirTemp("", "redline-job-*")
	if err != nil {
		log.Error("temp dir failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "staging upload")
		return
	}
	defer os.RemoveAll(dir)

	ext := filepath.Ext(job.Filename)
	inputPath := filepath.Join(dir, "input"+ext)
	cleanPath := filepath.Join(dir, "clean"+ext)
	redlinePath := filepath.Join(dir, "redline"+ext)

	if err := os.WriteFile(inputPath, job.FileData(), 0o600); err != nil {
		log.Error("stage upload failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "staging upload")
		return
	}

	instruction := job.Instruction()
	if instruction == "" {
		instruction = correct.DefaultInstruction
	}
	corrector, err := o.newCorrector(ctx, instruction)
	if err != nil {
		log.Error("corrector init failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "staging upload")
		return
	}
	defer corrector.Close()

	ed := NewEditor(corrector, o.stats, log, io.Discard, o.cfg.MaxConcurrent, o.cfg.MaxRetries)
	ed.SetProgressFunc(job.SetParagraphs)

	job.SetStatus(StatusEditing, "editing")
	rep, err := Run(ctx, ed, log, RunInput{
		InputPath:      inputPath,
		CleanPath:      cleanPath,
		RedlinePath:    redlinePath,
		Author:         o.cfg.Author,
		EditAbstract:   o.cfg.EditAbstract,
		SkipShortLines: o.cfg.SkipShortLines,
	})
	job.SetReport(rep)
	if err != nil {
		log.Error("job failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "editing")
		return
	}

	job.SetStatus(StatusComparing, "collecting artifacts")
	clean, err := os.ReadFile(cleanPath)
	if err != nil {
		log.Error("read clean artifact failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "collecting artifacts")
		return
	}
	// The redline may be absent if comparison failed; that is not fatal.
	redlineData, err := os.ReadFile(redlinePath)
	if err != nil {
		redlineData = nil
	}
	job.SetArtifacts(clean, redlineData)

	if rep.Failed > 0 || redlineData == nil {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job complete",
		"status", job.Snapshot().Status,
		"edited", rep.Edited,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
	)
}
