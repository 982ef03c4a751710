package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/tracker"
	"scribe/internal/writer"
)

// maxErrorLength bounds the error text stored on a failed record.
const maxErrorLength = 500

type job struct {
	path       string
	outputBase string
	// model is the record's stored model, carried so a retry reuses the
	// model of the original attempt.
	model string
}

type outcome struct {
	path       string
	model      string
	skipped    bool
	err        error
	storeErr   error
	duration   float64
	processing float64
}

// Run executes one transcription run and returns its summary. Per-item
// failures are recorded on the tracker and never abort the run; only
// store-level failures do.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	opts.normalize()

	lock, err := acquireRunLock(opts.OutputRoot)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	logger := r.logger.With(logging.String("run_id", runID))
	summary := Summary{RunID: runID}

	dispatch, err := r.buildDispatchSet(ctx, &opts, &summary, logger)
	if err != nil {
		return summary, err
	}
	summary.Dispatched = len(dispatch)
	if len(dispatch) == 0 {
		logger.Info("nothing to dispatch",
			logging.Int("discovered", summary.Discovered))
		return summary, nil
	}

	logger.Info("dispatching files",
		logging.Int("count", len(dispatch)),
		logging.Int("workers", opts.Workers),
		logging.String("model", r.transcriber.Model()),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job)
	results := make(chan outcome)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			r.worker(runCtx, jobs, results, opts)
		}()
	}

	go func() {
		defer close(jobs)
		for _, j := range dispatch {
			select {
			case jobs <- j:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var fatal error
	for res := range results {
		if err := r.applyOutcome(runCtx, res, &opts, &summary, logger); err != nil {
			if fatal == nil {
				fatal = err
			}
			cancel()
		}
	}

	if fatal != nil {
		return summary, fatal
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	logger.Info("run finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// buildDispatchSet performs the reconcile and select phases. Stuck
// processing records from a crashed run are reclaimed here, exactly once,
// under the run lock.
func (r *Runner) buildDispatchSet(ctx context.Context, opts *Options, summary *Summary, logger *slog.Logger) ([]job, error) {
	reclaimed, err := r.store.ResetStuckProcessing(ctx)
	if err != nil {
		return nil, err
	}
	if reclaimed > 0 {
		logger.Warn("reclaimed records stuck in processing from a previous run",
			logging.Int64("count", reclaimed))
	}

	if opts.RetryFailed {
		failed, err := r.store.ListByStatus(ctx, tracker.StatusFailed)
		if err != nil {
			return nil, err
		}
		if _, err := r.store.ResetFailed(ctx); err != nil {
			return nil, err
		}
		dispatch := make([]job, 0, len(failed))
		for _, record := range failed {
			dispatch = append(dispatch, job{
				path:       record.InputPath,
				outputBase: record.OutputPath,
				model:      record.Model,
			})
		}
		return dispatch, nil
	}

	items, err := media.Scan(opts.InputRoot, func(path string, warnErr error) {
		logger.Warn("skipping unreadable entry",
			logging.String("path", path),
			logging.Error(warnErr),
		)
	})
	if err != nil {
		return nil, err
	}
	summary.Discovered = len(items)

	model := opts.ModelOverride
	if model == "" {
		model = r.transcriber.Model()
	}
	dispatch := make([]job, 0, len(items))
	for _, item := range items {
		record, err := r.store.UpsertPending(ctx, item.Path, media.OutputBase(opts.OutputRoot, item), model)
		if err != nil {
			return nil, err
		}
		switch record.Status {
		case tracker.StatusPending:
		case tracker.StatusCompleted:
			if !opts.Overwrite {
				continue
			}
		default:
			// Failed records wait for an explicit retry; processing
			// records belong to nobody after the reclaim above.
			continue
		}
		dispatch = append(dispatch, job{path: record.InputPath, outputBase: record.OutputPath})
	}
	return dispatch, nil
}

// worker claims, transcribes, and persists one file at a time. Claim wins
// and losses both flow to the collector; the worker never touches the
// store after BeginProcessing.
func (r *Runner) worker(ctx context.Context, jobs <-chan job, results chan<- outcome, opts Options) {
	for j := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		model := opts.ModelOverride
		if model == "" {
			model = j.model
		}
		recordedModel := model
		if recordedModel == "" {
			recordedModel = r.transcriber.Model()
		}

		claimed, err := r.store.BeginProcessing(ctx, j.path, recordedModel, opts.Overwrite)
		if err != nil {
			results <- outcome{path: j.path, storeErr: err}
			continue
		}
		if !claimed {
			results <- outcome{path: j.path, skipped: true}
			continue
		}

		start := time.Now()
		result, err := r.transcriber.Transcribe(ctx, j.path, model)
		processing := time.Since(start).Seconds()

		if err == nil {
			r.vocab.Apply(&result)
			err = writer.Write(result, j.outputBase, opts.Format)
		}

		out := outcome{path: j.path, model: recordedModel, err: err, processing: processing}
		if err == nil {
			out.duration = result.DurationSeconds
		}
		results <- out
	}
}

// applyOutcome is the single transition-applying consumer: it commits the
// terminal status for one outcome and emits the progress event. A store
// error here indicates state corruption and aborts the run.
func (r *Runner) applyOutcome(ctx context.Context, res outcome, opts *Options, summary *Summary, logger *slog.Logger) error {
	if res.storeErr != nil {
		return res.storeErr
	}
	if res.skipped {
		summary.Skipped++
		return nil
	}

	// An interrupted worker leaves its record in processing; the next
	// run's reconciliation reclaims it.
	if res.err != nil && (errors.Is(res.err, context.Canceled) || ctx.Err() != nil) {
		return nil
	}

	if res.err != nil {
		message := truncateMessage(res.err.Error())
		if err := r.store.Fail(ctx, res.path, message); err != nil {
			return err
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, ItemFailure{Path: res.path, Error: message})
		logger.Error("file failed",
			logging.String("path", res.path),
			logging.Error(res.err),
		)
	} else {
		if err := r.store.Complete(ctx, res.path, res.duration, res.processing, res.model); err != nil {
			return err
		}
		summary.Completed++
		summary.TotalDuration += res.duration
		summary.TotalProcessing += res.processing
		logger.Info("file completed",
			logging.String("path", res.path),
			logging.Float64("duration_seconds", res.duration),
			logging.Float64("processing_seconds", res.processing),
		)
	}

	if opts.OnProgress != nil {
		opts.OnProgress(Progress{
			Completed: summary.Completed,
			Failed:    summary.Failed,
			Total:     summary.Dispatched,
			Current:   res.path,
		})
	}
	return nil
}

func truncateMessage(message string) string {
	if len(message) <= maxErrorLength {
		return message
	}
	// Back up to a rune boundary so the stored text stays valid UTF-8.
	cut := maxErrorLength
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated)", message[:cut])
}
