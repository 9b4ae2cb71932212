package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/salesops/giftware-scraper/internal/auth"
	"github.com/salesops/giftware-scraper/internal/models"
	"github.com/salesops/giftware-scraper/internal/ratelimit"
	"github.com/salesops/giftware-scraper/internal/session"
)

// SessionFactory opens a fresh browsing session. The orchestrator owns every
// session it opens and releases each exactly once.
type SessionFactory func() (*session.Session, error)

// Archive persists a finished run's records; optional.
type Archive interface {
	SaveRun(ctx context.Context, runID string, records []models.ProductRecord) error
}

// Progress is a point-in-time snapshot of a batch run.
type Progress struct {
	RunID         string                 `json:"run_id"`
	Total         int                    `json:"total"`
	Processed     int                    `json:"processed"`
	Found         int                    `json:"found"`
	NotFound      int                    `json:"not_found"`
	Errors        int                    `json:"errors"`
	Authenticated bool                   `json:"authenticated"`
	Records       []models.ProductRecord `json:"-"`
}

// Orchestrator runs the item pipeline over a full identifier list using one
// authenticated-or-anonymous session, preserving input order.
type Orchestrator struct {
	sessions SessionFactory
	auth     *auth.Authenticator
	pipeline *Pipeline
	limiter  *ratelimit.AdaptiveLimiter
	archive  Archive
	logger   *slog.Logger

	// Engine faults recurring this many times in a row stop the batch; the
	// remaining identifiers are emitted as Error records so the output still
	// carries one record per input.
	maxConsecutiveFaults int

	mu       sync.Mutex
	progress Progress
}

type OrchestratorOptions struct {
	MaxConsecutiveFaults int
}

func NewOrchestrator(
	sessions SessionFactory,
	authenticator *auth.Authenticator,
	pipeline *Pipeline,
	limiter *ratelimit.AdaptiveLimiter,
	archive Archive,
	opts OrchestratorOptions,
	logger *slog.Logger,
) *Orchestrator {
	faults := opts.MaxConsecutiveFaults
	if faults < 1 {
		faults = 3
	}
	return &Orchestrator{
		sessions:             sessions,
		auth:                 authenticator,
		pipeline:             pipeline,
		limiter:              limiter,
		archive:              archive,
		logger:               logger.With("component", "orchestrator"),
		maxConsecutiveFaults: faults,
	}
}

// Run processes every identifier in order over a single session and returns
// one terminal record per input identifier.
func (o *Orchestrator) Run(ctx context.Context, itemNumbers []string, creds auth.Credentials) ([]models.ProductRecord, error) {
	runID := uuid.NewString()
	o.setProgress(Progress{RunID: runID, Total: len(itemNumbers)})

	sess, err := o.sessions()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			o.logger.Warn("failed to close session", "error", cerr)
		}
	}()

	records := o.runSession(ctx, sess, itemNumbers, creds, runID)

	if o.archive != nil {
		if err := o.archive.SaveRun(ctx, runID, records); err != nil {
			o.logger.Error("failed to archive run", "runId", runID, "error", err)
		}
	}

	o.logSummary(runID, records)
	return records, nil
}

func (o *Orchestrator) runSession(ctx context.Context, sess *session.Session, itemNumbers []string, creds auth.Credentials, runID string) []models.ProductRecord {
	outcome := o.auth.Authenticate(ctx, sess, creds)
	if outcome.Success {
		o.logger.Info("login successful", "runId", runID)
	} else {
		// Recoverable: the batch proceeds anonymously and pricing degrades
		// to its sentinel.
		o.logger.Warn("proceeding unauthenticated", "runId", runID, "reason", outcome.Reason)
	}
	o.updateProgress(func(p *Progress) { p.Authenticated = sess.Authenticated })

	records := make([]models.ProductRecord, 0, len(itemNumbers))
	consecutiveFaults := 0

	for i, item := range itemNumbers {
		// Identifier boundaries are the only cancellation points.
		if ctx.Err() != nil {
			records = append(records, models.ErrorRecord(item, "run cancelled"))
			o.recordProgress(records[len(records)-1])
			continue
		}

		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				records = append(records, models.ErrorRecord(item, "run cancelled"))
				o.recordProgress(records[len(records)-1])
				continue
			}
		}

		record := o.pipeline.Process(ctx, sess, item)
		records = append(records, record)
		o.recordProgress(record)

		if record.Status == models.StatusError {
			consecutiveFaults++
			o.limiter.RecordError()
		} else {
			consecutiveFaults = 0
			o.limiter.RecordSuccess()
		}

		if consecutiveFaults >= o.maxConsecutiveFaults && i < len(itemNumbers)-1 {
			o.logger.Error("aborting batch after consecutive engine faults",
				"runId", runID, "faults", consecutiveFaults, "remaining", len(itemNumbers)-i-1)
			for _, rest := range itemNumbers[i+1:] {
				records = append(records, models.ErrorRecord(rest, "batch aborted after consecutive engine faults"))
				o.recordProgress(records[len(records)-1])
			}
			break
		}
	}

	return records
}

// RunPartitioned splits the identifier list into n contiguous partitions and
// runs each over its own independent session, merging the per-partition
// output back into input order. Each partition is internally sequential; no
// session is ever driven by two flows.
func (o *Orchestrator) RunPartitioned(ctx context.Context, itemNumbers []string, creds auth.Credentials, n int) ([]models.ProductRecord, error) {
	if n <= 1 || len(itemNumbers) <= 1 {
		return o.Run(ctx, itemNumbers, creds)
	}
	if n > len(itemNumbers) {
		n = len(itemNumbers)
	}

	runID := uuid.NewString()
	o.setProgress(Progress{RunID: runID, Total: len(itemNumbers)})

	parts := partition(itemNumbers, n)
	results := make([][]models.ProductRecord, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part []string) {
			defer wg.Done()

			sess, err := o.sessions()
			if err != nil {
				errs[i] = fmt.Errorf("partition %d: failed to open session: %w", i, err)
				return
			}
			defer func() {
				if cerr := sess.Close(); cerr != nil {
					o.logger.Warn("failed to close session", "partition", i, "error", cerr)
				}
			}()

			results[i] = o.runSession(ctx, sess, part, creds, runID)
		}(i, part)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var records []models.ProductRecord
	for _, part := range results {
		records = append(records, part...)
	}

	if o.archive != nil {
		if err := o.archive.SaveRun(ctx, runID, records); err != nil {
			o.logger.Error("failed to archive run", "runId", runID, "error", err)
		}
	}

	o.logSummary(runID, records)
	return records, nil
}

func partition(items []string, n int) [][]string {
	size := (len(items) + n - 1) / n
	var parts [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		parts = append(parts, items[start:end])
	}
	return parts
}

// Progress returns a snapshot of the current run.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := o.progress
	snapshot.Records = append([]models.ProductRecord(nil), o.progress.Records...)
	return snapshot
}

func (o *Orchestrator) setProgress(p Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = p
}

func (o *Orchestrator) updateProgress(fn func(*Progress)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.progress)
}

func (o *Orchestrator) recordProgress(record models.ProductRecord) {
	o.updateProgress(func(p *Progress) {
		p.Processed++
		p.Records = append(p.Records, record)
		switch record.Status {
		case models.StatusFound:
			p.Found++
		case models.StatusNotFound:
			p.NotFound++
		case models.StatusError:
			p.Errors++
		}
	})
}

func (o *Orchestrator) logSummary(runID string, records []models.ProductRecord) {
	var found, notFound, faulted, caseFound int
	for _, r := range records {
		switch r.Status {
		case models.StatusFound:
			found++
			if r.CaseQuantity != models.SentinelNotFound && r.CaseQuantity != models.SentinelNA {
				caseFound++
			}
		case models.StatusNotFound:
			notFound++
		case models.StatusError:
			faulted++
		}
	}

	o.logger.Info("batch finished",
		"runId", runID,
		"total", len(records),
		"found", found,
		"notFound", notFound,
		"errors", faulted,
		"caseQuantitiesFound", caseFound,
	)
}
