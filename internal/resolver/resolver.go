package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nearfac/internal/distmatrix"
	"nearfac/internal/model"
	"nearfac/internal/worker"
)

const (
	defaultBatchSize  = 25 // Distance Matrix per-request element ceiling
	defaultWorkers    = 4
	defaultMaxRetries = 3
)

// ConfigurationError reports a precondition that invalidates the whole
// run, such as a credential the service rejects on every attempt.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Resolver turns a many-to-many set of zip pairs into a DistanceMap by
// issuing one bounded query per (origin, destination group), all
// concurrently on a worker pool behind a rate gate.
type Resolver struct {
	client     distmatrix.Querier
	batchSize  int
	workers    int
	maxRetries int
	limiter    *worker.Limiter
	backoff    time.Duration // unit for quadratic retry backoff
}

// New creates a Resolver. Zero or negative settings fall back to
// defaults.
func New(client distmatrix.Querier, cfg model.ResolverConfig, limiter *worker.Limiter) *Resolver {
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > defaultBatchSize {
		batchSize = defaultBatchSize
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if limiter == nil {
		limiter = worker.NewLimiter(0, 0)
	}

	return &Resolver{
		client:     client,
		batchSize:  batchSize,
		workers:    workers,
		maxRetries: maxRetries,
		limiter:    limiter,
		backoff:    time.Second,
	}
}

// Partition splits destinations into consecutive groups of at most
// batchSize; the last group may be smaller. The groups cover the input
// exactly once, in order.
func Partition(destinations []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var groups [][]string
	for start := 0; start < len(destinations); start += batchSize {
		end := start + batchSize
		if end > len(destinations) {
			end = len(destinations)
		}
		groups = append(groups, destinations[start:end])
	}
	return groups
}

// Resolve queries travel distances for every origin against every
// destination. The returned map holds an entry for every requested
// pair; pairs whose distance could not be obtained read as
// unavailable. The only error returned is a ConfigurationError (or the
// caller's context error): per-batch failures degrade, they do not
// abort.
func (r *Resolver) Resolve(ctx context.Context, origins, destinations []string) (model.DistanceMap, error) {
	dm := make(model.DistanceMap)
	if len(origins) == 0 || len(destinations) == 0 {
		return dm, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := &run{
		resolver: r,
		cancel:   cancel,
	}

	pool := worker.NewPool(runCtx, r.workers)
	pool.Start()

	groups := Partition(destinations, r.batchSize)

	// Submit from a separate goroutine so Wait can drain results while
	// jobs are still being queued.
	go func() {
		for _, origin := range origins {
			for _, group := range groups {
				pool.Submit(&batchJob{run: run, origin: origin, group: group})
			}
		}
		pool.Close()
	}()

	results := pool.Wait()

	if fatal := run.fatalErr(); fatal != nil {
		return nil, &ConfigurationError{Err: fatal}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range results {
		br := res.(*batchResult)
		br.mergeInto(dm)
	}

	return dm, nil
}

// run carries the per-invocation fail-fast state shared by all jobs
type run struct {
	resolver *Resolver
	cancel   context.CancelFunc

	mu    sync.Mutex
	fatal error
}

// fail records the first fatal error and cancels outstanding jobs
func (rn *run) fail(err error) {
	rn.mu.Lock()
	if rn.fatal == nil {
		rn.fatal = err
		rn.cancel()
	}
	rn.mu.Unlock()
}

func (rn *run) fatalErr() error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.fatal
}

// queryWithRetry issues one batch query, retrying transport failures
// with quadratic backoff. The rate gate is taken before every attempt.
func (rn *run) queryWithRetry(ctx context.Context, origin string, group []string) ([]distmatrix.Element, error) {
	r := rn.resolver

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * r.backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		elements, err := r.client.Query(ctx, origin, group)
		if err == nil {
			return elements, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", r.maxRetries, lastErr)
}

// batchJob resolves one origin against one destination group
type batchJob struct {
	run    *run
	origin string
	group  []string
}

// Execute implements worker.Job
func (j *batchJob) Execute(ctx context.Context) worker.Result {
	elements, err := j.run.queryWithRetry(ctx, j.origin, j.group)
	if err != nil {
		if errors.Is(err, distmatrix.ErrAuthRejected) {
			// A rejected credential cannot recover mid-run.
			j.run.fail(err)
		}
		return &batchResult{origin: j.origin, group: j.group, err: err}
	}
	if len(elements) != len(j.group) {
		err := fmt.Errorf("misaligned response: %d elements for %d destinations", len(elements), len(j.group))
		return &batchResult{origin: j.origin, group: j.group, err: err}
	}
	return &batchResult{origin: j.origin, group: j.group, elements: elements}
}

// batchResult is the outcome of one (origin, group) query
type batchResult struct {
	origin   string
	group    []string
	elements []distmatrix.Element
	err      error
}

// GetError implements worker.Result
func (b *batchResult) GetError() error {
	return b.err
}

// mergeInto folds the batch into the distance map. A failed batch
// marks every destination in the group unavailable for the origin.
func (b *batchResult) mergeInto(dm model.DistanceMap) {
	if b.err != nil {
		for _, dest := range b.group {
			dm.Put(b.origin, dest, model.Distance{})
		}
		return
	}

	for i, dest := range b.group {
		el := b.elements[i]
		if el.Status == distmatrix.StatusOK {
			dm.Put(b.origin, dest, model.Distance{Miles: el.Miles, Available: true})
		} else {
			dm.Put(b.origin, dest, model.Distance{})
		}
	}
}
