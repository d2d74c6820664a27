package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/staffhub/user-management/internal/api/metrics"
	"github.com/staffhub/user-management/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

// CleanupJob is a stored file scheduled for deletion.
type CleanupJob struct {
	AccountID string
	Ref       string
}

// Dispatcher deletes stored files in the background. Jobs are routed to a fixed
// set of workers by hashing the account id, so deletions for one account run in
// the order they were queued.
type Dispatcher struct {
	workers []chan CleanupJob
	store   ports.FileStore
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.FileStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan CleanupJob, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan CleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules ref for deletion. It never blocks: when the worker's
// channel is full the job is dropped and logged.
func (d *Dispatcher) Enqueue(accountID, ref string) {
	idx := d.shardIndex(accountID)
	select {
	case d.workers[idx] <- CleanupJob{AccountID: accountID, Ref: ref}:
		metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("user_id", accountID).Str("ref", ref).Int("worker_id", idx).Msg("cleanup queue full, file left orphaned")
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan CleanupJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.ImageCleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job CleanupJob) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	start := time.Now()
	err := d.store.Delete(ctx, job.Ref)
	metrics.ImageCleanupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ImageCleanupTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", job.AccountID).
			Str("ref", job.Ref).
			Int("worker_id", workerID).
			Msg("profile image cleanup failed")
		return
	}
	metrics.ImageCleanupTotal.WithLabelValues("deleted").Inc()
	d.log.Debug().Str("user_id", job.AccountID).Str("ref", job.Ref).Msg("profile image deleted")
}
