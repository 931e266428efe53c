package manager

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown has started.
	ErrPoolClosed = stderrors.New("download pool is shut down")
	// ErrAbandoned means the caller stopped waiting while the job kept running.
	ErrAbandoned = stderrors.New("stopped waiting for running download")
)

// Job is a blocking download. The context it receives is never canceled by the submitter.
type Job = func(ctx context.Context) (*domain.DownloadResult, error)

type outcome struct {
	result *domain.DownloadResult
	err    error
}

// DownloadManager runs blocking downloads on a bounded set of workers.
type DownloadManager struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
	metrics  domain.MetricsInterface

	mu     sync.Mutex
	closed bool
	jobs   sync.WaitGroup
}

var (
	_ domain.DownloadPool              = (*DownloadManager)(nil)
	_ domain.GracefulShutdownInterface = (*DownloadManager)(nil)
)

// NewDownloadManager creates a pool of size workers. metrics may be nil.
func NewDownloadManager(size int, metrics domain.MetricsInterface) *DownloadManager {
	if size < 1 {
		size = 1
	}
	return &DownloadManager{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		metrics: metrics,
	}
}

// Submit waits for a free worker, runs job on it and waits for the result.
// If ctx ends while waiting for a worker, the job never starts and ctx.Err() is returned.
// If ctx ends while the job runs, Submit returns ErrAbandoned and the job finishes on its own.
func (dm *DownloadManager) Submit(ctx context.Context, job Job) (*domain.DownloadResult, error) {
	if dm.isClosed() {
		return nil, ErrPoolClosed
	}
	if err := dm.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	dm.mu.Lock()
	if dm.closed {
		dm.mu.Unlock()
		dm.sem.Release(1)
		return nil, ErrPoolClosed
	}
	dm.jobs.Add(1)
	dm.mu.Unlock()

	dm.track(1)
	done := make(chan outcome, 1)
	go func() {
		defer dm.jobs.Done()
		defer dm.sem.Release(1)
		defer dm.track(-1)
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(map[string]any{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("Panic recovered in download job")
				done <- outcome{err: errors.ErrInternal.WithDetails(map[string]any{"panic": fmt.Sprint(r)})}
			}
		}()

		result, err := job(context.WithoutCancel(ctx))
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		logger.Log.WithError(ctx.Err()).Warn("Caller stopped waiting, download continues in background")
		return nil, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
	}
}

func (dm *DownloadManager) isClosed() bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.closed
}

func (dm *DownloadManager) track(delta int64) {
	n := dm.inFlight.Add(delta)
	if dm.metrics != nil {
		dm.metrics.SetDownloadsInFlight(int(n))
	}
}

// InFlight returns the number of running jobs.
func (dm *DownloadManager) InFlight() int {
	return int(dm.inFlight.Load())
}

// Size returns the worker count.
func (dm *DownloadManager) Size() int {
	return dm.size
}

// Shutdown rejects new jobs and waits for running ones until ctx ends.
func (dm *DownloadManager) Shutdown(ctx context.Context) error {
	dm.mu.Lock()
	dm.closed = true
	dm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		dm.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("All downloads finished")
		return nil
	case <-ctx.Done():
		logger.Log.WithField("in_flight", dm.InFlight()).Warn("Downloads still running at shutdown deadline")
		return ctx.Err()
	}
}

func (*DownloadManager) Name() string {
	return "download_manager"
}
