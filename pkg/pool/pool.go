// Package pool 基于 ants 提供带统计的工作池封装。
//
// Pools bound the concurrency of batch extraction and URL resolution; a full
// nonblocking pool rejects instead of queueing unboundedly.
package pool

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("pool: pool is closed")

// ErrPoolFull is returned when a nonblocking pool rejects a task.
var ErrPoolFull = errors.New("pool: pool is full")

// Config defines the configuration for a worker pool.
type Config struct {
	// Capacity 池容量（最大并发 goroutine 数）。
	Capacity int
	// ExpiryDuration goroutine 空闲过期时间。
	ExpiryDuration time.Duration
	// Nonblocking 提交任务是否非阻塞（若池满则返回 ErrPoolFull）。
	Nonblocking bool
	// MaxBlockingTasks 当 Nonblocking=false 时，最大等待任务数（0 表示无限制）。
	MaxBlockingTasks int
}

// DefaultConfig returns a general-purpose pool configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       100,
		ExpiryDuration: 10 * time.Second,
		Nonblocking:    false,
	}
}

// BatchConfig returns the configuration for batch extraction pools.
// Nonblocking: a full pool must reject, not queue.
func BatchConfig(capacity int) *Config {
	return &Config{
		Capacity:       capacity,
		ExpiryDuration: 30 * time.Second,
		Nonblocking:    true,
	}
}

// Stats contains statistics about a worker pool.
type Stats struct {
	SubmittedTasks int64 `json:"submitted_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	FailedTasks    int64 `json:"failed_tasks"`
	RejectedTasks  int64 `json:"rejected_tasks"`
	PanicRecovered int64 `json:"panic_recovered"`
	Running        int   `json:"running"`
	Capacity       int   `json:"capacity"`
}

// Pool wraps an ants pool with task statistics.
type Pool struct {
	name string
	pool *ants.Pool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	panicked  atomic.Int64
	closed    atomic.Bool
}

// New creates a new worker pool with the given configuration.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{name: name}

	antsPool, err := ants.NewPool(config.Capacity,
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
		ants.WithPanicHandler(func(v interface{}) {
			p.panicked.Add(1)
			p.failed.Add(1)
			logger.Errorw("pool task panicked", "pool", name, "panic", v)
		}),
	)
	if err != nil {
		return nil, err
	}

	p.pool = antsPool
	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Submit submits a task to the pool.
// For nonblocking pools, ErrPoolFull is returned when the pool is saturated.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)

	err := p.pool.Submit(func() {
		task()
		p.completed.Add(1)
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.rejected.Add(1)
			return ErrPoolFull
		}
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		p.failed.Add(1)
		return err
	}

	return nil
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		SubmittedTasks: p.submitted.Load(),
		CompletedTasks: p.completed.Load(),
		FailedTasks:    p.failed.Load(),
		RejectedTasks:  p.rejected.Load(),
		PanicRecovered: p.panicked.Load(),
		Running:        p.pool.Running(),
		Capacity:       p.pool.Cap(),
	}
}

// Running returns the number of currently running workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free returns the number of available worker slots.
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Release closes the pool and waits for running tasks to complete.
func (p *Pool) Release() {
	if p.closed.CompareAndSwap(false, true) {
		p.pool.Release()
	}
}
