// Package pool provides a bounded worker pool built on ants.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrPoolOverload is returned when a nonblocking pool is full.
	ErrPoolOverload = errors.New("worker pool is overloaded")
)

// Config controls the pool behavior.
type Config struct {
	// Capacity is the maximum number of concurrent workers.
	Capacity int
	// ExpiryDuration is how long an idle worker lives before recycling.
	ExpiryDuration time.Duration
	// Nonblocking makes Submit fail instead of waiting when the pool is full.
	Nonblocking bool
	// MaxBlockingTasks caps the submit queue when Nonblocking is false.
	// Zero means unbounded.
	MaxBlockingTasks int
}

// DefaultConfig returns a general purpose pool configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       64,
		ExpiryDuration: 10 * time.Second,
	}
}

// EmbedConfig returns the configuration used for embedding batches.
// Embedding calls are network bound, so a small blocking pool keeps the
// upstream provider from being flooded while still overlapping requests.
func EmbedConfig(capacity int) *Config {
	if capacity <= 0 {
		capacity = 8
	}
	return &Config{
		Capacity:       capacity,
		ExpiryDuration: 30 * time.Second,
	}
}

// Pool is a named worker pool with task counters.
type Pool struct {
	name   string
	pool   *ants.Pool
	config *Config

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64

	closed   atomic.Bool
	closedMu sync.Mutex
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	SubmittedTasks int64
	CompletedTasks int64
	FailedTasks    int64
	RejectedTasks  int64
}

// New creates a worker pool with the given configuration.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{
		name:   name,
		config: config,
	}

	opts := []ants.Option{
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
		ants.WithPanicHandler(func(r any) {
			logger.Errorw("Worker panic recovered", "pool", name, "panic", r)
		}),
	}

	inner, err := ants.NewPool(config.Capacity, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	p.pool = inner

	logger.Infow("Worker pool created", "name", name, "capacity", config.Capacity)

	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Running returns the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Submit schedules a task on the pool.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	err := p.pool.Submit(func() {
		p.submitted.Add(1)

		defer func() {
			if r := recover(); r != nil {
				p.failed.Add(1)
				panic(r)
			}
			p.completed.Add(1)
		}()

		task()
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.rejected.Add(1)
			return ErrPoolOverload
		}
		p.failed.Add(1)
		return err
	}

	return nil
}

// SubmitWithContext schedules a task that is skipped if the context is
// already canceled when a worker picks it up.
func (p *Pool) SubmitWithContext(ctx context.Context, task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return p.Submit(func() {
		select {
		case <-ctx.Done():
			return
		default:
			task()
		}
	})
}

// Release shuts the pool down and frees its workers.
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return
	}

	p.closed.Store(true)
	p.pool.Release()
	logger.Infow("Worker pool released", "name", p.name)
}

// ReleaseTimeout shuts the pool down, waiting up to timeout for
// outstanding tasks.
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return nil
	}

	p.closed.Store(true)
	return p.pool.ReleaseTimeout(timeout)
}

// Stats returns a counter snapshot.
func (p *Pool) Stats() Stats {
	return Stats{
		SubmittedTasks: p.submitted.Load(),
		CompletedTasks: p.completed.Load(),
		FailedTasks:    p.failed.Load(),
		RejectedTasks:  p.rejected.Load(),
	}
}
