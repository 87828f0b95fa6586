// Package worker provides a bounded pool of named goroutines.
//
// Tasks first go to the core workers through a bounded queue. When the queue is
// full the pool grows up to its maximum size; extra workers exit after staying
// idle for KeepAlive. When every worker is busy and the queue is full, Do fails
// with ErrPoolExhausted instead of spawning more goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolExhausted is returned when no worker and no queue slot is free.
var ErrPoolExhausted = errors.New("worker pool exhausted")

// ErrPoolClosed is returned by Do after Close has been called.
var ErrPoolClosed = errors.New("worker pool closed")

const defaultKeepAlive = 60 * time.Second

// Config describes the pool shape.
type Config struct {
	CoreSize   int
	MaxSize    int
	QueueSize  int
	NamePrefix string
	KeepAlive  time.Duration
	// WaitOnShutdown makes Close run queued tasks before returning.
	WaitOnShutdown bool
}

// Task is a unit of work. ctx is the submitter's context.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
	done chan error
}

type workerNameKey struct{}

// WorkerName returns the name of the worker running the task, if any.
func WorkerName(ctx context.Context) string {
	name, _ := ctx.Value(workerNameKey{}).(string)
	return name
}

// Pool runs tasks on a bounded set of goroutines.
type Pool struct {
	cfg     Config
	queue   chan *job
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	workers atomic.Int32
	busy    atomic.Int32
	seq     atomic.Uint64
}

// New starts CoreSize workers and returns the pool.
func New(cfg Config) *Pool {
	if cfg.CoreSize <= 0 {
		cfg.CoreSize = 1
	}
	if cfg.MaxSize < cfg.CoreSize {
		cfg.MaxSize = cfg.CoreSize
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "worker-"
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = defaultKeepAlive
	}

	p := &Pool{
		cfg:   cfg,
		queue: make(chan *job, cfg.QueueSize),
		stop:  make(chan struct{}),
	}
	for i := 0; i < cfg.CoreSize; i++ {
		p.workers.Add(1)
		p.wg.Add(1)
		go p.run(p.nextName(), nil, true)
	}
	return p
}

// Do submits task and waits for its result. If ctx ends first Do returns
// ctx.Err(); a task that already started keeps running to completion.
func (p *Pool) Do(ctx context.Context, task Task) error {
	j := &job{ctx: ctx, task: task, done: make(chan error, 1)}
	if err := p.submit(j); err != nil {
		return err
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) submit(j *job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- j:
		return nil
	default:
	}

	if p.grow() {
		p.wg.Add(1)
		go p.run(p.nextName(), j, false)
		return nil
	}
	return ErrPoolExhausted
}

// grow reserves a slot for one extra worker.
func (p *Pool) grow() bool {
	for {
		n := p.workers.Load()
		if int(n) >= p.cfg.MaxSize {
			return false
		}
		if p.workers.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (p *Pool) nextName() string {
	return fmt.Sprintf("%s%d", p.cfg.NamePrefix, p.seq.Add(1))
}

func (p *Pool) run(name string, first *job, core bool) {
	defer p.wg.Done()
	defer p.workers.Add(-1)

	if first != nil {
		p.execute(name, first)
	}

	var idle <-chan time.Time
	for {
		if !core {
			idle = time.After(p.cfg.KeepAlive)
		}
		select {
		case j := <-p.queue:
			p.execute(name, j)
		case <-idle:
			return
		case <-p.stop:
			if p.cfg.WaitOnShutdown {
				p.drain(name)
			}
			return
		}
	}
}

func (p *Pool) drain(name string) {
	for {
		select {
		case j := <-p.queue:
			p.execute(name, j)
		default:
			return
		}
	}
}

func (p *Pool) execute(name string, j *job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	p.busy.Add(1)
	defer p.busy.Add(-1)

	ctx := context.WithValue(j.ctx, workerNameKey{}, name)
	j.done <- safeRun(ctx, j.task)
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// Stats reports the current pool occupancy.
type Stats struct {
	Workers int
	Busy    int
	Queued  int
}

// Stats returns a snapshot of the pool state.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers: int(p.workers.Load()),
		Busy:    int(p.busy.Load()),
		Queued:  len(p.queue),
	}
}

// Close stops all workers. Tasks still queued fail with ErrPoolClosed unless
// WaitOnShutdown is set.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()

	for {
		select {
		case j := <-p.queue:
			j.done <- ErrPoolClosed
		default:
			return
		}
	}
}
