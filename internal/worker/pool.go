// Package worker runs chat commands on a bounded pool of goroutines.
// Gateway event handlers enqueue and return immediately; a full queue sheds
// the command so the caller can answer with a busy reply instead of piling
// up upstream requests.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankedbot_jobs_enqueued_total",
		Help: "Total number of command jobs accepted by the pool",
	})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankedbot_jobs_processed_total",
		Help: "Total number of command jobs run, by command",
	}, []string{"command"})

	jobsPanicked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankedbot_jobs_panicked_total",
		Help: "Total number of command jobs that panicked",
	})

	jobsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankedbot_jobs_load_shed_total",
		Help: "Total number of command jobs dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rankedbot_worker_queue_depth",
		Help: "Current depth of the command queue",
	})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rankedbot_job_duration_seconds",
		Help:    "Duration of command jobs",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
)

// Job is a unit of work for the pool.
type Job struct {
	ID      string
	Command string
	// Timeout bounds Run; zero means the pool's default.
	Timeout time.Duration
	Run     func(ctx context.Context)
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount    int
	QueueSize      int
	DefaultTimeout time.Duration
	Logger         *zap.Logger
}

// Pool manages a pool of workers running command jobs.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop stops accepting jobs, drains the queue and waits for running jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")

		p.mu.Lock()
		p.stopped = true
		close(p.jobQueue)
		p.mu.Unlock()

		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds a job without blocking. It returns false when the queue is
// full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.logger.Warnw("Worker pool stopped, dropping job", "command", job.Command, "job_id", job.ID)
		return false
	}

	select {
	case p.jobQueue <- job:
		jobsEnqueued.Inc()
		return true
	default:
		jobsLoadShed.Inc()
		p.logger.Warnw("Command queue full, shedding job", "command", job.Command, "job_id", job.ID)
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		p.run(id, job)
	}
}

// run executes one job under its timeout. A panicking job is logged and
// does not take the worker down.
func (p *Pool) run(id int, job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = p.config.DefaultTimeout
	}

	base := p.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			jobsPanicked.Inc()
			p.logger.Errorw("Command job panicked", "worker", id, "command", job.Command, "job_id", job.ID, "panic", r)
		}
		jobsProcessed.WithLabelValues(job.Command).Inc()
		jobDuration.WithLabelValues(job.Command).Observe(time.Since(start).Seconds())
	}()

	job.Run(ctx)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
