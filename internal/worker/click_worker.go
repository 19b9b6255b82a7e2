package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ClickStore persists aggregated click deltas.
type ClickStore interface {
	IncrementClicks(ctx context.Context, counts map[string]int) error
}

// ClickWorkerPool aggregates redirect hits per short code and flushes them
// to the store in batches.
type ClickWorkerPool struct {
	store        ClickStore
	events       chan string
	batchSize    int
	batchTimeout time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	closeMu      sync.RWMutex
	closed       bool
}

type Config struct {
	WorkerCount  int           // number of workers
	BufferSize   int           // event channel capacity
	BatchSize    int           // hits accumulated before a flush
	BatchTimeout time.Duration // max time a hit waits before a flush
}

func DefaultConfig() Config {
	return Config{
		WorkerCount:  2,
		BufferSize:   1024,
		BatchSize:    50,
		BatchTimeout: 2 * time.Second,
	}
}

func NewClickWorkerPool(store ClickStore, config Config) *ClickWorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &ClickWorkerPool{
		store:        store,
		events:       make(chan string, config.BufferSize),
		batchSize:    config.BatchSize,
		batchTimeout: config.BatchTimeout,
		workerCount:  config.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *ClickWorkerPool) Start() {
	log.Info().
		Int("workers", p.workerCount).
		Int("batchSize", p.batchSize).
		Dur("batchTimeout", p.batchTimeout).
		Msg("Starting click worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *ClickWorkerPool) worker(id int) {
	defer p.wg.Done()

	batch := make(map[string]int)
	pending := 0
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if pending == 0 {
			return
		}

		// The pool context may already be cancelled during shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.store.IncrementClicks(ctx, batch); err != nil {
			log.Error().
				Err(err).
				Int("workerID", id).
				Int("codes", len(batch)).
				Int("hits", pending).
				Msg("Failed to flush clicks")
		} else {
			log.Debug().
				Int("workerID", id).
				Int("codes", len(batch)).
				Int("hits", pending).
				Msg("Clicks flushed")
		}

		batch = make(map[string]int)
		pending = 0
	}

	stopTimer := func() {
		if timer != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerC = nil
	}

	startTimer := func() {
		stopTimer()
		if timer == nil {
			timer = time.NewTimer(p.batchTimeout)
		} else {
			timer.Reset(p.batchTimeout)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-p.ctx.Done():
			flush()
			stopTimer()
			return

		case code, ok := <-p.events:
			if !ok {
				flush()
				stopTimer()
				return
			}

			if pending == 0 {
				startTimer()
			}
			batch[code]++
			pending++

			if pending >= p.batchSize {
				flush()
				stopTimer()
			}

		case <-timerC:
			timerC = nil
			flush()
		}
	}
}

// Track records one hit. It never blocks the caller: when the queue is full
// or the pool is shutting down the hit is dropped and false is returned.
func (p *ClickWorkerPool) Track(code string) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed {
		return false
	}

	select {
	case p.events <- code:
		return true
	default:
		log.Warn().Str("code", code).Msg("Click queue is full, dropping hit")
		return false
	}
}

// Shutdown stops accepting hits and waits for workers to flush what they hold.
func (p *ClickWorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		log.Info().Msg("Shutting down click worker pool")

		p.closeMu.Lock()
		p.closed = true
		close(p.events)
		p.closeMu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Info().Msg("Click worker pool shut down gracefully")
		case <-time.After(timeout):
			log.Warn().Msg("Click worker pool shutdown timeout, forcing shutdown")
			p.cancel()
			<-done
			shutdownErr = context.DeadlineExceeded
		}
		p.cancel()
	})

	return shutdownErr
}

func (p *ClickWorkerPool) Stats() PoolStats {
	return PoolStats{
		QueueSize:   len(p.events),
		QueueCap:    cap(p.events),
		WorkerCount: p.workerCount,
	}
}

type PoolStats struct {
	QueueSize   int
	QueueCap    int
	WorkerCount int
}
