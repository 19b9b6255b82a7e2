package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockClickStore struct {
	mu         sync.Mutex
	totals     map[string]int
	shouldFail bool
	callCount  atomic.Int32
}

func (m *MockClickStore) IncrementClicks(_ context.Context, counts map[string]int) error {
	m.callCount.Add(1)

	if m.shouldFail {
		return assert.AnError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.totals == nil {
		m.totals = make(map[string]int)
	}
	for code, n := range counts {
		m.totals[code] += n
	}

	return nil
}

func (m *MockClickStore) Total(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[code]
}

func (m *MockClickStore) GetCallCount() int {
	return int(m.callCount.Load())
}

func TestNewClickWorkerPool(t *testing.T) {
	config := DefaultConfig()

	pool := NewClickWorkerPool(&MockClickStore{}, config)

	assert.NotNil(t, pool)
	assert.Equal(t, config.WorkerCount, pool.workerCount)
	assert.Equal(t, config.BatchSize, pool.batchSize)
	assert.Equal(t, config.BatchTimeout, pool.batchTimeout)
	assert.Equal(t, config.BufferSize, cap(pool.events))
}

func TestClickWorkerPool_FlushOnTimeout(t *testing.T) {
	store := &MockClickStore{}
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	require.True(t, pool.Track("abc123"))
	require.True(t, pool.Track("abc123"))

	assert.Eventually(t, func() bool {
		return store.Total("abc123") == 2
	}, time.Second, 10*time.Millisecond)
}

func TestClickWorkerPool_FlushOnBatchSize(t *testing.T) {
	store := &MockClickStore{}
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    3,
		BatchTimeout: time.Hour,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	for i := 0; i < 3; i++ {
		require.True(t, pool.Track("code01"))
	}

	assert.Eventually(t, func() bool {
		return store.Total("code01") == 3
	}, time.Second, 10*time.Millisecond)
}

func TestClickWorkerPool_ConcurrentTrack(t *testing.T) {
	store := &MockClickStore{}
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  4,
		BufferSize:   1000,
		BatchSize:    20,
		BatchTimeout: 50 * time.Millisecond,
	})
	pool.Start()

	const goroutines = 10
	const hitsPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < hitsPerGoroutine; j++ {
				assert.True(t, pool.Track("shared"))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, pool.Shutdown(2*time.Second))
	assert.Equal(t, goroutines*hitsPerGoroutine, store.Total("shared"))
}

func TestClickWorkerPool_ShutdownDrains(t *testing.T) {
	store := &MockClickStore{}
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  2,
		BufferSize:   10,
		BatchSize:    100,
		BatchTimeout: time.Hour,
	})
	pool.Start()

	pool.Track("a")
	pool.Track("b")

	require.NoError(t, pool.Shutdown(time.Second))
	assert.Equal(t, 1, store.Total("a"))
	assert.Equal(t, 1, store.Total("b"))

	assert.False(t, pool.Track("a"), "hits after shutdown are dropped")
	assert.NoError(t, pool.Shutdown(time.Second), "second shutdown is a no-op")
}

func TestClickWorkerPool_QueueFull(t *testing.T) {
	pool := NewClickWorkerPool(&MockClickStore{}, Config{
		WorkerCount:  1,
		BufferSize:   1,
		BatchSize:    10,
		BatchTimeout: time.Second,
	})

	assert.True(t, pool.Track("x"))
	assert.False(t, pool.Track("x"))

	stats := pool.Stats()
	assert.Equal(t, 1, stats.QueueSize)
	assert.Equal(t, 1, stats.QueueCap)
}

func TestClickWorkerPool_StoreError(t *testing.T) {
	store := &MockClickStore{shouldFail: true}
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    1,
		BatchTimeout: time.Second,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	require.True(t, pool.Track("x"))

	assert.Eventually(t, func() bool {
		return store.GetCallCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 2, config.WorkerCount)
	assert.Equal(t, 1024, config.BufferSize)
	assert.Equal(t, 50, config.BatchSize)
	assert.Equal(t, 2*time.Second, config.BatchTimeout)
}
