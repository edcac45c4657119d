package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "test", p.Name())
	assert.Equal(t, DefaultPool, p.Type())
	assert.Equal(t, 1000, p.Cap())
}

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("test", DefaultPool, &Config{
		Capacity:       10,
		ExpiryDuration: 5 * time.Second,
	})
	require.NoError(t, err)
	defer p.Release()

	var counter atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int32(100), counter.Load())

	stats := p.Stats()
	assert.Equal(t, int64(100), stats.CompletedTasks)
}

func TestPoolSubmitAfterRelease(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)

	p.Release()
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPoolNonblockingOverload(t *testing.T) {
	p, err := NewPool("test", DefaultPool, &Config{
		Capacity:       1,
		ExpiryDuration: time.Second,
		Nonblocking:    true,
	})
	require.NoError(t, err)
	defer p.Release()

	block := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-block }))

	// The single worker is busy, a nonblocking submit must be rejected.
	var rejected bool
	for i := 0; i < 10; i++ {
		if err := p.Submit(func() {}); err == ErrPoolOverload {
			rejected = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(block)
	assert.True(t, rejected)
}

func TestSubmitWithContextCanceled(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.SubmitWithContext(ctx, func() {
		t.Error("task must not run with canceled context")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolRecoversPanic(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)
	defer p.Release()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	// The pool must survive a panicking task.
	var ran atomic.Bool
	wg.Add(1)
	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		ran.Store(true)
	}))
	wg.Wait()
	assert.True(t, ran.Load())
}

func TestManagerRegisterAndGet(t *testing.T) {
	m := NewManager()
	defer m.ReleaseAll()

	require.NoError(t, m.RegisterWithType(BackgroundPool, BackgroundPoolConfig()))

	p, err := m.GetByType(BackgroundPool)
	require.NoError(t, err)
	assert.Equal(t, string(BackgroundPool), p.Name())

	err = m.RegisterWithType(BackgroundPool, BackgroundPoolConfig())
	assert.ErrorIs(t, err, ErrPoolAlreadyExists)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestManagerStats(t *testing.T) {
	m := NewManager()
	defer m.ReleaseAll()

	require.NoError(t, m.RegisterWithType(DefaultPool, DefaultPoolConfig()))

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, m.SubmitToDefault(func() { wg.Done() }))
	wg.Wait()

	stats := m.Stats()
	require.Contains(t, stats, string(DefaultPool))
	assert.Equal(t, int64(1), stats[string(DefaultPool)].SubmittedTasks)
}

func TestGlobalManagerLifecycle(t *testing.T) {
	ResetGlobal()
	defer ResetGlobal()

	require.NoError(t, InitGlobal())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, SubmitToType(BackgroundPool, func() { wg.Done() }))
	wg.Wait()

	assert.NotNil(t, StatsGlobal())
	require.NoError(t, CloseGlobal())
}
