package tasks

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewPool(2, 16)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Submit("count", func() {
			defer wg.Done()
			count.Add(1)
		})
	}

	wg.Wait()
	pool.Close()
	assert.EqualValues(t, 10, count.Load())
}

func TestPool_RecoversFromPanic(t *testing.T) {
	pool := NewPool(1, 4)

	done := make(chan struct{})
	pool.Submit("boom", func() {
		panic("boom")
	})
	pool.Submit("after", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive the panic")
	}
	pool.Close()
}

func TestPool_DropsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)

	block := make(chan struct{})
	pool.Submit("blocker", func() { <-block })

	// Fill the queue, then overflow it; Submit must not block.
	pool.Submit("queued", func() {})
	doneBefore := time.Now()
	pool.Submit("dropped", func() {})
	assert.Less(t, time.Since(doneBefore), 100*time.Millisecond)

	close(block)
	pool.Close()
}

func TestPool_SubmitAfterCloseIsDropped(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Close()

	assert.NotPanics(t, func() {
		pool.Submit("late", func() {})
	})

	// Close is idempotent.
	assert.NotPanics(t, pool.Close)
}

func TestSync_RunsInline(t *testing.T) {
	var ran bool
	Sync{}.Submit("inline", func() { ran = true })
	assert.True(t, ran)
}
