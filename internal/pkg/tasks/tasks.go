package tasks

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Runner accepts background work whose outcome the caller never waits on.
// The redirect path submits cache population and scan logging through it.
type Runner interface {
	Submit(name string, fn func())
}

type task struct {
	name string
	fn   func()
}

// Pool is a bounded-queue worker pool. A full queue drops the task instead
// of blocking the submitter, and so does a Submit after Close.
type Pool struct {
	queue  chan task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}

	p := &Pool{
		queue: make(chan task, queueSize),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for t := range p.queue {
		p.exec(t)
	}
}

func (p *Pool) exec(t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", t.name).Interface("panic", r).Msg("recovered from panic in background task")
		}
	}()
	t.fn()
}

func (p *Pool) Submit(name string, fn func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		log.Warn().Str("task", name).Msg("pool closed, dropping task")
		return
	}

	select {
	case p.queue <- task{name: name, fn: fn}:
	default:
		log.Warn().Str("task", name).Msg("background queue full, dropping task")
	}
}

// Close stops accepting work and waits for in-flight tasks to finish.
// Submissions after Close are dropped, never a panic.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.queue)
	p.wg.Wait()
}

// Sync runs tasks inline. Used in tests where side effects must be
// observable immediately.
type Sync struct{}

func (Sync) Submit(name string, fn func()) {
	fn()
}
