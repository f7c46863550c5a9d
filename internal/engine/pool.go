package engine

import (
	"context"
	"sync"

	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Pool manages a fixed set of reusable engine sessions. Its size is the
// evaluator's concurrency budget: at most size evaluations run at once, one
// per session.
type Pool struct {
	path    string
	size    int
	engines chan *Engine
	mu      sync.Mutex
	closed  bool
	log     *logger.Logger
}

// NewPool creates a pool with the specified number of engine sessions.
func NewPool(path string, size int) (*Pool, error) {
	if size <= 0 {
		size = 2
	}
	log := logger.Default().WithPrefix("engine-pool")

	pool := &Pool{
		path:    path,
		size:    size,
		engines: make(chan *Engine, size),
		log:     log,
	}

	// Pre-warm the pool
	log.Info("initializing engine pool with %d sessions", size)
	for i := 0; i < size; i++ {
		eng, err := NewEngine(path)
		if err != nil {
			pool.Close() // Clean up any already-created engines
			return nil, err
		}
		pool.engines <- eng
	}
	log.Info("engine pool ready")
	return pool, nil
}

// Size returns the pool's session count.
func (p *Pool) Size() int {
	return p.size
}

// Acquire gets an engine from the pool, blocking if none are available.
func (p *Pool) Acquire(ctx context.Context) (*Engine, error) {
	select {
	case eng := <-p.engines:
		return eng, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool. The mutex covers both the closed
// check and the send so a concurrent Close cannot close the channel in
// between.
func (p *Pool) Release(eng *Engine) {
	if eng == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		// Pool is closed, close the engine
		eng.Close()
		return
	}
	select {
	case p.engines <- eng:
		// Returned to pool
	default:
		// Pool full, close the engine
		eng.Close()
	}
}

// Evaluate acquires a session, evaluates, and releases it back. The release
// runs on every exit path so a failed evaluation never leaks a process.
func (p *Pool) Evaluate(ctx context.Context, fen string, depth int) (EvalResult, error) {
	eng, err := p.Acquire(ctx)
	if err != nil {
		return EvalResult{}, err
	}
	defer p.Release(eng)

	return eng.Evaluate(ctx, fen, depth)
}

// Close shuts down all engines in the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	p.log.Info("closing engine pool")
	close(p.engines)
	for eng := range p.engines {
		eng.Close()
	}
}

// Available returns how many sessions are currently idle.
func (p *Pool) Available() int {
	return len(p.engines)
}

var _ Evaluator = (*Pool)(nil)
var _ Evaluator = (*Engine)(nil)
