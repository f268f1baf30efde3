package vm

import (
	"errors"
	"fmt"
)

var ErrWorkerStopped = errors.New("vm: worker stopped")

type workerRequest struct {
	fn   func(*VM) (any, error)
	done chan workerResult
}

type workerResult struct {
	value any
	err   error
}

// Worker serializes VM access through a single goroutine. Handle scopes
// belong to the goroutine that opened them, so code on several goroutines
// that shares a scope submits its work here.
type Worker struct {
	vm       *VM
	requests chan workerRequest
	quit     chan struct{}
}

// NewWorker creates a Worker and starts its goroutine.
func NewWorker(v *VM) *Worker {
	w := &Worker{
		vm:       v,
		requests: make(chan workerRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn, turning a panic into an error.
func (w *Worker) execute(fn func(*VM) (any, error)) (result workerResult) {
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("vm: worker: panic: %v", r)
		}
	}()
	result.value, result.err = fn(w.vm)
	return result
}

// Do runs fn on the worker goroutine and waits for it.
func (w *Worker) Do(fn func(*VM) (any, error)) (any, error) {
	select {
	case <-w.quit:
		return nil, ErrWorkerStopped
	default:
	}

	req := workerRequest{fn: fn, done: make(chan workerResult, 1)}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
	select {
	case res := <-req.done:
		return res.value, res.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
}

// Stop shuts down the worker goroutine. Scopes it opened stay open.
func (w *Worker) Stop() {
	close(w.quit)
}

// VM returns the underlying VM, for access that does not touch scopes.
func (w *Worker) VM() *VM {
	return w.vm
}
