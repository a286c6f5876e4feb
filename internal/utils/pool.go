// Package utils holds small pieces of ambient infrastructure shared
// across the server.
package utils

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction processes one task handed off by the pool.
type WorkerFunction = func(t *tomb.Tomb, task any) error

// WorkerPool runs a fixed number of goroutines pulling off a shared
// task channel, tracked by a tomb.Tomb so the whole pool tears down
// cleanly when the server shuts down.
type WorkerPool struct {
	n     int
	tasks chan any
}

func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{
		tasks: make(chan any, taskChanSize),
		n:     size,
	}
}

// AddTask enqueues a task for the next free worker. Blocks if the queue
// is full: callers that need a non-blocking handoff should select on
// t.Dying() alongside this send.
func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// Setup launches the pool's workers on t, once. Each worker runs until
// the tomb starts dying or its work function returns an error; a worker
// that exits is not replaced, and its error kills t.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	log.Info().Int("workers", pool.n).Msg("starting worker pool")
	for i := 0; i < pool.n; i++ {
		t.Go(func() error { return pool.run(t, work) })
	}
}

func (pool *WorkerPool) run(t *tomb.Tomb, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
