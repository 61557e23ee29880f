package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task représente une tâche à exécuter
type Task func(ctx context.Context) error

// WorkerPool gère un pool de workers pour traiter des tâches en parallèle
// Un pool sert un seul lot: Start, Submit..., Wait
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu   sync.Mutex
	errs []error
}

// NewWorkerPool crée un nouveau pool de workers lié au contexte parent
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// worker est la routine d'exécution des tâches
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.tasks {
		if wp.ctx.Err() != nil {
			// Pool arrêté: on vide le canal sans exécuter
			continue
		}
		if err := task(wp.ctx); err != nil {
			wp.mu.Lock()
			wp.errs = append(wp.errs, err)
			wp.mu.Unlock()
		}
	}
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool
func (wp *WorkerPool) Submit(task Task) error {
	if err := wp.ctx.Err(); err != nil {
		return fmt.Errorf("worker pool is stopped: %w", err)
	}
	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is stopped: %w", wp.ctx.Err())
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme le canal de tâches, attend la fin des workers et retourne les erreurs jointes
func (wp *WorkerPool) Wait() error {
	close(wp.tasks)
	wp.wg.Wait()
	wp.cancel()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	return errors.Join(wp.errs...)
}

// Stop annule les tâches en attente; Wait doit encore être appelé pour libérer les workers
func (wp *WorkerPool) Stop() {
	wp.cancel()
}
