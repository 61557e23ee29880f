package infrastructure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 4)
	wp.Start()

	var done int64
	for i := 0; i < 100; i++ {
		if err := wp.Submit(func(ctx context.Context) error {
			atomic.AddInt64(&done, 1)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := wp.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if done != 100 {
		t.Fatalf("executed %d tasks, want 100", done)
	}
}

func TestWorkerPool_CollectsErrors(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 2)
	wp.Start()

	errA := errors.New("a")
	errB := errors.New("b")
	_ = wp.Submit(func(ctx context.Context) error { return errA })
	_ = wp.Submit(func(ctx context.Context) error { return nil })
	_ = wp.Submit(func(ctx context.Context) error { return errB })

	err := wp.Wait()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("Wait() = %v, want both task errors", err)
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 1)
	wp.Start()
	wp.Stop()

	if err := wp.Submit(func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("Submit on a stopped pool must fail")
	}
	_ = wp.Wait()
}

// BenchmarkWorkerPool_4Workers_FastTasks teste avec 4 workers (défaut de l'export)
func BenchmarkWorkerPool_4Workers_FastTasks(b *testing.B) {
	wp := NewWorkerPool(context.Background(), 4)
	wp.Start()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = wp.Submit(func(ctx context.Context) error {
			_ = 1 + 1
			return nil
		})
	}
	_ = wp.Wait()
}
