package services

import (
	"context"
	"testing"
)

func TestSyncQueueProcessesInline(t *testing.T) {
	queue := NewSyncQueue()

	var got *ArchiveJob
	queue.SetProcessor(func(ctx context.Context, job *ArchiveJob) error {
		got = job
		return nil
	})

	job := &ArchiveJob{ProjectID: 7, ArchivedBy: 3}
	if err := queue.Enqueue(job); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if got == nil {
		t.Fatal("processor was not invoked")
	}
	if got.ProjectID != 7 || got.ArchivedBy != 3 {
		t.Errorf("unexpected job: %+v", got)
	}
	if queue.IsAsync() {
		t.Error("sync queue must report IsAsync false")
	}
}

func TestSyncQueueWithoutProcessorDropsJob(t *testing.T) {
	queue := NewSyncQueue()

	if err := queue.Enqueue(&ArchiveJob{ProjectID: 1}); err != nil {
		t.Fatalf("enqueue without processor should not error: %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
