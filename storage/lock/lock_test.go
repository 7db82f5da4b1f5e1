package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "doc-1")
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed, ok=%v err=%v", ok, err)
	}

	if _, ok, _ := l.Acquire(ctx, "doc-1"); ok {
		t.Error("second acquire of a held key should fail")
	}
	if r, ok, _ := l.Acquire(ctx, "doc-2"); !ok {
		t.Error("different key should be free")
	} else {
		r()
	}

	release()
	release() // idempotent

	r, ok, _ := l.Acquire(ctx, "doc-1")
	if !ok {
		t.Fatal("key should be free after release")
	}
	r()
}

func TestLocalLockerConcurrent(t *testing.T) {
	l := NewLocalLocker()
	var winners int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := l.Acquire(context.Background(), "doc"); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
}
