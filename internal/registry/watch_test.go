package registry

import (
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestWatchLifecycle(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{FS: os.DirFS(dir), Logger: zerolog.Nop()})

	if err := r.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := r.Watch(dir); err == nil {
		t.Fatal("second Watch() error = nil, want already watching")
	}

	r.Stop()
	r.Stop() // stopping a stopped registry is a no-op

	if err := r.Watch(dir); err != nil {
		t.Fatalf("Watch() after Stop() error = %v", err)
	}
	r.Stop()
}

func TestWatchWithoutFS(t *testing.T) {
	r := New(Config{Logger: zerolog.Nop()})
	if err := r.Watch(t.TempDir()); err == nil {
		t.Fatal("Watch() error = nil, want no backing filesystem error")
	}
}

func TestStopConcurrent(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{FS: os.DirFS(dir), Logger: zerolog.Nop()})
	if err := r.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop()
		}()
	}
	wg.Wait()
}
