package registry

import (
	"context"
	"testing"
	"time"
)

func TestWatcherInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	d := testDigest(1)
	rec := Record{Scope: testScope, Digest: d, Mode: ModePersistent, Valid: true}
	if err := s.Put(rec); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(s)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Revoke out-of-band, as the admin CLI would.
	other, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec.Valid = false
	if err := other.Put(rec); err != nil {
		t.Fatal(err)
	}

	// The 500ms debounce plus inotify delivery. Poll rather than
	// sleeping a fixed amount.
	deadline := time.After(5 * time.Second)
	for {
		got, err := s.Get(testScope, d)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !got.Valid {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher never invalidated the cache")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not stop after cancellation")
	}
}
