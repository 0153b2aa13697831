package intake

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	if sess, err := store.Get(ctx, 1); err != nil || sess != nil {
		t.Fatalf("Get on empty store = (%v, %v), want (nil, nil)", sess, err)
	}

	if err := store.Put(ctx, &Session{ChatID: 1, Step: StepAwaitingContact, Name: "Alice"}); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	sess, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if sess == nil || sess.Step != StepAwaitingContact || sess.Name != "Alice" {
		t.Fatalf("Get = %+v", sess)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if sess, _ := store.Get(ctx, 1); sess != nil {
		t.Fatal("session should be gone after Delete")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	ctx := context.Background()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	store.Put(ctx, &Session{ChatID: 5, Step: StepAwaitingName})

	current = current.Add(9 * time.Minute)
	if sess, _ := store.Get(ctx, 5); sess == nil {
		t.Fatal("session should survive inside the TTL")
	}

	current = current.Add(2 * time.Minute)
	if sess, _ := store.Get(ctx, 5); sess != nil {
		t.Fatal("expired session should read as nil")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	store.Put(ctx, &Session{ChatID: 1, Step: StepAwaitingName})
	store.Put(ctx, &Session{ChatID: 2, Step: StepAwaitingIssue})

	current = current.Add(2 * time.Minute)
	store.Put(ctx, &Session{ChatID: 3, Step: StepAwaitingName})

	if removed := store.Sweep(); removed != 2 {
		t.Fatalf("Sweep removed %d, want 2", removed)
	}
	if sess, _ := store.Get(ctx, 3); sess == nil {
		t.Fatal("fresh session should survive the sweep")
	}
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteStore error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if sess, err := store.Get(ctx, 1); err != nil || sess != nil {
		t.Fatalf("Get on empty store = (%v, %v), want (nil, nil)", sess, err)
	}

	if err := store.Put(ctx, &Session{ChatID: 1, Step: StepAwaitingIssue, Name: "Bob", Contact: "555"}); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	// Upsert overwrites.
	if err := store.Put(ctx, &Session{ChatID: 1, Step: StepAwaitingIssue, Name: "Bob", Contact: "556"}); err != nil {
		t.Fatalf("second Put error = %v", err)
	}

	sess, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if sess == nil || sess.Name != "Bob" || sess.Contact != "556" || sess.Step != StepAwaitingIssue {
		t.Fatalf("Get = %+v", sess)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if sess, _ := store.Get(ctx, 1); sess != nil {
		t.Fatal("session should be gone after Delete")
	}
}

func TestSQLiteStoreTTL(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), 10*time.Minute)
	if err != nil {
		t.Fatalf("NewSQLiteStore error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	store.Put(ctx, &Session{ChatID: 9, Step: StepAwaitingContact, Name: "Eve"})

	current = current.Add(11 * time.Minute)
	if sess, _ := store.Get(ctx, 9); sess != nil {
		t.Fatal("expired session should read as nil")
	}
}
