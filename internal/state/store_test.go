package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshot_ReturnsSeededValue(t *testing.T) {
	t.Parallel()

	store := New(42)
	require.Equal(t, 42, store.Snapshot())
}

func TestSet_ReplacesValue(t *testing.T) {
	t.Parallel()

	store := New(1)
	store.Set(2)
	require.Equal(t, 2, store.Snapshot())
}

func TestUpdate_AppliesFunctionAtomically(t *testing.T) {
	t.Parallel()

	store := New(0)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	require.Equal(t, 50, store.Snapshot())
}

func TestObserveWhile_CompletesImmediatelyWhenAlreadyFalse(t *testing.T) {
	t.Parallel()

	store := New(-1)
	err := store.ObserveWhile(context.Background(), func(v int) bool { return v >= 0 })
	require.NoError(t, err)
}

func TestObserveWhile_BlocksUntilClauseTurnsFalse(t *testing.T) {
	t.Parallel()

	store := New(5)
	done := make(chan error, 1)
	go func() {
		done <- store.ObserveWhile(context.Background(), func(v int) bool { return v >= 0 })
	}()

	store.Set(3)
	select {
	case err := <-done:
		t.Fatalf("observer completed while the clause still held: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	store.Set(-1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("observer did not complete after the clause turned false")
	}
}

func TestObserveWhile_ReturnsContextError(t *testing.T) {
	t.Parallel()

	store := New(5)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- store.ObserveWhile(ctx, func(v int) bool { return v >= 0 })
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("observer did not honor cancellation")
	}
}

func TestObserveWhile_WakesAllObservers(t *testing.T) {
	t.Parallel()

	store := New(5)
	const observers = 8
	done := make(chan error, observers)
	for range observers {
		go func() {
			done <- store.ObserveWhile(context.Background(), func(v int) bool { return v >= 0 })
		}()
	}

	store.Set(-1)
	for range observers {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("an observer missed the broadcast")
		}
	}
}
