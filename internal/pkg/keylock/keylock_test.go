package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSerializesSameKey(t *testing.T) {
	k := New()

	const workers = 20
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock("room-1")
			defer k.Unlock("room-1")

			// Classic read-modify-write; only safe if the lock works.
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	k := New()
	k.Lock("room-1")
	defer k.Unlock("room-1")

	done := make(chan struct{})
	go func() {
		k.Lock("room-2")
		k.Unlock("room-2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestEntriesAreReleased(t *testing.T) {
	k := New()
	k.Lock("room-1")
	k.Unlock("room-1")

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}

func TestUnlockWithoutLockPanics(t *testing.T) {
	k := New()
	assert.Panics(t, func() { k.Unlock("never-locked") })
}
