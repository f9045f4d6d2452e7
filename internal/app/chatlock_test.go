package app

import (
	"sync"
	"testing"
)

func TestChatLocksIdentity(t *testing.T) {
	var locks chatLocks

	a := locks.get(1)
	b := locks.get(1)
	if a != b {
		t.Error("expected the same mutex for the same chat")
	}
	if locks.get(2) == a {
		t.Error("expected distinct mutexes for distinct chats")
	}
}

func TestChatLocksConcurrentGet(t *testing.T) {
	var locks chatLocks
	var wg sync.WaitGroup

	out := make([]*sync.Mutex, 32)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = locks.get(7)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(out); i++ {
		if out[i] != out[0] {
			t.Fatal("concurrent gets returned different mutexes for one chat")
		}
	}
}
