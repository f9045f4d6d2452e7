package app

import "sync"

// chatLocks hands out one mutex per chat so that at most one update
// transaction is in flight per chat. Different chats never block each
// other. Locks are created on first use and kept for the process lifetime;
// the map is bounded by the number of chats seen.
type chatLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (c *chatLocks) get(chatID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[int64]*sync.Mutex)
	}
	l, ok := c.m[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.m[chatID] = l
	}
	return l
}
