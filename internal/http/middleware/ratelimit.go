package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	start time.Time
	count int
}

// memoryWindow is the in-process fixed-window counter used when Redis is
// not available.
type memoryWindow struct {
	mu      sync.Mutex
	window  time.Duration
	clients map[string]*clientInfo
	seen    int
}

func newMemoryWindow(window time.Duration) *memoryWindow {
	return &memoryWindow{window: window, clients: make(map[string]*clientInfo)}
}

// hit counts one request for key and returns the count inside the current
// window.
func (m *memoryWindow) hit(key string, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seen++
	if m.seen%1000 == 0 {
		m.sweep(now)
	}

	ci, ok := m.clients[key]
	if !ok || now.Sub(ci.start) > m.window {
		m.clients[key] = &clientInfo{start: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

func (m *memoryWindow) sweep(now time.Time) {
	for k, ci := range m.clients {
		if now.Sub(ci.start) > m.window {
			delete(m.clients, k)
		}
	}
}
