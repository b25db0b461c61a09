package catalog

import (
	"sync"
	"time"
)

// pacer spaces outbound ERP calls so the scroll loop never exceeds the
// configured requests-per-second budget.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	lastSlot time.Time
}

func newPacer(requestsPerSecond int) *pacer {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &pacer{interval: time.Second / time.Duration(requestsPerSecond)}
}

// wait claims the next free slot and blocks until it arrives. Safe for
// concurrent use; slots are handed out in call order.
func (p *pacer) wait() {
	p.mu.Lock()
	slot := p.lastSlot.Add(p.interval)
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	p.lastSlot = slot
	p.mu.Unlock()

	if d := time.Until(slot); d > 0 {
		time.Sleep(d)
	}
}
