package syncer

import "sync"

// ProgressObserver receives (done, total) updates while a channel is primed.
// Updates arrive from a single goroutine and done never decreases.
type ProgressObserver interface {
	Progress(done, total int)
}

// ProgressFunc adapts a plain function to ProgressObserver.
type ProgressFunc func(done, total int)

func (f ProgressFunc) Progress(done, total int) {
	f(done, total)
}

type nopObserver struct{}

func (nopObserver) Progress(int, int) {}

type Progress struct {
	Done  int
	Total int
}

// ProgressChannel publishes updates on a bounded channel for a reader that
// polls at its own pace. Sends never block: when the buffer is full the
// oldest pending update is discarded, so the newest one is always readable.
type ProgressChannel struct {
	mu     sync.Mutex
	ch     chan Progress
	closed bool
}

func NewProgressChannel(size int) *ProgressChannel {
	return &ProgressChannel{ch: make(chan Progress, max(size, 1))}
}

// C returns the channel updates are delivered on. It is closed by Close.
func (p *ProgressChannel) C() <-chan Progress {
	return p.ch
}

func (p *ProgressChannel) Progress(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	update := Progress{Done: done, Total: total}
	for {
		select {
		case p.ch <- update:
			return
		default:
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

func (p *ProgressChannel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
}
