package statusbar

import (
	"sync"
	"time"
)

// Pipeline intervals. Position bursts (a drag emits many) collapse into one
// ordering refresh per window; saves wait until the bar has been quiet for
// the longer interval so interactive changes don't hammer the store.
const (
	positionCoalesceInterval = 100 * time.Millisecond
	saveDebounceInterval     = time.Second
)

// UpdatePipeline turns high-frequency item events into low-frequency side
// effects: trailing-edge coalescing for position changes and a restarting
// debounce for saves. Replacing the bar's collection invalidates all pending
// timers via a generation counter, so a timer scheduled against a replaced
// collection never fires.
type UpdatePipeline struct {
	bar *StatusBar

	positionInterval time.Duration
	saveInterval     time.Duration

	events chan Event
	done   chan struct{}

	mu            sync.Mutex
	generation    int
	positionTimer *time.Timer
	saveTimer     *time.Timer
	stopped       bool
}

// NewUpdatePipeline creates a pipeline, wires it to the bar's current items,
// and starts dispatching.
func NewUpdatePipeline(bar *StatusBar) *UpdatePipeline {
	return newUpdatePipeline(bar, positionCoalesceInterval, saveDebounceInterval)
}

func newUpdatePipeline(bar *StatusBar, positionInterval, saveInterval time.Duration) *UpdatePipeline {
	p := &UpdatePipeline{
		bar:              bar,
		positionInterval: positionInterval,
		saveInterval:     saveInterval,
		events:           make(chan Event, 64),
		done:             make(chan struct{}),
	}
	bar.attach(p)
	go p.dispatch()
	return p
}

func (p *UpdatePipeline) dispatch() {
	for {
		select {
		case <-p.done:
			return
		case event := <-p.events:
			switch event.Kind {
			case EventPositionChanged:
				p.schedulePositionFlush()
			}
		}
	}
}

// schedulePositionFlush arms the coalescing timer if it isn't already
// armed. Further position events within the window ride along; the flush
// reads the latest positions at fire time.
func (p *UpdatePipeline) schedulePositionFlush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.positionTimer != nil {
		return
	}

	generation := p.generation
	p.positionTimer = time.AfterFunc(p.positionInterval, func() {
		p.mu.Lock()
		stale := p.stopped || generation != p.generation
		p.positionTimer = nil
		p.mu.Unlock()

		if stale {
			return
		}
		p.bar.RefreshOrdering()
	})
}

// saveNeeded restarts the save debounce timer. The bar calls this whenever
// its dirty flag is set; the write happens only once the flag has stayed set
// through a full quiet interval.
func (p *UpdatePipeline) saveNeeded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	if p.saveTimer != nil {
		p.saveTimer.Stop()
	}
	generation := p.generation
	p.saveTimer = time.AfterFunc(p.saveInterval, func() {
		p.mu.Lock()
		stale := p.stopped || generation != p.generation
		p.saveTimer = nil
		p.mu.Unlock()

		if stale {
			return
		}
		_ = p.bar.SaveIfNeeded()
	})
}

// rewire invalidates every pending timer. The bar calls this while replacing
// its collection; the items themselves are re-pointed at the pipeline's
// channel by the bar, so there is no per-item subscription to rebuild here
// beyond cancelling what targeted the old instances.
func (p *UpdatePipeline) rewire() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.positionTimer != nil {
		p.positionTimer.Stop()
		p.positionTimer = nil
	}
	if p.saveTimer != nil {
		p.saveTimer.Stop()
		p.saveTimer = nil
	}
}

// stop cancels all timers and ends dispatch. The pipeline cannot be reused.
func (p *UpdatePipeline) stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.generation++
	if p.positionTimer != nil {
		p.positionTimer.Stop()
		p.positionTimer = nil
	}
	if p.saveTimer != nil {
		p.saveTimer.Stop()
		p.saveTimer = nil
	}
	p.mu.Unlock()

	close(p.done)
}
