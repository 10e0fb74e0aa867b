package timeline

import (
	"sync"
	"time"

	"github.com/fogleman/ease"
	"k8s.io/utils/clock"
)

// DefaultFlashDuration is how long a beat flash stays lit.
const DefaultFlashDuration = 90 * time.Millisecond

// Flash is the beat indicator. It lights up on Fire and goes dark on its own
// once the duration has passed, whether or not anybody looks at it.
type Flash struct {
	mu       sync.Mutex
	clock    clock.PassiveClock
	duration time.Duration
	firedAt  time.Time
	fired    bool
}

// NewFlash returns a dark flash. A nil clock uses the real one; a
// non-positive duration uses DefaultFlashDuration.
func NewFlash(c clock.PassiveClock, duration time.Duration) *Flash {
	if c == nil {
		c = clock.RealClock{}
	}
	if duration <= 0 {
		duration = DefaultFlashDuration
	}
	return &Flash{clock: c, duration: duration}
}

// Duration returns how long the flash stays lit.
func (f *Flash) Duration() time.Duration {
	return f.duration
}

// Fire lights the flash, restarting the timer if it is already lit.
func (f *Flash) Fire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.firedAt = f.clock.Now()
	f.fired = true
}

// Clear turns the flash off immediately.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = false
}

// On reports whether the flash is lit.
func (f *Flash) On() bool {
	return f.elapsed() < f.duration
}

// Level is the eased brightness, 1 right after Fire and 0 once dark.
func (f *Flash) Level() float64 {
	e := f.elapsed()
	if e >= f.duration {
		return 0
	}
	return 1 - ease.OutQuad(float64(e)/float64(f.duration))
}

func (f *Flash) elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.fired {
		return f.duration
	}
	e := f.clock.Since(f.firedAt)
	if e < 0 {
		return 0
	}
	return e
}
