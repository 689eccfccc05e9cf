package bridge

import (
	"sync"
	"time"

	"castctl.app/castctl/internal/castdevice"
	"castctl.app/castctl/internal/mpris"
)

// DefaultWatermarkResolution is the rounding applied to the device's current
// time before deciding playback has genuinely started. Positions under half
// the resolution count as stopped.
const DefaultWatermarkResolution = 100 * time.Millisecond

// DurationTracker estimates track length for devices that omit it. It keeps
// the longest playback position observed and serves that as the duration
// until the device reports a real one. The watermark is the sole mutable
// state shared between the status-change hook and protocol reads, hence the
// mutex.
type DurationTracker struct {
	mu         sync.Mutex
	longest    mpris.Microseconds // NoDuration when empty
	resolution time.Duration
}

func NewDurationTracker(resolution time.Duration) *DurationTracker {
	if resolution <= 0 {
		resolution = DefaultWatermarkResolution
	}
	return &DurationTracker{
		longest:    mpris.NoDuration,
		resolution: resolution,
	}
}

// Duration returns the track length in the protocol time unit. A device-
// reported duration wins and leaves the watermark untouched; otherwise the
// watermark serves as a lower-bound estimate, advanced by the current
// position. NoDuration when nothing is known.
func (t *DurationTracker) Duration(status *castdevice.MediaStatus) mpris.Microseconds {
	if status != nil && status.Duration > 0 {
		return toMicroseconds(status.Duration)
	}

	current := position(status)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.longest > mpris.Beginning && t.longest > current {
		return t.longest
	}
	if current > mpris.Beginning {
		t.longest = current
		return current
	}

	return mpris.NoDuration
}

// Position returns the playback position, Beginning when unknown.
func (t *DurationTracker) Position(status *castdevice.MediaStatus) mpris.Microseconds {
	return position(status)
}

// ResetOnIdle clears the watermark when the device reports no current
// playback time, so a stopped session or a new track does not inherit the
// previous estimate.
func (t *DurationTracker) ResetOnIdle(status *castdevice.MediaStatus) {
	if t.hasCurrentTime(status) {
		return
	}

	t.mu.Lock()
	t.longest = mpris.NoDuration
	t.mu.Unlock()
}

func (t *DurationTracker) hasCurrentTime(status *castdevice.MediaStatus) bool {
	if status == nil || status.CurrentTime <= 0 {
		return false
	}

	rounded := time.Duration(status.CurrentTime * float64(time.Second)).Round(t.resolution)
	return rounded > 0
}

func position(status *castdevice.MediaStatus) mpris.Microseconds {
	if status == nil {
		return mpris.Beginning
	}

	if secs := status.AdjustedCurrentTime(); secs > 0 {
		return toMicroseconds(secs)
	}
	return mpris.Beginning
}

func toMicroseconds(seconds float64) mpris.Microseconds {
	return mpris.Microseconds(seconds * mpris.USInSecond)
}
