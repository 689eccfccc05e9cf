package bridge

import (
	"testing"
	"time"

	"castctl.app/castctl/internal/castdevice"
	"castctl.app/castctl/internal/mpris"
)

func pausedAt(currentTime, duration float64) *castdevice.MediaStatus {
	return &castdevice.MediaStatus{
		PlayerState: castdevice.StatePaused,
		CurrentTime: currentTime,
		Duration:    duration,
		At:          time.Now(),
	}
}

func TestDurationPrefersDeviceReportedValue(t *testing.T) {
	track := NewDurationTracker(0)

	got := track.Duration(pausedAt(10, 300))
	if got != 300*mpris.USInSecond {
		t.Fatalf("Duration() = %d, want %d", got, 300*mpris.USInSecond)
	}
}

func TestDurationWatermarkAdvancesAndHolds(t *testing.T) {
	track := NewDurationTracker(0)

	if got := track.Duration(pausedAt(10, 0)); got != 10*mpris.USInSecond {
		t.Fatalf("Duration() = %d, want %d", got, 10*mpris.USInSecond)
	}

	// Advances past the previous high water mark.
	if got := track.Duration(pausedAt(25, 0)); got != 25*mpris.USInSecond {
		t.Fatalf("Duration() = %d, want %d", got, 25*mpris.USInSecond)
	}

	// Seeking back does not shrink the estimate.
	if got := track.Duration(pausedAt(5, 0)); got != 25*mpris.USInSecond {
		t.Fatalf("Duration() after seek back = %d, want %d", got, 25*mpris.USInSecond)
	}
}

func TestDurationUnknownWhenNothingObserved(t *testing.T) {
	track := NewDurationTracker(0)

	if got := track.Duration(nil); got != mpris.NoDuration {
		t.Fatalf("Duration(nil) = %d, want NoDuration", got)
	}
	if got := track.Duration(pausedAt(0, 0)); got != mpris.NoDuration {
		t.Fatalf("Duration() at zero = %d, want NoDuration", got)
	}
}

func TestResetOnIdleClearsWatermark(t *testing.T) {
	track := NewDurationTracker(0)

	track.Duration(pausedAt(42, 0))
	track.ResetOnIdle(nil)

	if got := track.Duration(nil); got != mpris.NoDuration {
		t.Fatalf("Duration() after reset = %d, want NoDuration", got)
	}
}

func TestResetOnIdleTreatsSubResolutionAsStopped(t *testing.T) {
	track := NewDurationTracker(100 * time.Millisecond)

	track.Duration(pausedAt(42, 0))

	// 40ms rounds to zero at 100ms resolution, so this counts as stopped.
	track.ResetOnIdle(pausedAt(0.04, 0))

	if got := track.Duration(nil); got != mpris.NoDuration {
		t.Fatalf("Duration() after sub-resolution reset = %d, want NoDuration", got)
	}
}

func TestResetOnIdleKeepsWatermarkWhilePlaying(t *testing.T) {
	track := NewDurationTracker(100 * time.Millisecond)

	track.Duration(pausedAt(42, 0))
	track.ResetOnIdle(pausedAt(41, 0))

	if got := track.Duration(pausedAt(5, 0)); got != 42*mpris.USInSecond {
		t.Fatalf("Duration() = %d, want %d", got, 42*mpris.USInSecond)
	}
}

func TestPositionInterpolatesWhilePlaying(t *testing.T) {
	track := NewDurationTracker(0)

	status := &castdevice.MediaStatus{
		PlayerState: castdevice.StatePlaying,
		CurrentTime: 10,
		At:          time.Now().Add(-2 * time.Second),
	}

	got := track.Position(status)
	if got < 12*mpris.USInSecond || got > 13*mpris.USInSecond {
		t.Fatalf("Position() = %d, want roughly %d", got, 12*mpris.USInSecond)
	}
}

func TestPositionBeginningWhenUnknown(t *testing.T) {
	track := NewDurationTracker(0)

	if got := track.Position(nil); got != mpris.Beginning {
		t.Fatalf("Position(nil) = %d, want Beginning", got)
	}
}
