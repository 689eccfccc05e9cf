// Package bridge adapts a cast device handle to the MPRIS adapter contract.
// It reconciles the device's push-style status model with the protocol's
// pull-based queries: every read derives from the handle's latest snapshot,
// and the only adapter-owned mutable state is the duration watermark.
package bridge

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"castctl.app/castctl/internal/castdevice"
)

// DefaultName is the display name used when the device does not report one.
const DefaultName = "castctl"

// videoController is the slice of the YouTube controller the bridge drives.
type videoController interface {
	IsActive() bool
	Launch() error
	PlayVideo(videoID string) error
	AddToQueue(videoID string) error
}

// Wrapper composes the device handle, the duration tracker and the icon
// state into the single object the protocol server binds to. One Wrapper
// owns one handle for its lifetime; a new discovery cycle builds a new one.
type Wrapper struct {
	dev   castdevice.Device
	yt    videoController
	track *DurationTracker
	icons iconState

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (w *Wrapper) Log() *zerolog.Logger {
	if w.LogOutput != nil {
		w.initLogOnce.Do(func() {
			w.Logger = zerolog.New(w.LogOutput).With().Timestamp().Logger()
		})
	}
	return &w.Logger
}

// New wraps a connected device handle. The YouTube controller is registered
// against the handle here so provider events reach it from the start.
func New(dev castdevice.Device) *Wrapper {
	yt := castdevice.NewYouTubeController()
	dev.RegisterController(yt)

	return &Wrapper{
		dev:   dev,
		yt:    yt,
		track: NewDurationTracker(DefaultWatermarkResolution),
	}
}

// Name returns the device-reported name, or DefaultName when empty.
func (w *Wrapper) Name() string {
	if name := w.dev.Name(); name != "" {
		return name
	}
	return DefaultName
}

// CastStatus returns the device's current receiver snapshot, nil when the
// device has not reported one.
func (w *Wrapper) CastStatus() *castdevice.CastStatus {
	return w.dev.CastStatus()
}

// MediaStatus returns the device's current media snapshot, nil when no
// media session is active.
func (w *Wrapper) MediaStatus() *castdevice.MediaStatus {
	return w.dev.MediaStatus()
}

// OnNewStatus is the status-change hook; the session layer invokes it from
// the transport callback. It clears the stale duration estimate when
// playback stopped or a new track loaded.
func (w *Wrapper) OnNewStatus() {
	w.track.ResetOnIdle(w.MediaStatus())
}
