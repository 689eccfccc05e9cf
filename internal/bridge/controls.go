package bridge

import (
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/h2non/filetype"

	"castctl.app/castctl/internal/mpris"
)

var _ mpris.Adapter = (*Wrapper)(nil)

// PlayState maps the device's player state onto the protocol vocabulary.
func (w *Wrapper) PlayState() mpris.PlayState {
	status := w.MediaStatus()
	if status == nil {
		return mpris.Stopped
	}

	if status.IsPaused() {
		return mpris.Paused
	}
	if status.IsPlaying() {
		return mpris.Playing
	}
	return mpris.Stopped
}

func (w *Wrapper) Position() mpris.Microseconds {
	return w.track.Position(w.MediaStatus())
}

func (w *Wrapper) Rate() float64 {
	if status := w.MediaStatus(); status != nil && status.PlaybackRate > 0 {
		return status.PlaybackRate
	}
	return 1.0
}

// SetRate is accepted but ignored; the device class cannot change playback
// rate.
func (w *Wrapper) SetRate(rate float64) {}

func (w *Wrapper) Play() error {
	return w.dev.Play()
}

func (w *Wrapper) Pause() error {
	return w.dev.Pause()
}

func (w *Wrapper) Stop() error {
	return w.dev.StopMedia()
}

// Resume delegates to Play; the device has no separate resume command.
func (w *Wrapper) Resume() error {
	return w.Play()
}

func (w *Wrapper) Next() error {
	return w.dev.QueueNext()
}

func (w *Wrapper) Previous() error {
	return w.dev.QueuePrev()
}

// SeekTo converts the protocol position to whole seconds before delegating;
// the device seeks at second granularity.
func (w *Wrapper) SeekTo(position mpris.Microseconds) error {
	seconds := int(math.Round(float64(position) / mpris.USInSecond))
	return w.dev.SeekSeconds(seconds)
}

func (w *Wrapper) Quit() error {
	return w.dev.QuitApp()
}

// Volume reports the device volume, false when no cast status exists yet.
func (w *Wrapper) Volume() (float64, bool) {
	status := w.CastStatus()
	if status == nil {
		return 0, false
	}
	return status.VolumeLevel, true
}

// SetVolume computes the signed delta from the current level and issues a
// directional command. A zero delta issues nothing: the device rejects
// zero-magnitude adjustments.
func (w *Wrapper) SetVolume(level float64) {
	current, ok := w.Volume()
	if !ok {
		return
	}

	delta := level - current

	var err error
	switch {
	case delta > 0:
		err = w.dev.VolumeUp(delta)
	case delta < 0:
		err = w.dev.VolumeDown(-delta)
	default:
		return
	}

	if err != nil {
		w.Log().Error().Str("Method", "SetVolume").Err(err).Msg("failed")
	}
}

func (w *Wrapper) IsMuted() bool {
	if status := w.CastStatus(); status != nil {
		return status.VolumeMuted
	}
	return false
}

func (w *Wrapper) SetMuted(muted bool) {
	if err := w.dev.SetMuted(muted); err != nil {
		w.Log().Error().Str("Method", "SetMuted").Err(err).Msg("failed")
	}
}

// Shuffle and repeat are accepted no-ops: the device class has no such
// concept, and reporting an error would make every control surface surface
// a failure for a harmless toggle.

func (w *Wrapper) Shuffle() bool {
	return false
}

func (w *Wrapper) SetShuffle(enabled bool) {}

func (w *Wrapper) IsRepeating() bool {
	return false
}

func (w *Wrapper) SetRepeating(enabled bool) {}

func (w *Wrapper) CanQuit() bool {
	return true
}

func (w *Wrapper) CanPlay() bool {
	return w.PlayState() != mpris.Playing
}

func (w *Wrapper) CanPause() bool {
	if status := w.MediaStatus(); status != nil {
		return status.SupportsPause()
	}
	return false
}

func (w *Wrapper) CanSeek() bool {
	if status := w.MediaStatus(); status != nil {
		return status.SupportsSeek()
	}
	return false
}

func (w *Wrapper) CanGoNext() bool {
	if status := w.MediaStatus(); status != nil {
		return status.SupportsQueueNext()
	}
	return false
}

func (w *Wrapper) CanGoPrevious() bool {
	if status := w.MediaStatus(); status != nil {
		return status.SupportsQueuePrev()
	}
	return false
}

func (w *Wrapper) CanControl() bool {
	return true
}

func (w *Wrapper) CanEditTracks() bool {
	return false
}

// OpenURI plays the given URI: provider content goes through the provider's
// own receiver app, anything else is loaded on the generic media receiver
// with a MIME type guessed from the URI.
func (w *Wrapper) OpenURI(uri string) error {
	if videoID := ExtractVideoID(uri); videoID != "" {
		if !w.yt.IsActive() {
			if err := w.yt.Launch(); err != nil {
				return err
			}
		}
		return w.yt.PlayVideo(videoID)
	}

	return w.dev.PlayMedia(uri, guessContentType(uri))
}

// AddTrack enqueues a URI, optionally starting it immediately. Only provider
// content can actually be queued; generic URIs either replace the current
// media (when set as current) or are dropped. It sits outside the
// mpris.Adapter contract: the device cannot enumerate its queue, so the
// player reports no track list and no TrackList interface is exported.
// The method exists for callers holding the wrapper directly.
func (w *Wrapper) AddTrack(uri string, afterTrack string, setAsCurrent bool) error {
	videoID := ExtractVideoID(uri)
	if videoID != "" {
		if err := w.yt.AddToQueue(videoID); err != nil {
			return err
		}
		if setAsCurrent {
			return w.yt.PlayVideo(videoID)
		}
		return nil
	}

	if setAsCurrent {
		return w.OpenURI(uri)
	}
	return nil
}

func guessContentType(uri string) string {
	ext := ""
	if u, err := url.Parse(uri); err == nil {
		ext = path.Ext(u.Path)
	} else {
		ext = path.Ext(uri)
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return ""
	}

	if t := filetype.GetType(ext); t != filetype.Unknown {
		return t.MIME.Value
	}
	return ""
}
