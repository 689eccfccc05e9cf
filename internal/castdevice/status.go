package castdevice

import "time"

// Player states as reported by the device in MEDIA_STATUS payloads.
const (
	StatePlaying   = "PLAYING"
	StatePaused    = "PAUSED"
	StateBuffering = "BUFFERING"
	StateIdle      = "IDLE"
)

// supportedMediaCommands bitmask values from the cast media namespace.
const (
	cmdPause     = 1 << 0
	cmdSeek      = 1 << 1
	cmdQueueNext = 1 << 6
	cmdQueuePrev = 1 << 7
)

// CastStatus is a snapshot of the receiver state: running application and
// device volume. A nil CastStatus means the device has not reported one yet.
type CastStatus struct {
	AppID        string
	DisplayName  string
	StatusText   string
	SessionID    string
	IconURL      string
	IsIdleScreen bool
	VolumeLevel  float64
	VolumeMuted  bool
}

// MediaStatus is a snapshot of the current media session. All time values
// are in seconds, matching the wire format. A nil MediaStatus means no media
// session is active.
type MediaStatus struct {
	Title       string
	Subtitle    string
	Artist      string
	AlbumName   string
	AlbumArtist string

	ThumbnailURL string

	ContentID   string
	ContentType string
	StreamType  string

	Duration     float64 // 0 when the device does not report one
	CurrentTime  float64
	PlaybackRate float64
	PlayerState  string

	TrackNumber  int
	MetadataType int

	SupportedCommands int

	// At is when this snapshot was taken, used to interpolate the
	// playback position between status updates.
	At time.Time
}

func (m *MediaStatus) IsPlaying() bool {
	return m.PlayerState == StatePlaying || m.PlayerState == StateBuffering
}

func (m *MediaStatus) IsPaused() bool {
	return m.PlayerState == StatePaused
}

// AdjustedCurrentTime returns the playback position in seconds, advanced by
// the wall-clock time elapsed since the snapshot when playback is running.
func (m *MediaStatus) AdjustedCurrentTime() float64 {
	if m.IsPlaying() && !m.At.IsZero() {
		return m.CurrentTime + time.Since(m.At).Seconds()
	}

	return m.CurrentTime
}

func (m *MediaStatus) SupportsPause() bool {
	return m.SupportedCommands&cmdPause != 0
}

func (m *MediaStatus) SupportsSeek() bool {
	return m.SupportedCommands&cmdSeek != 0
}

func (m *MediaStatus) SupportsQueueNext() bool {
	return m.SupportedCommands&cmdQueueNext != 0
}

func (m *MediaStatus) SupportsQueuePrev() bool {
	return m.SupportedCommands&cmdQueuePrev != 0
}
