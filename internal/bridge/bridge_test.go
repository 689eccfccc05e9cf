package bridge

import (
	"castctl.app/castctl/internal/castdevice"
)

// fakeDevice implements castdevice.Device with canned statuses and records
// every command issued against it.
type fakeDevice struct {
	name        string
	appName     string
	castStatus  *castdevice.CastStatus
	mediaStatus *castdevice.MediaStatus

	calls []string

	playMediaURI  string
	playMediaType string
	seekSeconds   int
	volumeDelta   float64
}

func (f *fakeDevice) Name() string { return f.name }
func (f *fakeDevice) UUID() string { return "" }
func (f *fakeDevice) AppDisplayName() string { return f.appName }
func (f *fakeDevice) CastStatus() *castdevice.CastStatus { return f.castStatus }
func (f *fakeDevice) MediaStatus() *castdevice.MediaStatus { return f.mediaStatus }

func (f *fakeDevice) Play() error { f.calls = append(f.calls, "Play"); return nil }
func (f *fakeDevice) Pause() error { f.calls = append(f.calls, "Pause"); return nil }
func (f *fakeDevice) StopMedia() error { f.calls = append(f.calls, "StopMedia"); return nil }
func (f *fakeDevice) SeekSeconds(seconds int) error {
	f.calls = append(f.calls, "SeekSeconds")
	f.seekSeconds = seconds
	return nil
}
func (f *fakeDevice) QueueNext() error { f.calls = append(f.calls, "QueueNext"); return nil }
func (f *fakeDevice) QueuePrev() error { f.calls = append(f.calls, "QueuePrev"); return nil }
func (f *fakeDevice) PlayMedia(uri, contentType string) error {
	f.calls = append(f.calls, "PlayMedia")
	f.playMediaURI = uri
	f.playMediaType = contentType
	return nil
}
func (f *fakeDevice) VolumeUp(delta float64) error {
	f.calls = append(f.calls, "VolumeUp")
	f.volumeDelta = delta
	return nil
}
func (f *fakeDevice) VolumeDown(delta float64) error {
	f.calls = append(f.calls, "VolumeDown")
	f.volumeDelta = delta
	return nil
}
func (f *fakeDevice) SetMuted(muted bool) error { f.calls = append(f.calls, "SetMuted"); return nil }
func (f *fakeDevice) QuitApp() error { f.calls = append(f.calls, "QuitApp"); return nil }
func (f *fakeDevice) RegisterController(c castdevice.Controller) {}
func (f *fakeDevice) OnStatusChange(fn func()) {}
func (f *fakeDevice) Close() error { return nil }

// fakeYT implements videoController.
type fakeYT struct {
	active bool

	launched bool
	played   string
	queued   string
}

func (f *fakeYT) IsActive() bool { return f.active }
func (f *fakeYT) Launch() error {
	f.launched = true
	f.active = true
	return nil
}
func (f *fakeYT) PlayVideo(videoID string) error {
	f.played = videoID
	return nil
}
func (f *fakeYT) AddToQueue(videoID string) error {
	f.queued = videoID
	return nil
}

func newTestWrapper(dev *fakeDevice, yt *fakeYT) *Wrapper {
	if yt == nil {
		yt = &fakeYT{}
	}
	return &Wrapper{
		dev:   dev,
		yt:    yt,
		track: NewDurationTracker(DefaultWatermarkResolution),
	}
}
