package bridge

import (
	"testing"
	"time"

	"castctl.app/castctl/internal/castdevice"
	"castctl.app/castctl/internal/mpris"
)

func playingStatus(commands int) *castdevice.MediaStatus {
	return &castdevice.MediaStatus{
		PlayerState:       castdevice.StatePlaying,
		SupportedCommands: commands,
		At:                time.Now(),
	}
}

func TestPlayState(t *testing.T) {
	tests := []struct {
		name  string
		media *castdevice.MediaStatus
		want  mpris.PlayState
	}{
		{"no media", nil, mpris.Stopped},
		{"playing", &castdevice.MediaStatus{PlayerState: castdevice.StatePlaying}, mpris.Playing},
		{"buffering counts as playing", &castdevice.MediaStatus{PlayerState: castdevice.StateBuffering}, mpris.Playing},
		{"paused", &castdevice.MediaStatus{PlayerState: castdevice.StatePaused}, mpris.Paused},
		{"idle", &castdevice.MediaStatus{PlayerState: castdevice.StateIdle}, mpris.Stopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWrapper(&fakeDevice{mediaStatus: tt.media}, nil)
			if got := w.PlayState(); got != tt.want {
				t.Fatalf("PlayState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeekToRoundsToWholeSeconds(t *testing.T) {
	dev := &fakeDevice{}
	w := newTestWrapper(dev, nil)

	if err := w.SeekTo(90_600_000); err != nil {
		t.Fatalf("SeekTo() err = %v, want nil", err)
	}
	if dev.seekSeconds != 91 {
		t.Fatalf("SeekTo() seconds = %d, want 91", dev.seekSeconds)
	}
}

func TestSetVolumeIssuesDirectionalCommand(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		target    float64
		wantCall  string
		wantDelta float64
	}{
		{"raise", 0.2, 0.5, "VolumeUp", 0.3},
		{"lower", 0.8, 0.5, "VolumeDown", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{castStatus: &castdevice.CastStatus{VolumeLevel: tt.current}}
			w := newTestWrapper(dev, nil)

			w.SetVolume(tt.target)

			if len(dev.calls) != 1 || dev.calls[0] != tt.wantCall {
				t.Fatalf("SetVolume() calls = %v, want [%s]", dev.calls, tt.wantCall)
			}
			if diff := dev.volumeDelta - tt.wantDelta; diff < -0.0001 || diff > 0.0001 {
				t.Fatalf("SetVolume() delta = %v, want %v", dev.volumeDelta, tt.wantDelta)
			}
		})
	}
}

func TestSetVolumeZeroDeltaIssuesNothing(t *testing.T) {
	dev := &fakeDevice{castStatus: &castdevice.CastStatus{VolumeLevel: 0.5}}
	w := newTestWrapper(dev, nil)

	w.SetVolume(0.5)

	if len(dev.calls) != 0 {
		t.Fatalf("SetVolume() calls = %v, want none", dev.calls)
	}
}

func TestSetVolumeWithoutStatusIssuesNothing(t *testing.T) {
	dev := &fakeDevice{}
	w := newTestWrapper(dev, nil)

	w.SetVolume(0.5)

	if len(dev.calls) != 0 {
		t.Fatalf("SetVolume() calls = %v, want none", dev.calls)
	}
}

func TestCapabilitiesFollowSupportedCommands(t *testing.T) {
	commands := 1<<0 | 1<<6 // pause and queue-next only
	w := newTestWrapper(&fakeDevice{mediaStatus: playingStatus(commands)}, nil)

	if !w.CanPause() {
		t.Fatalf("CanPause() = false, want true")
	}
	if w.CanSeek() {
		t.Fatalf("CanSeek() = true, want false")
	}
	if !w.CanGoNext() {
		t.Fatalf("CanGoNext() = false, want true")
	}
	if w.CanGoPrevious() {
		t.Fatalf("CanGoPrevious() = true, want false")
	}
}

func TestCapabilitiesFalseWithoutMedia(t *testing.T) {
	w := newTestWrapper(&fakeDevice{}, nil)

	if w.CanPause() || w.CanSeek() || w.CanGoNext() || w.CanGoPrevious() {
		t.Fatalf("capabilities without media must all be false")
	}
	if !w.CanControl() || !w.CanQuit() {
		t.Fatalf("CanControl() and CanQuit() must stay true")
	}
}

func TestCanPlayOnlyWhenNotPlaying(t *testing.T) {
	w := newTestWrapper(&fakeDevice{mediaStatus: playingStatus(0)}, nil)
	if w.CanPlay() {
		t.Fatalf("CanPlay() while playing = true, want false")
	}

	w = newTestWrapper(&fakeDevice{}, nil)
	if !w.CanPlay() {
		t.Fatalf("CanPlay() while stopped = false, want true")
	}
}

func TestOpenURIRoutesProviderContent(t *testing.T) {
	dev := &fakeDevice{}
	yt := &fakeYT{}
	w := newTestWrapper(dev, yt)

	if err := w.OpenURI("https://youtu.be/abc123"); err != nil {
		t.Fatalf("OpenURI() err = %v, want nil", err)
	}

	if !yt.launched {
		t.Fatalf("OpenURI() did not launch the provider app")
	}
	if yt.played != "abc123" {
		t.Fatalf("OpenURI() played = %q, want %q", yt.played, "abc123")
	}
	if len(dev.calls) != 0 {
		t.Fatalf("OpenURI() device calls = %v, want none", dev.calls)
	}
}

func TestOpenURILoadsGenericContent(t *testing.T) {
	dev := &fakeDevice{}
	yt := &fakeYT{}
	w := newTestWrapper(dev, yt)

	if err := w.OpenURI("https://example.com/song.mp3"); err != nil {
		t.Fatalf("OpenURI() err = %v, want nil", err)
	}

	if dev.playMediaURI != "https://example.com/song.mp3" {
		t.Fatalf("OpenURI() uri = %q, want the original URI", dev.playMediaURI)
	}
	if dev.playMediaType != "audio/mpeg" {
		t.Fatalf("OpenURI() contentType = %q, want %q", dev.playMediaType, "audio/mpeg")
	}
	if yt.launched || yt.played != "" {
		t.Fatalf("OpenURI() must not touch the provider controller")
	}
}

func TestAddTrackQueuesProviderContent(t *testing.T) {
	yt := &fakeYT{active: true}
	w := newTestWrapper(&fakeDevice{}, yt)

	if err := w.AddTrack("https://youtu.be/abc123", "", false); err != nil {
		t.Fatalf("AddTrack() err = %v, want nil", err)
	}
	if yt.queued != "abc123" {
		t.Fatalf("AddTrack() queued = %q, want %q", yt.queued, "abc123")
	}
	if yt.played != "" {
		t.Fatalf("AddTrack() played = %q, want none", yt.played)
	}
}

func TestGuessContentType(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"https://example.com/song.mp3", "audio/mpeg"},
		{"https://example.com/clip.mp4?token=1", "video/mp4"},
		{"https://example.com/stream", ""},
	}

	for _, tt := range tests {
		if got := guessContentType(tt.uri); got != tt.want {
			t.Fatalf("guessContentType(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
