package castdevice

import (
	"testing"

	"github.com/vishen/go-chromecast/cast"
)

// fakeRequester records outgoing payloads.
type fakeRequester struct {
	status *CastStatus

	receiverPayloads []cast.Payload
	appPayloads      []cast.Payload
	appNamespaces    []string
}

func (f *fakeRequester) CastStatus() *CastStatus { return f.status }

func (f *fakeRequester) SendReceiverPayload(payload cast.Payload) error {
	f.receiverPayloads = append(f.receiverPayloads, payload)
	return nil
}

func (f *fakeRequester) SendAppPayload(namespace string, payload cast.Payload) error {
	f.appNamespaces = append(f.appNamespaces, namespace)
	f.appPayloads = append(f.appPayloads, payload)
	return nil
}

func TestYouTubeIsActive(t *testing.T) {
	c := NewYouTubeController()

	if c.IsActive() {
		t.Fatalf("IsActive() before registration = true, want false")
	}

	req := &fakeRequester{status: &CastStatus{AppID: YouTubeAppID}}
	c.Registered(req)

	if !c.IsActive() {
		t.Fatalf("IsActive() with YouTube running = false, want true")
	}

	req.status = &CastStatus{AppID: "CC1AD845"}
	if c.IsActive() {
		t.Fatalf("IsActive() with another app = true, want false")
	}
}

func TestYouTubeLaunchOnlyWhenInactive(t *testing.T) {
	req := &fakeRequester{status: &CastStatus{AppID: YouTubeAppID}}
	c := NewYouTubeController()
	c.Registered(req)

	if err := c.Launch(); err != nil {
		t.Fatalf("Launch() err = %v, want nil", err)
	}
	if len(req.receiverPayloads) != 0 {
		t.Fatalf("Launch() while active sent %d payloads, want 0", len(req.receiverPayloads))
	}

	req.status = &CastStatus{AppID: "CC1AD845"}
	if err := c.Launch(); err != nil {
		t.Fatalf("Launch() err = %v, want nil", err)
	}
	if len(req.receiverPayloads) != 1 {
		t.Fatalf("Launch() sent %d payloads, want 1", len(req.receiverPayloads))
	}

	launch, ok := req.receiverPayloads[0].(*launchPayload)
	if !ok {
		t.Fatalf("Launch() payload type = %T, want *launchPayload", req.receiverPayloads[0])
	}
	if launch.Type != "LAUNCH" || launch.AppID != YouTubeAppID {
		t.Fatalf("Launch() payload = %+v, want LAUNCH of the YouTube app", launch)
	}
}

func TestYouTubePlayVideo(t *testing.T) {
	req := &fakeRequester{}
	c := NewYouTubeController()
	c.Registered(req)

	if err := c.PlayVideo("abc123"); err != nil {
		t.Fatalf("PlayVideo() err = %v, want nil", err)
	}

	if len(req.appPayloads) != 1 {
		t.Fatalf("PlayVideo() sent %d payloads, want 1", len(req.appPayloads))
	}
	if req.appNamespaces[0] != youtubeNamespace {
		t.Fatalf("PlayVideo() namespace = %q, want %q", req.appNamespaces[0], youtubeNamespace)
	}

	p, ok := req.appPayloads[0].(*youtubePayload)
	if !ok {
		t.Fatalf("PlayVideo() payload type = %T, want *youtubePayload", req.appPayloads[0])
	}
	if p.Type != "flingVideo" || p.Data.VideoID != "abc123" {
		t.Fatalf("PlayVideo() payload = %+v, want flingVideo of abc123", p)
	}
}

func TestYouTubeAddToQueue(t *testing.T) {
	req := &fakeRequester{}
	c := NewYouTubeController()
	c.Registered(req)

	if err := c.AddToQueue("abc123"); err != nil {
		t.Fatalf("AddToQueue() err = %v, want nil", err)
	}

	p, ok := req.appPayloads[0].(*youtubePayload)
	if !ok {
		t.Fatalf("AddToQueue() payload type = %T, want *youtubePayload", req.appPayloads[0])
	}
	if p.Type != "queueInsert" {
		t.Fatalf("AddToQueue() payload type = %q, want queueInsert", p.Type)
	}
}

func TestYouTubeCommandsWithoutRequester(t *testing.T) {
	c := NewYouTubeController()

	if err := c.PlayVideo("abc123"); err != ErrNotConnected {
		t.Fatalf("PlayVideo() err = %v, want ErrNotConnected", err)
	}
	if err := c.Launch(); err != ErrNotConnected {
		t.Fatalf("Launch() err = %v, want ErrNotConnected", err)
	}
}

func TestYouTubeHandleMessageStoresScreenID(t *testing.T) {
	c := NewYouTubeController()

	c.HandleMessage([]byte(`{"type": "mdxSessionStatus", "data": {"screenId": "screen-7"}}`))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screenID != "screen-7" {
		t.Fatalf("screenID = %q, want screen-7", c.screenID)
	}
}
