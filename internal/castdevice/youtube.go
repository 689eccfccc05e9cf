package castdevice

import (
	"sync"

	"github.com/buger/jsonparser"
	"github.com/vishen/go-chromecast/cast"
)

const (
	// YouTubeAppID is the receiver app id of the YouTube cast app.
	YouTubeAppID = "233637DE"

	youtubeNamespace = "urn:x-cast:com.google.youtube.mdx"
)

type youtubePayload struct {
	Type      string           `json:"type"`
	RequestId int              `json:"requestId"`
	Data      youtubeVideoData `json:"data"`
}

type youtubeVideoData struct {
	VideoID     string  `json:"videoId"`
	CurrentTime float64 `json:"currentTime"`
}

func (p *youtubePayload) SetRequestId(id int) {
	p.RequestId = id
}

type launchPayload struct {
	Type      string `json:"type"`
	RequestId int    `json:"requestId"`
	AppID     string `json:"appId"`
}

func (p *launchPayload) SetRequestId(id int) {
	p.RequestId = id
}

var (
	_ cast.Payload = (*youtubePayload)(nil)
	_ cast.Payload = (*launchPayload)(nil)
)

// YouTubeController drives the YouTube receiver app through its mdx
// namespace, so known YouTube content plays natively instead of through the
// generic media receiver.
type YouTubeController struct {
	mu       sync.Mutex
	req      Requester
	screenID string
}

func NewYouTubeController() *YouTubeController {
	return &YouTubeController{}
}

func (c *YouTubeController) Namespace() string {
	return youtubeNamespace
}

func (c *YouTubeController) Registered(req Requester) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = req
}

func (c *YouTubeController) HandleMessage(payload []byte) {
	// The receiver reports its mdx session after launch.
	screenID, err := jsonparser.GetString(payload, "data", "screenId")
	if err != nil {
		return
	}

	c.mu.Lock()
	c.screenID = screenID
	c.mu.Unlock()
}

// IsActive reports whether the YouTube app is the running receiver app.
func (c *YouTubeController) IsActive() bool {
	c.mu.Lock()
	req := c.req
	c.mu.Unlock()

	if req == nil {
		return false
	}

	st := req.CastStatus()
	return st != nil && st.AppID == YouTubeAppID
}

// Launch starts the YouTube receiver app if it is not already running.
func (c *YouTubeController) Launch() error {
	if c.IsActive() {
		return nil
	}

	c.mu.Lock()
	req := c.req
	c.mu.Unlock()

	if req == nil {
		return ErrNotConnected
	}

	return req.SendReceiverPayload(&launchPayload{
		Type:  "LAUNCH",
		AppID: YouTubeAppID,
	})
}

// PlayVideo tells the YouTube app to play the given video id immediately.
func (c *YouTubeController) PlayVideo(videoID string) error {
	return c.sendVideoCommand("flingVideo", videoID)
}

// AddToQueue appends the given video id to the YouTube app's queue.
func (c *YouTubeController) AddToQueue(videoID string) error {
	return c.sendVideoCommand("queueInsert", videoID)
}

func (c *YouTubeController) sendVideoCommand(cmd, videoID string) error {
	c.mu.Lock()
	req := c.req
	c.mu.Unlock()

	if req == nil {
		return ErrNotConnected
	}

	return req.SendAppPayload(youtubeNamespace, &youtubePayload{
		Type: cmd,
		Data: youtubeVideoData{VideoID: videoID},
	})
}
