package castdevice

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buger/jsonparser"
	"github.com/rs/zerolog"
	"github.com/vishen/go-chromecast/application"
	"github.com/vishen/go-chromecast/cast"
	pb "github.com/vishen/go-chromecast/cast/proto"
)

const (
	// DefaultPort is the cast protocol port devices listen on.
	DefaultPort = 8009

	defaultSender = "sender-0"
	defaultRecv   = "receiver-0"

	namespaceRecv  = "urn:x-cast:com.google.cast.receiver"
	namespaceMedia = "urn:x-cast:com.google.cast.media"
)

// swapped in tests
var timeNow = time.Now

// Request ID counter for payloads sent outside the wrapped application.
var requestIDCounter int32

func nextRequestID() int {
	return int(atomic.AddInt32(&requestIDCounter, 1))
}

// Config identifies the device to connect to.
type Config struct {
	Host string
	Port int    // DefaultPort when zero
	Name string // friendly name, as discovered
	UUID string

	// ConnectionRetries is handed to the transport; slow TVs need time
	// to wake.
	ConnectionRetries int
}

// CastDevice wraps a go-chromecast Application behind the Device surface.
// Status snapshots are maintained from the raw status messages the device
// pushes, so reads never touch the network.
type CastDevice struct {
	app  *application.Application
	conn cast.Conn // kept for custom payloads the library has no API for

	cfg Config

	mu          sync.RWMutex
	connected   bool
	castStatus  *CastStatus
	mediaStatus *MediaStatus
	controllers []Controller
	listeners   []func()

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (d *CastDevice) Log() *zerolog.Logger {
	if d.LogOutput != nil {
		d.initLogOnce.Do(func() {
			d.Logger = zerolog.New(d.LogOutput).With().Timestamp().Logger()
		})
	}
	return &d.Logger
}

func New(cfg Config) *CastDevice {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ConnectionRetries == 0 {
		cfg.ConnectionRetries = 5
	}

	conn := cast.NewConnection()
	app := application.NewApplication(
		application.WithConnection(conn),
		application.WithConnectionRetries(cfg.ConnectionRetries),
	)

	return &CastDevice{
		app:  app,
		conn: conn,
		cfg:  cfg,
	}
}

// Connect establishes the transport connection and starts routing status
// messages into the local snapshots.
func (d *CastDevice) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Log().Debug().Str("Method", "Connect").Str("Host", d.cfg.Host).Int("Port", d.cfg.Port).Msg("connecting")
	if err := d.app.Start(d.cfg.Host, d.cfg.Port); err != nil {
		d.Log().Error().Str("Method", "Connect").Err(err).Msg("connection failed")
		return fmt.Errorf("castdevice connect: %w", err)
	}

	d.app.AddMessageFunc(func(msg *pb.CastMessage) {
		d.onMessage(msg)
	})
	d.connected = true

	// Provoke an initial status push so snapshots are populated.
	if err := d.app.Update(); err != nil {
		d.Log().Debug().Str("Method", "Connect").Err(err).Msg("initial status update failed")
	}

	d.Log().Debug().Str("Method", "Connect").Msg("connected successfully")
	return nil
}

func (d *CastDevice) Name() string {
	return d.cfg.Name
}

func (d *CastDevice) UUID() string {
	return d.cfg.UUID
}

func (d *CastDevice) AppDisplayName() string {
	if st := d.CastStatus(); st != nil {
		return st.DisplayName
	}
	return ""
}

func (d *CastDevice) CastStatus() *CastStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.castStatus == nil {
		return nil
	}
	st := *d.castStatus
	return &st
}

func (d *CastDevice) MediaStatus() *MediaStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.mediaStatus == nil {
		return nil
	}
	st := *d.mediaStatus
	return &st
}

func (d *CastDevice) RegisterController(c Controller) {
	d.mu.Lock()
	d.controllers = append(d.controllers, c)
	d.mu.Unlock()

	c.Registered(d)
}

func (d *CastDevice) OnStatusChange(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *CastDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "Play").Msg("resuming playback")
	err := d.app.Unpause()
	if err != nil {
		d.Log().Error().Str("Method", "Play").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "Pause").Msg("pausing playback")
	err := d.app.Pause()
	if err != nil {
		d.Log().Error().Str("Method", "Pause").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) StopMedia() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "StopMedia").Msg("stopping media session")
	err := d.app.StopMedia()
	if err != nil {
		d.Log().Error().Str("Method", "StopMedia").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) SeekSeconds(seconds int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "SeekSeconds").Int("Seconds", seconds).Msg("seeking")
	err := d.app.SeekFromStart(seconds)
	if err != nil {
		d.Log().Error().Str("Method", "SeekSeconds").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) QueueNext() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "QueueNext").Msg("skipping to next queue item")
	err := d.app.Next()
	if err != nil {
		d.Log().Error().Str("Method", "QueueNext").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) QueuePrev() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "QueuePrev").Msg("skipping to previous queue item")
	err := d.app.Previous()
	if err != nil {
		d.Log().Error().Str("Method", "QueuePrev").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) PlayMedia(uri, contentType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "PlayMedia").Str("URL", uri).Str("ContentType", contentType).Msg("loading media")
	err := d.app.Load(uri, 0, contentType, false, false, false)
	if err != nil {
		d.Log().Error().Str("Method", "PlayMedia").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) VolumeUp(delta float64) error {
	return d.adjustVolume(delta)
}

func (d *CastDevice) VolumeDown(delta float64) error {
	return d.adjustVolume(-delta)
}

func (d *CastDevice) adjustVolume(delta float64) error {
	st := d.CastStatus()
	if st == nil {
		return ErrNotConnected
	}

	level := st.VolumeLevel + delta
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "adjustVolume").Float64("Delta", delta).Float64("Level", level).Msg("setting volume")
	err := d.app.SetVolume(float32(level))
	if err != nil {
		d.Log().Error().Str("Method", "adjustVolume").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) SetMuted(muted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "SetMuted").Bool("Muted", muted).Msg("setting mute")
	err := d.app.SetMuted(muted)
	if err != nil {
		d.Log().Error().Str("Method", "SetMuted").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) QuitApp() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log().Debug().Str("Method", "QuitApp").Msg("stopping receiver application")
	err := d.app.Stop()
	if err != nil {
		d.Log().Error().Str("Method", "QuitApp").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Log().Debug().Str("Method", "Close").Msg("closing connection")
	d.connected = false
	err := d.app.Close(false)
	if err != nil {
		d.Log().Error().Str("Method", "Close").Err(err).Msg("failed")
	}
	return err
}

func (d *CastDevice) SendReceiverPayload(payload cast.Payload) error {
	requestID := nextRequestID()
	payload.SetRequestId(requestID)
	return d.conn.Send(requestID, payload, defaultSender, defaultRecv, namespaceRecv)
}

func (d *CastDevice) SendAppPayload(namespace string, payload cast.Payload) error {
	app := d.app.App()
	if app == nil || app.TransportId == "" {
		return ErrNoAppRunning
	}

	requestID := nextRequestID()
	payload.SetRequestId(requestID)
	return d.conn.Send(requestID, payload, defaultSender, app.TransportId, namespace)
}

// onMessage is the transport callback; it keeps the snapshots current and
// fans messages out to registered controllers.
func (d *CastDevice) onMessage(msg *pb.CastMessage) {
	namespace := msg.GetNamespace()
	payload := []byte(msg.GetPayloadUtf8())

	msgType, err := jsonparser.GetString(payload, "type")
	if err != nil {
		return
	}

	switch {
	case namespace == namespaceMedia && msgType == "MEDIA_STATUS":
		d.applyMediaStatus(payload)
	case namespace == namespaceRecv && msgType == "RECEIVER_STATUS":
		d.applyReceiverStatus(payload)
	default:
		d.routeToControllers(namespace, payload)
		return
	}

	d.notifyListeners()
}

func (d *CastDevice) routeToControllers(namespace string, payload []byte) {
	d.mu.RLock()
	controllers := make([]Controller, len(d.controllers))
	copy(controllers, d.controllers)
	d.mu.RUnlock()

	for _, c := range controllers {
		if c.Namespace() == namespace {
			c.HandleMessage(payload)
		}
	}
}

func (d *CastDevice) notifyListeners() {
	d.mu.RLock()
	listeners := make([]func(), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

func (d *CastDevice) applyReceiverStatus(payload []byte) {
	st := &CastStatus{}
	st.VolumeLevel, _ = jsonparser.GetFloat(payload, "status", "volume", "level")
	st.VolumeMuted, _ = jsonparser.GetBoolean(payload, "status", "volume", "muted")

	appSeen := false
	_, _ = jsonparser.ArrayEach(payload, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		appSeen = true
		st.AppID, _ = jsonparser.GetString(value, "appId")
		st.DisplayName, _ = jsonparser.GetString(value, "displayName")
		st.StatusText, _ = jsonparser.GetString(value, "statusText")
		st.SessionID, _ = jsonparser.GetString(value, "sessionId")
		st.IsIdleScreen, _ = jsonparser.GetBoolean(value, "isIdleScreen")
		st.IconURL, _ = jsonparser.GetString(value, "iconUrl")
	}, "status", "applications")

	d.mu.Lock()
	prevSession := ""
	if d.castStatus != nil {
		prevSession = d.castStatus.SessionID
	}
	d.castStatus = st

	// A new or vanished app session invalidates the media session.
	if !appSeen || st.SessionID != prevSession {
		d.mediaStatus = nil
	}
	d.mu.Unlock()
}

func (d *CastDevice) applyMediaStatus(payload []byte) {
	var st *MediaStatus

	_, _ = jsonparser.ArrayEach(payload, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		st = d.parseMediaStatus(value)
	}, "status")

	d.mu.Lock()
	d.mediaStatus = st
	d.mu.Unlock()
}

func (d *CastDevice) parseMediaStatus(value []byte) *MediaStatus {
	st := &MediaStatus{At: timeNow(), PlaybackRate: 1}

	st.PlayerState, _ = jsonparser.GetString(value, "playerState")
	st.CurrentTime, _ = jsonparser.GetFloat(value, "currentTime")
	if rate, err := jsonparser.GetFloat(value, "playbackRate"); err == nil && rate != 0 {
		st.PlaybackRate = rate
	}
	if cmds, err := jsonparser.GetInt(value, "supportedMediaCommands"); err == nil {
		st.SupportedCommands = int(cmds)
	}

	media, _, _, err := jsonparser.Get(value, "media")
	if err != nil {
		// Devices send partial updates without the media block; keep
		// the previous media item fields in that case.
		d.mu.RLock()
		prev := d.mediaStatus
		d.mu.RUnlock()
		if prev != nil {
			item := *prev
			item.PlayerState = st.PlayerState
			item.CurrentTime = st.CurrentTime
			item.PlaybackRate = st.PlaybackRate
			item.SupportedCommands = st.SupportedCommands
			item.At = st.At
			return &item
		}
		return st
	}

	st.ContentID, _ = jsonparser.GetString(media, "contentId")
	st.ContentType, _ = jsonparser.GetString(media, "contentType")
	st.StreamType, _ = jsonparser.GetString(media, "streamType")
	st.Duration, _ = jsonparser.GetFloat(media, "duration")

	st.Title, _ = jsonparser.GetString(media, "metadata", "title")
	st.Subtitle, _ = jsonparser.GetString(media, "metadata", "subtitle")
	st.Artist, _ = jsonparser.GetString(media, "metadata", "artist")
	st.AlbumName, _ = jsonparser.GetString(media, "metadata", "albumName")
	st.AlbumArtist, _ = jsonparser.GetString(media, "metadata", "albumArtist")
	if track, err := jsonparser.GetInt(media, "metadata", "trackNumber"); err == nil {
		st.TrackNumber = int(track)
	}
	if mdType, err := jsonparser.GetInt(media, "metadata", "metadataType"); err == nil {
		st.MetadataType = int(mdType)
	}

	_, _ = jsonparser.ArrayEach(media, func(image []byte, _ jsonparser.ValueType, _ int, _ error) {
		if st.ThumbnailURL != "" {
			return
		}
		st.ThumbnailURL, _ = jsonparser.GetString(image, "url")
	}, "metadata", "images")

	return st
}
