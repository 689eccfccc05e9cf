package mpris

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	busNamePrefix = "org.mpris.MediaPlayer2."

	// Devices push status updates in bursts; property-change signals
	// are throttled to this cadence and coalesced, never dropped.
	minEmitInterval = 100 * time.Millisecond
	emitBurst       = 5
)

// swapped in tests
var sessionBus = dbus.SessionBus

// Server binds one Adapter to the session bus and serves MPRIS queries from
// it until closed.
type Server struct {
	adapter Adapter
	busName string

	conn    *dbus.Conn
	limiter *rate.Limiter

	// emit sends a raw signal on the bus; set by Publish, swapped in
	// tests.
	emit func(path dbus.ObjectPath, name string, values ...interface{}) error

	emitMu      sync.Mutex
	emitPending bool

	done      chan struct{}
	closeOnce sync.Once

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (s *Server) Log() *zerolog.Logger {
	if s.LogOutput != nil {
		s.initLogOnce.Do(func() {
			s.Logger = zerolog.New(s.LogOutput).With().Timestamp().Logger()
		})
	}
	return &s.Logger
}

func NewServer(name string, adapter Adapter) *Server {
	return &Server{
		adapter: adapter,
		busName: busNamePrefix + busNameSuffix(name),
		limiter: rate.NewLimiter(rate.Every(minEmitInterval), emitBurst),
		done:    make(chan struct{}),
	}
}

// BusName returns the well-known name the server publishes under.
func (s *Server) BusName() string {
	return s.busName
}

// Publish connects to the session bus, exports the MPRIS interfaces and
// announces the player by requesting its well-known name.
func (s *Server) Publish() error {
	conn, err := sessionBus()
	if err != nil {
		return fmt.Errorf("mpris publish: session bus: %w", err)
	}

	for _, iface := range []string{rootInterface, playerInterface, propsInterface} {
		if err := conn.Export(s, objectPath, iface); err != nil {
			conn.Close()
			return fmt.Errorf("mpris publish: export %s: %w", iface, err)
		}
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mpris publish: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("mpris publish: bus name %s already taken", s.busName)
	}

	s.conn = conn
	s.emit = conn.Emit
	s.Log().Debug().Str("Method", "Publish").Str("BusName", s.busName).Msg("published")
	return nil
}

// Loop blocks serving protocol requests until Close is called. It is the
// terminal operation of a session.
func (s *Server) Loop() {
	<-s.done
}

func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			_, _ = s.conn.ReleaseName(s.busName)
			err = s.conn.Close()
		}
	})
	return err
}

// EmitPlayerChanges signals MPRIS clients that player state changed, pulling
// the current values from the adapter. Clients cache what PropertiesChanged
// carries, so a burst's final state must always go out: when the rate limit
// is exhausted a single trailing emission is scheduled instead of dropping,
// and further calls coalesce into it. The trailing emission re-reads the
// adapter at fire time, so it carries the newest state.
func (s *Server) EmitPlayerChanges() {
	if s.emit == nil {
		return
	}

	s.emitMu.Lock()
	if s.emitPending {
		s.emitMu.Unlock()
		return
	}

	delay := s.limiter.Reserve().Delay()
	if delay == 0 {
		s.emitMu.Unlock()
		s.emitPlayerProperties()
		return
	}

	s.emitPending = true
	s.emitMu.Unlock()

	time.AfterFunc(delay, func() {
		s.emitMu.Lock()
		s.emitPending = false
		s.emitMu.Unlock()

		select {
		case <-s.done:
			return
		default:
		}
		s.emitPlayerProperties()
	})
}

func (s *Server) emitPlayerProperties() {
	props := map[string]dbus.Variant{
		"Metadata":       dbus.MakeVariant(metadataToMap(s.adapter.Metadata())),
		"PlaybackStatus": dbus.MakeVariant(s.adapter.PlayState().String()),
		"Volume":         dbus.MakeVariant(s.volumeLevel()),
		"CanPlay":        dbus.MakeVariant(s.adapter.CanPlay()),
		"CanPause":       dbus.MakeVariant(s.adapter.CanPause()),
		"CanSeek":        dbus.MakeVariant(s.adapter.CanSeek()),
		"CanGoNext":      dbus.MakeVariant(s.adapter.CanGoNext()),
		"CanGoPrevious":  dbus.MakeVariant(s.adapter.CanGoPrevious()),
	}

	if err := s.emitPropertiesChanged(playerInterface, props); err != nil {
		s.Log().Debug().Str("Method", "EmitPlayerChanges").Err(err).Msg("signal emission failed")
	}
}

// EmitSeeked tells clients the playback position jumped.
func (s *Server) EmitSeeked(position Microseconds) error {
	if s.emit == nil {
		return nil
	}
	return s.emit(objectPath, playerInterface+".Seeked", int64(position))
}

func (s *Server) emitPropertiesChanged(iface string, props map[string]dbus.Variant) error {
	return s.emit(
		objectPath,
		propsInterface+".PropertiesChanged",
		iface,
		props,
		[]string{},
	)
}

func (s *Server) volumeLevel() float64 {
	if s.adapter.IsMuted() {
		return 0
	}

	level, ok := s.adapter.Volume()
	if !ok {
		return 0
	}
	return level
}

// busNameSuffix maps a device name onto the D-Bus name grammar: only
// [A-Za-z0-9_] survive and the first rune must not be a digit.
func busNameSuffix(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "castctl"
	}
	return b.String()
}

func metadataToMap(md Metadata) map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"mpris:trackid":     dbus.MakeVariant(dbus.ObjectPath(md.TrackID)),
		"xesam:title":       dbus.MakeVariant(md.Title),
		"xesam:artist":      dbus.MakeVariant(stringList(md.Artists)),
		"xesam:album":       dbus.MakeVariant(md.Album),
		"xesam:albumArtist": dbus.MakeVariant(stringList(md.AlbumArtists)),
		"xesam:discNumber":  dbus.MakeVariant(int32(md.DiscNumber)),
		"xesam:comment":     dbus.MakeVariant(stringList(md.Comments)),
	}

	if md.Length != NoDuration {
		m["mpris:length"] = dbus.MakeVariant(int64(md.Length))
	}
	if md.ArtURL != "" {
		m["mpris:artUrl"] = dbus.MakeVariant(md.ArtURL)
	}
	if md.URL != "" {
		m["xesam:url"] = dbus.MakeVariant(md.URL)
	}
	if md.TrackNumber > 0 {
		m["xesam:trackNumber"] = dbus.MakeVariant(int32(md.TrackNumber))
	}

	return m
}

func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
