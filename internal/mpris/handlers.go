package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// D-Bus method and property handlers. godbus dispatches bus calls to these
// by name for the interfaces exported in Publish.

func (s *Server) Raise() *dbus.Error {
	return nil
}

func (s *Server) Quit() *dbus.Error {
	return s.call("Quit", s.adapter.Quit)
}

func (s *Server) Play() *dbus.Error {
	return s.call("Play", s.adapter.Play)
}

func (s *Server) Pause() *dbus.Error {
	return s.call("Pause", s.adapter.Pause)
}

func (s *Server) PlayPause() *dbus.Error {
	if s.adapter.PlayState() == Playing {
		return s.Pause()
	}
	return s.Play()
}

func (s *Server) Stop() *dbus.Error {
	return s.call("Stop", s.adapter.Stop)
}

func (s *Server) Next() *dbus.Error {
	return s.call("Next", s.adapter.Next)
}

func (s *Server) Previous() *dbus.Error {
	return s.call("Previous", s.adapter.Previous)
}

func (s *Server) Seek(offset int64) *dbus.Error {
	position := s.adapter.Position() + Microseconds(offset)
	if position < Beginning {
		position = Beginning
	}

	return s.call("Seek", func() error {
		if err := s.adapter.SeekTo(position); err != nil {
			return err
		}
		return s.EmitSeeked(position)
	})
}

func (s *Server) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	return s.call("SetPosition", func() error {
		if err := s.adapter.SeekTo(Microseconds(position)); err != nil {
			return err
		}
		return s.EmitSeeked(Microseconds(position))
	})
}

func (s *Server) OpenUri(uri string) *dbus.Error {
	return s.call("OpenUri", func() error {
		return s.adapter.OpenURI(uri)
	})
}

func (s *Server) call(method string, fn func() error) *dbus.Error {
	s.Log().Debug().Str("Method", method).Msg("protocol command")
	if err := fn(); err != nil {
		s.Log().Error().Str("Method", method).Err(err).Msg("failed")
		return dbus.MakeFailedError(err)
	}
	return nil
}

// org.freedesktop.DBus.Properties

func (s *Server) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	switch iface {
	case rootInterface:
		return s.rootProperty(prop)
	case playerInterface:
		return s.playerProperty(prop)
	}
	return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown interface: %s", iface))
}

func (s *Server) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case rootInterface:
		return s.allRootProperties(), nil
	case playerInterface:
		return s.allPlayerProperties(), nil
	}
	return nil, dbus.MakeFailedError(fmt.Errorf("unknown interface: %s", iface))
}

func (s *Server) Set(iface, prop string, value dbus.Variant) *dbus.Error {
	if iface != playerInterface {
		return nil
	}

	switch prop {
	case "Volume":
		level, ok := value.Value().(float64)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for Volume"))
		}
		s.adapter.SetVolume(level)
	case "Shuffle":
		enabled, ok := value.Value().(bool)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for Shuffle"))
		}
		s.adapter.SetShuffle(enabled)
	case "LoopStatus":
		status, ok := value.Value().(string)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for LoopStatus"))
		}
		s.adapter.SetRepeating(status != "None")
	case "Rate":
		rate, ok := value.Value().(float64)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for Rate"))
		}
		s.adapter.SetRate(rate)
	}

	return nil
}

func (s *Server) rootProperty(prop string) (dbus.Variant, *dbus.Error) {
	all := s.allRootProperties()
	if v, ok := all[prop]; ok {
		return v, nil
	}
	return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property: %s", prop))
}

func (s *Server) playerProperty(prop string) (dbus.Variant, *dbus.Error) {
	all := s.allPlayerProperties()
	if v, ok := all[prop]; ok {
		return v, nil
	}
	return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property: %s", prop))
}

func (s *Server) allRootProperties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(s.adapter.CanQuit()),
		"CanRaise":            dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(s.adapter.CanEditTracks()),
		"Identity":            dbus.MakeVariant(s.adapter.Name()),
		"DesktopEntry":        dbus.MakeVariant(s.adapter.DesktopEntry()),
		"SupportedUriSchemes": dbus.MakeVariant([]string{"http", "https"}),
		"SupportedMimeTypes": dbus.MakeVariant([]string{
			"audio/mpeg", "audio/mp4", "audio/flac", "audio/ogg",
			"video/mp4", "video/webm",
		}),
	}
}

func (s *Server) allPlayerProperties() map[string]dbus.Variant {
	loopStatus := "None"
	if s.adapter.IsRepeating() {
		loopStatus = "Track"
	}

	return map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(s.adapter.PlayState().String()),
		"LoopStatus":     dbus.MakeVariant(loopStatus),
		"Rate":           dbus.MakeVariant(s.adapter.Rate()),
		"MinimumRate":    dbus.MakeVariant(1.0),
		"MaximumRate":    dbus.MakeVariant(1.0),
		"Shuffle":        dbus.MakeVariant(s.adapter.Shuffle()),
		"Metadata":       dbus.MakeVariant(metadataToMap(s.adapter.Metadata())),
		"Volume":         dbus.MakeVariant(s.volumeLevel()),
		"Position":       dbus.MakeVariant(int64(s.adapter.Position())),
		"CanGoNext":      dbus.MakeVariant(s.adapter.CanGoNext()),
		"CanGoPrevious":  dbus.MakeVariant(s.adapter.CanGoPrevious()),
		"CanPlay":        dbus.MakeVariant(s.adapter.CanPlay()),
		"CanPause":       dbus.MakeVariant(s.adapter.CanPause()),
		"CanSeek":        dbus.MakeVariant(s.adapter.CanSeek()),
		"CanControl":     dbus.MakeVariant(s.adapter.CanControl()),
	}
}
