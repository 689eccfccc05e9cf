// Package mpris exposes an adapter object on the session bus as an
// org.mpris.MediaPlayer2 player. The adapter is the sole data source: every
// property read pulls fresh state, nothing is cached server-side.
package mpris

// Microseconds is the MPRIS time unit.
type Microseconds int64

const (
	// Beginning is the zero playback position.
	Beginning Microseconds = 0

	// NoDuration marks an unknown track length. Metadata omits the
	// length field entirely when it is unknown, so this is a sentinel
	// distinct from zero.
	NoDuration Microseconds = -1
)

// USInSecond converts seconds to the MPRIS time unit.
const USInSecond = 1_000_000

// PlayState is the MPRIS playback status.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Metadata is the fixed-schema record MPRIS clients consume.
type Metadata struct {
	TrackID      string
	Length       Microseconds
	ArtURL       string
	URL          string
	Title        string
	Artists      []string
	Album        string
	AlbumArtists []string
	DiscNumber   int
	TrackNumber  int
	Comments     []string
}

// Adapter is the contract a player implementation satisfies. All methods are
// pull-based reads or imperative commands; the server never stores their
// results.
type Adapter interface {
	Name() string
	DesktopEntry() string

	Metadata() Metadata
	PlayState() PlayState
	Position() Microseconds
	Rate() float64
	SetRate(rate float64)

	// Volume reports the current level, false when the device has not
	// reported volume yet.
	Volume() (float64, bool)
	SetVolume(level float64)
	IsMuted() bool
	SetMuted(muted bool)

	Shuffle() bool
	SetShuffle(enabled bool)
	IsRepeating() bool
	SetRepeating(enabled bool)

	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	SeekTo(position Microseconds) error
	OpenURI(uri string) error
	Quit() error

	CanQuit() bool
	CanPlay() bool
	CanPause() bool
	CanSeek() bool
	CanGoNext() bool
	CanGoPrevious() bool
	CanControl() bool
	CanEditTracks() bool
}
