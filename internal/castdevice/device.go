package castdevice

import (
	"github.com/pkg/errors"
	"github.com/vishen/go-chromecast/cast"
)

var (
	ErrNotConnected = errors.New("castdevice: not connected")
	ErrNoAppRunning = errors.New("castdevice: no application running")
)

// Device is the connected handle to a single cast device. It is the full
// delegated surface the rest of the program may use; nothing else on the
// underlying transport is reachable through it.
type Device interface {
	Name() string
	UUID() string
	AppDisplayName() string

	// CastStatus and MediaStatus return the last received snapshots, or
	// nil when the device has not reported the respective status.
	CastStatus() *CastStatus
	MediaStatus() *MediaStatus

	Play() error
	Pause() error
	StopMedia() error
	SeekSeconds(seconds int) error
	QueueNext() error
	QueuePrev() error
	PlayMedia(uri, contentType string) error
	VolumeUp(delta float64) error
	VolumeDown(delta float64) error
	SetMuted(muted bool) error
	QuitApp() error

	// RegisterController attaches a receiver-app controller so namespace
	// messages are routed to it and it can send payloads back.
	RegisterController(c Controller)

	// OnStatusChange registers fn to run after every status update the
	// device delivers. fn is invoked from the transport goroutine.
	OnStatusChange(fn func())

	Close() error
}

// Controller is a receiver-app specific controller (e.g. the YouTube
// controller) that speaks its own cast namespace.
type Controller interface {
	Namespace() string

	// Registered hands the controller its payload channel back to the
	// device. Called once, from RegisterController.
	Registered(req Requester)

	// HandleMessage receives raw payloads arriving on the controller's
	// namespace.
	HandleMessage(payload []byte)
}

// Requester is the slice of the device a Controller may talk through.
type Requester interface {
	CastStatus() *CastStatus

	// SendReceiverPayload sends a payload to the receiver itself
	// (e.g. LAUNCH).
	SendReceiverPayload(payload cast.Payload) error

	// SendAppPayload sends a payload to the running application's
	// transport on the given namespace.
	SendAppPayload(namespace string, payload cast.Payload) error
}
