// Package session ties discovery, the device adapter and the media server
// together into a foreground run, and manages detached service runs.
package session

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"castctl.app/castctl/internal/bridge"
	"castctl.app/castctl/internal/castdevice"
	"castctl.app/castctl/internal/discovery"
	"castctl.app/castctl/internal/mpris"
)

// Exit codes of the command line interface.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitNoDevice   = 2
	ExitNotRunning = 3
)

var (
	// Logger is the package logger. LogOutput can be set before first use.
	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once
)

// swapped in tests
var (
	findDevice = discovery.FindDevice
	sleep      = time.Sleep
)

func Log() *zerolog.Logger {
	initLogOnce.Do(func() {
		out := LogOutput
		if out == nil {
			out = os.Stderr
		}
		Logger = zerolog.New(out).With().Timestamp().Str("Package", "session").Logger()
	})
	return &Logger
}

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, discovery.ErrDeviceNotFound):
		return ExitNoDevice
	case errors.Is(err, ErrNotRunning):
		return ExitNotRunning
	}
	return ExitError
}

// RetryUntilFound resolves the device named by args. When args carries a
// positive wait period the search repeats until a device shows up, sleeping
// that long between sweeps; otherwise one sweep decides.
func RetryUntilFound(args Args) (castdevice.Device, error) {
	wait := time.Duration(args.WaitSecs * float64(time.Second))

	for {
		dev, err := findDevice(args.Name, args.Host, args.UUID, args.Retries)
		if err == nil {
			return dev, nil
		}

		if wait <= 0 || !errors.Is(err, discovery.ErrDeviceNotFound) {
			return nil, err
		}

		Log().Warn().
			Str("Device", args.Identifier()).
			Dur("Wait", wait).
			Msg("device not found, waiting before next sweep")
		sleep(wait)
	}
}

// CreateAdapterAndServer builds the adapter for a connected device, publishes
// the media server on the session bus and wires device status pushes into
// server property change signals.
func CreateAdapterAndServer(dev castdevice.Device) (*bridge.Wrapper, *mpris.Server, error) {
	wrapper := bridge.New(dev)
	srv := mpris.NewServer(wrapper.Name(), wrapper)

	if err := srv.Publish(); err != nil {
		return nil, nil, err
	}

	dev.OnStatusChange(func() {
		wrapper.OnNewStatus()
		srv.EmitPlayerChanges()
	})

	return wrapper, srv, nil
}

// RunServer resolves the device and serves it until the server loop ends.
func RunServer(args Args) error {
	dev, err := RetryUntilFound(args)
	if err != nil {
		return err
	}
	defer dev.Close()

	wrapper, srv, err := CreateAdapterAndServer(dev)
	if err != nil {
		return err
	}
	defer srv.Close()

	wrapper.SetLightIcon(args.LightIcon)

	Log().Info().
		Str("Device", wrapper.Name()).
		Str("BusName", srv.BusName()).
		Msg("serving device")

	srv.Loop()
	return nil
}
