package session

import (
	"errors"
	"testing"
	"time"

	"castctl.app/castctl/internal/castdevice"
	"castctl.app/castctl/internal/discovery"
)

func TestRetryUntilFoundSingleAttempt(t *testing.T) {
	origFind := findDevice
	origSleep := sleep
	t.Cleanup(func() {
		findDevice = origFind
		sleep = origSleep
	})

	attempts := 0
	findDevice = func(name, host, uuid string, retries int) (castdevice.Device, error) {
		attempts++
		return nil, discovery.ErrDeviceNotFound
	}
	sleep = func(time.Duration) {
		t.Fatalf("RetryUntilFound() with zero wait must not sleep")
	}

	_, err := RetryUntilFound(Args{Name: "Kitchen"})
	if !errors.Is(err, discovery.ErrDeviceNotFound) {
		t.Fatalf("RetryUntilFound() err = %v, want ErrDeviceNotFound", err)
	}
	if attempts != 1 {
		t.Fatalf("RetryUntilFound() attempts = %d, want 1", attempts)
	}
}

func TestRetryUntilFoundKeepsSweeping(t *testing.T) {
	origFind := findDevice
	origSleep := sleep
	t.Cleanup(func() {
		findDevice = origFind
		sleep = origSleep
	})

	attempts := 0
	findDevice = func(name, host, uuid string, retries int) (castdevice.Device, error) {
		attempts++
		if attempts < 3 {
			return nil, discovery.ErrDeviceNotFound
		}
		return nil, nil
	}

	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := RetryUntilFound(Args{Name: "Kitchen", WaitSecs: 30})
	if err != nil {
		t.Fatalf("RetryUntilFound() err = %v, want nil", err)
	}
	if attempts != 3 {
		t.Fatalf("RetryUntilFound() attempts = %d, want 3", attempts)
	}
	if len(slept) != 2 || slept[0] != 30*time.Second {
		t.Fatalf("RetryUntilFound() sleeps = %v, want two 30s waits", slept)
	}
}

func TestRetryUntilFoundStopsOnOtherErrors(t *testing.T) {
	origFind := findDevice
	origSleep := sleep
	t.Cleanup(func() {
		findDevice = origFind
		sleep = origSleep
	})

	connectErr := errors.New("connection refused")
	findDevice = func(name, host, uuid string, retries int) (castdevice.Device, error) {
		return nil, connectErr
	}
	sleep = func(time.Duration) {
		t.Fatalf("RetryUntilFound() must not retry connection errors")
	}

	_, err := RetryUntilFound(Args{Name: "Kitchen", WaitSecs: 30})
	if !errors.Is(err, connectErr) {
		t.Fatalf("RetryUntilFound() err = %v, want the connection error", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"device not found", discovery.ErrDeviceNotFound, ExitNoDevice},
		{"service not running", ErrNotRunning, ExitNotRunning},
		{"anything else", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
