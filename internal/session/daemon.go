package session

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Service lifecycle errors.
var (
	ErrNotRunning     = errors.New("session: service is not running")
	ErrAlreadyRunning = errors.New("session: service is already running")
)

// State is the record of a detached service run.
type State struct {
	PID       int       `json:"pid"`
	Args      Args      `json:"args"`
	StartedAt time.Time `json:"startedAt"`
}

// swapped in tests
var (
	executable   = os.Executable
	startCommand = func(cmd *exec.Cmd) (int, error) {
		if err := cmd.Start(); err != nil {
			return 0, err
		}
		pid := cmd.Process.Pid
		_ = cmd.Process.Release()
		return pid, nil
	}
)

func statePath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: no config dir: %w", err)
	}
	return filepath.Join(dir, "castctl", "service.json"), nil
}

func loadState() (*State, error) {
	name, err := statePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read service state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("session: decode service state: %w", err)
	}
	return &st, nil
}

func saveState(st State) error {
	name, err := statePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return fmt.Errorf("session: create config dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode service state: %w", err)
	}
	if err := os.WriteFile(name, data, 0600); err != nil {
		return fmt.Errorf("session: write service state: %w", err)
	}
	return nil
}

func clearState() error {
	name, err := statePath()
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: clear service state: %w", err)
	}
	return nil
}

// Start launches a detached connect process with the given args and records
// it as the running service. Starting while a live service exists fails.
func Start(args Args) (int, error) {
	if st, err := Status(); err == nil && st != nil {
		return st.PID, errors.Wrapf(ErrAlreadyRunning, "pid %d", st.PID)
	}

	self, err := executable()
	if err != nil {
		return 0, fmt.Errorf("session: locate executable: %w", err)
	}

	cmd := exec.Command(self, connectArgv(args)...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setDetachAttr(cmd)

	pid, err := startCommand(cmd)
	if err != nil {
		return 0, fmt.Errorf("session: start service: %w", err)
	}

	st := State{PID: pid, Args: args, StartedAt: time.Now()}
	if err := saveState(st); err != nil {
		return pid, err
	}
	if err := args.Save(); err != nil {
		return pid, err
	}

	Log().Info().Int("PID", pid).Str("Device", args.Identifier()).Msg("service started")
	return pid, nil
}

// Stop terminates the recorded service process and clears its state.
// Stopping when nothing runs returns ErrNotRunning.
func Stop() error {
	st, err := Status()
	if err != nil {
		return err
	}

	if err := terminateProcess(st.PID); err != nil {
		return fmt.Errorf("session: stop pid %d: %w", st.PID, err)
	}

	if err := st.Args.Delete(); err != nil {
		return err
	}
	if err := clearState(); err != nil {
		return err
	}

	Log().Info().Int("PID", st.PID).Msg("service stopped")
	return nil
}

// Status reports the running service. A stale record whose process has gone
// away is cleared, stored args included, and reported as not running.
func Status() (*State, error) {
	st, err := loadState()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotRunning
	}

	if !processAlive(st.PID) {
		_ = st.Args.Delete()
		_ = clearState()
		return nil, errors.Wrapf(ErrNotRunning, "stale pid %d", st.PID)
	}
	return st, nil
}

// connectArgv rebuilds the connect command line from stored args.
func connectArgv(args Args) []string {
	argv := []string{"connect"}

	if args.Name != "" {
		argv = append(argv, "--name", args.Name)
	}
	if args.Host != "" {
		argv = append(argv, "--host", args.Host)
	}
	if args.UUID != "" {
		argv = append(argv, "--uuid", args.UUID)
	}
	if args.WaitSecs > 0 {
		argv = append(argv, "--wait-period", strconv.FormatFloat(args.WaitSecs, 'f', -1, 64))
	}
	if args.Retries > 0 {
		argv = append(argv, "--retries", strconv.Itoa(args.Retries))
	}
	if args.LightIcon {
		argv = append(argv, "--icon")
	}
	if args.LogLevel != "" {
		argv = append(argv, "--log-level", args.LogLevel)
	}

	return argv
}
