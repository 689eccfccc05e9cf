package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Args are the connection arguments a detached service run was started
// with. They are persisted so that stop and status can address the same
// device the start command named.
type Args struct {
	Name      string  `json:"name,omitempty"`
	Host      string  `json:"host,omitempty"`
	UUID      string  `json:"uuid,omitempty"`
	WaitSecs  float64 `json:"waitSecs,omitempty"`
	Retries   int     `json:"retries,omitempty"`
	LightIcon bool    `json:"lightIcon,omitempty"`
	LogLevel  string  `json:"logLevel,omitempty"`
}

// swapped in tests
var userConfigDir = os.UserConfigDir

// Identifier returns the most specific device identifier present, with the
// same precedence the resolver uses. "any" when no identifier was given.
func (a Args) Identifier() string {
	switch {
	case a.Host != "":
		return a.Host
	case a.UUID != "":
		return a.UUID
	case a.Name != "":
		return a.Name
	}
	return "any"
}

func (a Args) filename() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: no config dir: %w", err)
	}

	id := a.Identifier()
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return filepath.Join(dir, "castctl", b.String()+".json"), nil
}

// Save writes the args record for this device identifier.
func (a Args) Save() error {
	name, err := a.filename()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return fmt.Errorf("session: create config dir: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode args: %w", err)
	}
	if err := os.WriteFile(name, data, 0600); err != nil {
		return fmt.Errorf("session: write args: %w", err)
	}
	return nil
}

// Load reads back a previously saved args record for the same identifiers.
// Returns nil without error when no record exists.
func (a Args) Load() (*Args, error) {
	name, err := a.filename()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read args: %w", err)
	}

	var stored Args
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("session: decode args: %w", err)
	}
	return &stored, nil
}

// Delete removes the stored args record. Missing records are not an error.
func (a Args) Delete() error {
	name, err := a.filename()
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: delete args: %w", err)
	}
	return nil
}
