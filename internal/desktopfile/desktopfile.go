// Package desktopfile generates the XDG launcher artifact the desktop shell
// needs to show a name and icon for the player.
package desktopfile

import (
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

//go:embed assets/cast-dark.svg assets/cast-light.svg
var assets embed.FS

// ErrNoDesktopFile means no launcher can be generated in this environment,
// e.g. no resolvable data directory.
var ErrNoDesktopFile = errors.New("desktopfile: no desktop file available")

const (
	appName        = "castctl"
	darkIconAsset  = "assets/cast-dark.svg"
	lightIconAsset = "assets/cast-light.svg"

	remoteIconName = "device-icon.png"
	maxIconBytes   = 1 << 20
)

// swapped in tests
var httpGet = func(url string) (*http.Response, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return client.Get(url)
}

// DataDir returns the per-user data directory launcher artifacts live in.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("desktopfile: resolve data dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// DefaultIconPath is where the bundled dark icon is materialized.
func DefaultIconPath() string {
	return assetPath(darkIconAsset)
}

// LightIconPath is where the bundled light icon is materialized.
func LightIconPath() string {
	return assetPath(lightIconAsset)
}

func assetPath(asset string) string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, filepath.Base(asset))
}

// Create writes the launcher file and its icon, returning the launcher path.
// When remoteIconURL is set the device's own icon is fetched once and used;
// fetch failures fall back to the bundled assets. Returns ErrNoDesktopFile
// when no data directory is available.
func Create(lightIcon bool, remoteIconURL string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", ErrNoDesktopFile
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("desktopfile: create data dir: %w", err)
	}

	iconPath := ""
	if remoteIconURL != "" {
		iconPath, err = fetchRemoteIcon(dir, remoteIconURL)
		if err != nil {
			iconPath = ""
		}
	}
	if iconPath == "" {
		iconPath, err = ensureBundledIcon(dir, lightIcon)
		if err != nil {
			return "", err
		}
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Control a cast device from the desktop
Icon=%s
Exec=%s connect
Categories=AudioVideo;Player;
NoDisplay=true
`, appName, iconPath, appName)

	path := filepath.Join(dir, appName+".desktop")
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return "", fmt.Errorf("desktopfile: write launcher: %w", err)
	}

	return path, nil
}

func ensureBundledIcon(dir string, lightIcon bool) (string, error) {
	asset := darkIconAsset
	if lightIcon {
		asset = lightIconAsset
	}

	path := filepath.Join(dir, filepath.Base(asset))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := assets.ReadFile(asset)
	if err != nil {
		return "", fmt.Errorf("desktopfile: read bundled icon: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("desktopfile: write icon: %w", err)
	}

	return path, nil
}

func fetchRemoteIcon(dir, url string) (string, error) {
	path := filepath.Join(dir, remoteIconName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	resp, err := httpGet(url)
	if err != nil {
		return "", fmt.Errorf("desktopfile: fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("desktopfile: fetch icon: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return "", fmt.Errorf("desktopfile: read icon: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("desktopfile: write icon: %w", err)
	}

	return path, nil
}
