package bridge

import (
	"path/filepath"
	"strings"
	"sync"

	"castctl.app/castctl/internal/desktopfile"
)

// NoDesktopFile is the sentinel exposed when no launcher artifact exists.
const NoDesktopFile = ""

// swapped in tests
var (
	createDesktopFile = desktopfile.Create
	defaultIconPath   = desktopfile.DefaultIconPath
	lightIconPath     = desktopfile.LightIconPath
)

// iconState holds the icon-style flag and the computed desktop-entry path.
// The entry is computed once and kept for the adapter's lifetime; changing
// the style flag invalidates it.
type iconState struct {
	mu         sync.Mutex
	light      bool
	entry      string
	entryValid bool
}

// SetLightIcon switches between the light and dark icon assets.
func (w *Wrapper) SetLightIcon(light bool) {
	w.icons.mu.Lock()
	defer w.icons.mu.Unlock()

	if w.icons.light != light {
		w.icons.entryValid = false
	}
	w.icons.light = light
}

// LightIcon reports the current icon style.
func (w *Wrapper) LightIcon() bool {
	w.icons.mu.Lock()
	defer w.icons.mu.Unlock()
	return w.icons.light
}

// ArtURL resolves artwork for the current track: media thumbnail, then the
// running app's icon, then the bundled asset matching the icon style.
func (w *Wrapper) ArtURL() string {
	if status := w.MediaStatus(); status != nil && status.ThumbnailURL != "" {
		return status.ThumbnailURL
	}

	if status := w.CastStatus(); status != nil && status.IconURL != "" {
		return status.IconURL
	}

	if w.LightIcon() {
		return lightIconPath()
	}
	return defaultIconPath()
}

// DesktopEntry returns the extension-free launcher identifier the protocol
// requires, or NoDesktopFile when none could be generated.
func (w *Wrapper) DesktopEntry() string {
	w.icons.mu.Lock()
	defer w.icons.mu.Unlock()

	if w.icons.entryValid {
		return w.icons.entry
	}

	iconURL := ""
	if status := w.dev.CastStatus(); status != nil {
		iconURL = status.IconURL
	}

	path, err := createDesktopFile(w.icons.light, iconURL)
	if err != nil {
		w.Log().Debug().Str("Method", "DesktopEntry").Err(err).Msg("no desktop file")
		w.icons.entry = NoDesktopFile
	} else {
		w.icons.entry = strings.TrimSuffix(path, filepath.Ext(path))
	}
	w.icons.entryValid = true

	return w.icons.entry
}
