package bridge

import (
	"strings"

	"castctl.app/castctl/internal/mpris"
)

// Cast devices have no disc concept; the protocol field is pinned.
const defaultDiscNumber = 1

// Metadata assembles the fixed-schema record from the current status. It is
// recomputed on every query and always complete: absent data maps to the
// documented sentinels, never to a missing record.
func (w *Wrapper) Metadata() mpris.Metadata {
	titles := w.Titles()

	artists := []string{}
	if titles.Artist != "" {
		artists = []string{titles.Artist}
	}

	trackNumber := 0
	if status := w.MediaStatus(); status != nil {
		trackNumber = status.TrackNumber
	}

	return mpris.Metadata{
		TrackID:      trackID(titles.Title),
		Length:       w.track.Duration(w.MediaStatus()),
		ArtURL:       w.ArtURL(),
		URL:          w.currentURL(),
		Title:        titles.Title,
		Artists:      artists,
		Album:        titles.Album,
		AlbumArtists: artists,
		DiscNumber:   defaultDiscNumber,
		TrackNumber:  trackNumber,
		Comments:     []string{},
	}
}

// currentURL exposes the playing content's source URL. Provider apps report
// bare content ids instead of URLs; those are rewritten to a watch URL while
// the provider controller is active.
func (w *Wrapper) currentURL() string {
	status := w.MediaStatus()
	if status == nil {
		return ""
	}

	contentID := status.ContentID
	if contentID != "" && !strings.Contains(contentID, "http") && w.yt.IsActive() {
		return ytWatchURL + contentID
	}

	return contentID
}

// trackID derives a D-Bus object path for the current track; the path
// grammar only allows [A-Za-z0-9_] segments.
func trackID(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		b.WriteString("unknown")
	}

	return "/track/" + b.String()
}
