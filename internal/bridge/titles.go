package bridge

// maxTitles caps the aggregate at the protocol's practical display surface:
// title, artist, album.
const maxTitles = 3

// Titles is the fixed-arity aggregate of human-readable strings describing
// what is playing. Missing positions are empty.
type Titles struct {
	Title  string
	Artist string
	Album  string
}

// Titles derives the aggregate from the current status, preferring
// track-level identity over app-level identity: media title, then metadata
// subtitle, then artist, then album, then the app's display name. Absent
// sources are skipped so later entries shift up; the result is truncated to
// three.
func (w *Wrapper) Titles() Titles {
	var titles []string

	if status := w.MediaStatus(); status != nil {
		if status.Title != "" {
			titles = append(titles, status.Title)
		}
		if status.Subtitle != "" {
			titles = append(titles, status.Subtitle)
		}
		if status.Artist != "" {
			titles = append(titles, status.Artist)
		}
		if status.AlbumName != "" {
			titles = append(titles, status.AlbumName)
		}
	}

	if appName := w.dev.AppDisplayName(); appName != "" {
		titles = append(titles, appName)
	}

	if len(titles) > maxTitles {
		titles = titles[:maxTitles]
	}

	var out Titles
	if len(titles) > 0 {
		out.Title = titles[0]
	}
	if len(titles) > 1 {
		out.Artist = titles[1]
	}
	if len(titles) > 2 {
		out.Album = titles[2]
	}

	return out
}
