package bridge

import "strings"

const (
	ytLongForm  = "youtube.com/"
	ytShortForm = "youtu.be/"

	ytWatchURL = "https://youtube.com/watch?v="
)

// IsYouTubeURI reports whether the URI addresses YouTube content that the
// provider's own receiver app can play natively.
func IsYouTubeURI(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.Contains(lower, ytLongForm) || strings.Contains(lower, ytShortForm)
}

// ExtractVideoID pulls the video id out of a YouTube URI: the value after
// the first "v=" marker for the long form, the last path segment for the
// short form, in both cases stripped of any trailing query suffix. Empty
// when the URI is not YouTube content at all.
func ExtractVideoID(uri string) string {
	lower := strings.ToLower(uri)

	var id string
	switch {
	case strings.Contains(lower, ytLongForm):
		i := strings.Index(uri, "v=")
		if i < 0 {
			return ""
		}
		id = uri[i+2:]
	case strings.Contains(lower, ytShortForm):
		id = uri[strings.LastIndex(uri, "/")+1:]
	default:
		return ""
	}

	if i := strings.IndexAny(id, "&?"); i >= 0 {
		id = id[:i]
	}

	return id
}
