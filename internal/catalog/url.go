package catalog

import (
	"net/url"
	"strings"
)

// publicSoundsAnchor marks where the asset tree begins inside a source file
// path. Everything after it is the object's path within the bucket.
const publicSoundsAnchor = "/public/sounds/"

// EntryURL returns the canonical playback URL for an entry. Preference order:
// the URL recorded in the catalog, a path derived from the source file path's
// anchor, and finally a bucket-folder guess from the filename.
func (s *Store) EntryURL(e *Entry) string {
	if e.CanonicalURL != "" {
		return e.CanonicalURL
	}
	if rel, ok := relativeAfterAnchor(e.SourcePath); ok {
		return s.bucketBase + "/" + escapePathSegments(rel)
	}
	return s.bucketBase + "/" + folderForFilename(e.Filename) + "/" + e.Filename
}

// relativeAfterAnchor extracts the bucket-relative path after the
// "/public/sounds/" anchor. Backslashes are normalized first so Windows
// export paths resolve the same way.
func relativeAfterAnchor(sourcePath string) (string, bool) {
	if sourcePath == "" {
		return "", false
	}
	normalized := strings.ReplaceAll(sourcePath, "\\", "/")
	idx := strings.Index(strings.ToLower(normalized), publicSoundsAnchor)
	if idx < 0 {
		return "", false
	}
	rel := normalized[idx+len(publicSoundsAnchor):]
	if rel == "" {
		return "", false
	}
	return rel, true
}

// escapePathSegments URL-encodes each path segment while keeping the
// separators intact.
func escapePathSegments(rel string) string {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// folderForFilename guesses the bucket folder for assets that predate source
// path tracking.
func folderForFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "mixkit"):
		return "mixkit"
	case strings.Contains(lower, "filmcow"):
		return "filmcow"
	default:
		return "google"
	}
}
