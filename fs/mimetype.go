package fs

import (
	"mime"
	"path"
	"strings"
)

// mimeTypeOverrides are consulted before the platform table.
//
// The platform table reports ".mjs" with a charset parameter, or not
// at all on older systems, but browsers loading ES modules want the
// bare JavaScript type.
var mimeTypeOverrides = []struct {
	suffix   string
	mimeType string
}{
	{".mjs", "text/javascript"},
}

// MimeTypeFromName returns a guess at the mime type from the name
//
// The suffix match is case sensitive, other extensions go through
// mime.TypeByExtension and anything it doesn't know is
// "application/octet-stream".
func MimeTypeFromName(remote string) (mimeType string) {
	for _, override := range mimeTypeOverrides {
		if strings.HasSuffix(remote, override.suffix) {
			return override.mimeType
		}
	}
	mimeType = mime.TypeByExtension(path.Ext(remote))
	if !strings.ContainsRune(mimeType, '/') {
		mimeType = "application/octet-stream"
	}
	return mimeType
}
