package storage

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// Objects live under <public base>/image/upload/v1/<folder>/<name>.<ext>,
// mirroring the delivery URL structure of hosted media CDNs. The public id is
// everything after the upload marker and version segment, extension stripped.
const keyPrefix = "image/upload/v1/"

const uploadMarker = "upload"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ObjectKey maps a public id and extension back to the stored object key.
func ObjectKey(publicID, ext string) string {
	return keyPrefix + publicID + "." + ext
}

// ExtractPublicID recovers the durable object identifier from a public
// serving URL. It fails when the URL does not contain the upload marker or
// carries no object path after it; callers must not attempt deletion with an
// identifier from a failed extraction.
func ExtractPublicID(mediaURL string) (string, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return "", err
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	marker := -1
	for i, segment := range segments {
		if segment == uploadMarker {
			marker = i
			break
		}
	}
	if marker < 0 {
		return "", errors.New("storage: url has no upload marker")
	}

	rest := segments[marker+1:]
	if len(rest) > 0 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", errors.New("storage: url has no object path")
	}

	last := rest[len(rest)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		rest[len(rest)-1] = last[:dot]
	}
	publicID := strings.Join(rest, "/")
	if publicID == "" {
		return "", errors.New("storage: empty public id")
	}
	return publicID, nil
}

// ExtensionForMime maps an image MIME type onto a file extension. Unknown
// types fall back to png, the format Gemini emits by default.
func ExtensionForMime(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
