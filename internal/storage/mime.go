package storage

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"community-api/pkg/apierror"
)

const svgMIME = "image/svg+xml"

// mediaContentType settles the content type stored with an object. A missing
// or generic declared type is replaced by a sniffed one. Raster images must
// decode, and the decoded format wins over whatever the caller declared.
func mediaContentType(declared string, body []byte) (string, error) {
	contentType := normalizeMIME(declared)
	if contentType == "" || contentType == "application/octet-stream" || contentType == "text/plain" {
		contentType = normalizeMIME(http.DetectContentType(body))
	}

	if !isImageMIME(contentType) {
		return "", apierror.Validation("media source is not an image", contentType)
	}
	if contentType == svgMIME {
		return contentType, nil
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return "", apierror.Validation("media source is not a readable image", contentType)
	}

	return "image/" + format, nil
}

func normalizeMIME(raw string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

func isImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
