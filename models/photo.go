// ABOUTME: Photo evidence helpers
// ABOUTME: Builds and parses base64 data URLs for embedded report photos
package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotImage = errors.New("not an image")

// NewPhoto wraps raw image bytes into a photo with a data URL.
func NewPhoto(data []byte, caption string, now time.Time) (ReportPhoto, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return ReportPhoto{}, fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return ReportPhoto{
		ID:        uuid.NewString(),
		DataURL:   EncodeDataURL(mime, data),
		Timestamp: now.UnixMilli(),
		Caption:   strings.TrimSpace(caption),
	}, nil
}

func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the media type and payload of a base64 data URL.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return mime, data, nil
}
