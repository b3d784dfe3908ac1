// ABOUTME: Photo preparation for the evidence appendix
// ABOUTME: Decodes data URLs with EXIF orientation, downsizes and re-encodes as JPEG
package render

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/harperreed/reportmaster/models"
)

// MaxPhotoEdge caps the long edge of embedded photos, in pixels.
const MaxPhotoEdge = 1600

const jpegQuality = 80

type preparedPhoto struct {
	name    string
	jpeg    []byte
	width   int
	height  int
	caption string
}

// preparePhoto turns a stored photo into JPEG bytes ready to embed.
func preparePhoto(p models.ReportPhoto) (*preparedPhoto, error) {
	_, data, err := models.DecodeDataURL(p.DataURL)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo %s: %w", p.ID, err)
	}
	img = imaging.Fit(img, MaxPhotoEdge, MaxPhotoEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode photo %s: %w", p.ID, err)
	}

	b := img.Bounds()
	return &preparedPhoto{
		name:    "photo-" + p.ID,
		jpeg:    buf.Bytes(),
		width:   b.Dx(),
		height:  b.Dy(),
		caption: p.Caption,
	}, nil
}

// fitBox scales w x h to fit inside boxW x boxH, keeping the aspect ratio.
func fitBox(w, h int, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := boxW / float64(w)
	if s := boxH / float64(h); s < scale {
		scale = s
	}
	return float64(w) * scale, float64(h) * scale
}
