// ABOUTME: Freehand markup drawn over report photos
// ABOUTME: Rasterizes red pen strokes onto the image and returns a JPEG data URL
package annotate

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/harperreed/reportmaster/models"
)

// Pen settings.
const (
	PenColor = "#e11d48"
	PenWidth = 4.0
	Quality  = 80
)

type Point struct {
	X, Y float64
}

// Stroke is one continuous pen movement in image pixel coordinates.
type Stroke []Point

// ParseStrokes reads strokes written as "x,y x,y;x,y ...": points separated
// by spaces, strokes by semicolons.
func ParseStrokes(s string) ([]Stroke, error) {
	var strokes []Stroke
	for _, part := range strings.Split(s, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		stroke := make(Stroke, 0, len(fields))
		for _, f := range fields {
			xs, ys, ok := strings.Cut(f, ",")
			if !ok {
				return nil, fmt.Errorf("invalid point %q (want x,y)", f)
			}
			x, err := strconv.ParseFloat(xs, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid x in %q: %w", f, err)
			}
			y, err := strconv.ParseFloat(ys, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid y in %q: %w", f, err)
			}
			stroke = append(stroke, Point{X: x, Y: y})
		}
		strokes = append(strokes, stroke)
	}
	return strokes, nil
}

// Apply draws strokes over the photo in dataURL and returns the marked photo
// as a JPEG data URL.
func Apply(dataURL string, strokes []Stroke) (string, error) {
	_, data, err := models.DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode photo: %w", err)
	}

	dc := gg.NewContextForImage(img)
	dc.SetHexColor(PenColor)
	dc.SetLineWidth(PenWidth)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, s := range strokes {
		switch len(s) {
		case 0:
			continue
		case 1:
			dc.DrawCircle(s[0].X, s[0].Y, PenWidth/2)
			dc.Fill()
		default:
			dc.MoveTo(s[0].X, s[0].Y)
			for _, p := range s[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}
	return models.EncodeDataURL("image/jpeg", buf.Bytes()), nil
}
