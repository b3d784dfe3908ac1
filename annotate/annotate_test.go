package annotate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/models"
)

func whitePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.EncodeDataURL("image/png", buf.Bytes())
}

func TestParseStrokes(t *testing.T) {
	strokes, err := ParseStrokes("1,2 3,4; 5.5,6 ;")
	require.NoError(t, err)
	assert.Equal(t, []Stroke{
		{{1, 2}, {3, 4}},
		{{5.5, 6}},
	}, strokes)

	_, err = ParseStrokes("1;2")
	assert.Error(t, err)
	_, err = ParseStrokes("a,2")
	assert.Error(t, err)
}

func TestApplyDrawsRedPen(t *testing.T) {
	src := whitePNG(t, 64, 64)
	out, err := Apply(src, []Stroke{{{0, 32}, {63, 32}}})
	require.NoError(t, err)

	mime, data, err := models.DecodeDataURL(out)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	r, g, b, _ := img.At(32, 32).RGBA()
	assert.Greater(t, r>>8, uint32(180), "stroke should be red")
	assert.Less(t, g>>8, uint32(100))
	assert.Less(t, b>>8, uint32(140))

	r, g, b, _ = img.At(32, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240), "background stays white")
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestApplyRejectsBadData(t *testing.T) {
	_, err := Apply("data:image/png;base64,AAAA", nil)
	assert.Error(t, err)
}
