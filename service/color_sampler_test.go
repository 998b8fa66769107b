package service

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSampleColorSolidImage(t *testing.T) {
	data := encodePNG(t, solidImage(10, 10, color.NRGBA{R: 255, A: 255}))
	assert.Equal(t, "#ff0000", SampleColor(data))
}

func TestSampleColorUsesBottomBand(t *testing.T) {
	img := solidImage(100, 100, color.NRGBA{G: 255, A: 255})
	for y := 80; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 255})
		}
	}
	assert.Equal(t, "#123456", SampleColor(encodePNG(t, img)))
}

func TestSampleColorTieGoesToFirstSeen(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	split := func(left, right color.Color) []byte {
		img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
		for y := 0; y < 50; y++ {
			for x := 0; x < 50; x++ {
				if x < 25 {
					img.Set(x, y, left)
				} else {
					img.Set(x, y, right)
				}
			}
		}
		return encodePNG(t, img)
	}

	assert.Equal(t, "#ff0000", SampleColor(split(red, blue)))
	assert.Equal(t, "#0000ff", SampleColor(split(blue, red)))
}

func TestSampleColorIgnoresAlpha(t *testing.T) {
	data := encodePNG(t, solidImage(20, 20, color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 128}))
	assert.Equal(t, "#204060", SampleColor(data))
}

func TestSampleColorTinyImage(t *testing.T) {
	data := encodePNG(t, solidImage(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
	assert.Equal(t, "#010203", SampleColor(data))
}

func TestSampleColorJPEGProducesHex(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	assert.Regexp(t, hexColorPattern, SampleColor(buf.Bytes()))
}

func TestSampleColorFallback(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "empty", data: []byte{}},
		{name: "not an image", data: []byte("not-an-image")},
		{name: "truncated png", data: encodePNG(t, solidImage(10, 10, color.White))[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, FallbackColor, SampleColor(tt.data))
		})
	}
}

// declaredSizePNG is a 1x1 PNG whose header claims width x height pixels
func declaredSizePNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := encodePNG(t, solidImage(1, 1, color.White))
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestSampleColorRejectsHugeDeclaredCanvas(t *testing.T) {
	data := declaredSizePNG(t, 12000, 12000)

	result := sampleDominantColor(data)
	assert.Equal(t, reasonTooLarge, result.reason)
	assert.ErrorIs(t, result.err, errImageTooLarge)
	assert.Equal(t, FallbackColor, SampleColor(data))
}

func TestSampleColorBase64(t *testing.T) {
	data := encodePNG(t, solidImage(8, 8, color.NRGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 255}))
	encoded := base64.StdEncoding.EncodeToString(data)

	assert.Equal(t, "#aabbcc", SampleColorBase64(encoded))
	assert.Equal(t, "#aabbcc", SampleColorBase64("data:image/png;base64,"+encoded))
	assert.Equal(t, "#aabbcc", SampleColorBase64(base64.RawStdEncoding.EncodeToString(data)))
	assert.Equal(t, FallbackColor, SampleColorBase64("%%% not base64 %%%"))
	assert.Equal(t, FallbackColor, SampleColorBase64("data:image/png;base64"))
	assert.Equal(t, FallbackColor, SampleColorBase64(""))
}
