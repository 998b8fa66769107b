package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// FallbackColor is returned whenever an image cannot be sampled
	FallbackColor = "#2563eb"

	// bottomFraction is the share of the image height, measured from the bottom, that is sampled
	bottomFraction = 0.20
	// sampleGridSize is the side of the square grid the region is reduced to
	sampleGridSize = 50
)

// fallbackReason classifies why sampling fell back to FallbackColor
type fallbackReason string

const (
	reasonNone       fallbackReason = ""
	reasonEmptyInput fallbackReason = "empty input"
	reasonBadBase64  fallbackReason = "invalid base64"
	reasonDecode     fallbackReason = "decode failed"
	reasonEmptyImage fallbackReason = "image has no pixels"
	reasonTooLarge   fallbackReason = "image too large"
	reasonPanic      fallbackReason = "panic while sampling"
)

// rgb is one exact color triplet
type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// sampleResult is either a sampled color or the reason sampling gave up
type sampleResult struct {
	color  rgb
	reason fallbackReason
	err    error
}

func (s sampleResult) ok() bool {
	return s.reason == reasonNone
}

// Hex returns the sampled color, or FallbackColor when sampling failed
func (s sampleResult) Hex() string {
	if !s.ok() {
		return FallbackColor
	}
	return s.color.hex()
}

// SampleColor returns the dominant color of the bottom band of an image as
// "#rrggbb". It never fails: undecodable input yields FallbackColor.
func SampleColor(imageData []byte) string {
	result := sampleDominantColor(imageData)
	if !result.ok() {
		log.Printf("⚠️  Color sampling fell back to %s: %s (%v)", FallbackColor, result.reason, result.err)
	}
	return result.Hex()
}

// SampleColorBase64 is SampleColor for a base64 payload, with or without a data URI prefix
func SampleColorBase64(encoded string) string {
	data, err := decodeBase64Image(encoded)
	if err != nil {
		log.Printf("⚠️  Color sampling fell back to %s: %s (%v)", FallbackColor, reasonBadBase64, err)
		return FallbackColor
	}
	return SampleColor(data)
}

func decodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		_, payload, found := strings.Cut(encoded, ",")
		if !found {
			return nil, errors.New("data URI without payload")
		}
		encoded = payload
	}
	if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
}

// sampleDominantColor runs the whole pipeline and converts every failure,
// panics included, into a fallback result.
func sampleDominantColor(imageData []byte) (result sampleResult) {
	defer func() {
		if r := recover(); r != nil {
			result = sampleResult{reason: reasonPanic, err: fmt.Errorf("%v", r)}
		}
	}()

	if len(imageData) == 0 {
		return sampleResult{reason: reasonEmptyInput}
	}

	if err := checkDecodeBounds(imageData); err != nil {
		if errors.Is(err, errImageTooLarge) {
			return sampleResult{reason: reasonTooLarge, err: err}
		}
		return sampleResult{reason: reasonDecode, err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return sampleResult{reason: reasonDecode, err: err}
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return sampleResult{reason: reasonEmptyImage}
	}

	grid := imaging.Resize(cropBottomBand(img), sampleGridSize, sampleGridSize, imaging.NearestNeighbor)
	return sampleResult{color: mostFrequentColor(grid)}
}

// cropBottomBand returns the bottom bottomFraction of img, full width, at least one row high
func cropBottomBand(img image.Image) image.Image {
	bounds := img.Bounds()
	bandHeight := int(float64(bounds.Dy()) * bottomFraction)
	if bandHeight < 1 {
		bandHeight = 1
	}
	band := image.Rect(bounds.Min.X, bounds.Max.Y-bandHeight, bounds.Max.X, bounds.Max.Y)
	return imaging.Crop(img, band)
}

// mostFrequentColor counts exact RGB triplets in row-major order, dropping
// alpha. The first triplet seen wins a tie.
func mostFrequentColor(grid image.Image) rgb {
	nrgba := imaging.Clone(grid)
	bounds := nrgba.Bounds()

	counts := make(map[rgb]int)
	var order []rgb
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := nrgba.PixOffset(x, y)
			c := rgb{nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2]}
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	var best rgb
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
