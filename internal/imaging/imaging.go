// Package imaging normalizes asset photos before they are stored: the format
// is sniffed from the bytes, oversized photos are scaled down and the result
// is always re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Limits for stored photos.
const (
	MaxUploadBytes = 5 << 20
	MaxDimension   = 1024
	JPEGQuality    = 85
)

// ErrUnsupported is returned for input that is not a JPEG or PNG image.
var ErrUnsupported = errors.New("photo must be a JPEG or PNG image")

// ErrTooLarge is returned when the input exceeds MaxUploadBytes.
var ErrTooLarge = fmt.Errorf("photo exceeds %d bytes", MaxUploadBytes)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
}

// Photo is a processed asset photo.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process reads at most MaxUploadBytes from r and returns the photo as JPEG,
// scaled so neither side exceeds MaxDimension.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	decode, ok := decoders[http.DetectContentType(data)]
	if !ok {
		return nil, ErrUnsupported
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	img = fit(flatten(img), MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}
	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// flatten composites images with an alpha channel onto white, since JPEG
// has no transparency.
func flatten(img image.Image) image.Image {
	o, ok := img.(interface{ Opaque() bool })
	if !ok || o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// fit scales img down with Catmull-Rom so that its longer side is maxDim.
// Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, max(1, h*maxDim/w)
	if h > w {
		nw, nh = max(1, w*maxDim/h), maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
