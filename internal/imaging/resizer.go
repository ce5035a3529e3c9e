// Package imaging scales uploaded banner and profile images before they are
// stored. Output is always PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Resizer scales images into a bounding box with Catmull-Rom resampling.
type Resizer struct{}

// NewResizer creates a resizer.
func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize decodes raw image bytes, scales them to fit within width x height
// preserving aspect ratio, and re-encodes as PNG. Images already inside the
// box are re-encoded without scaling.
func (r *Resizer) Resize(raw []byte, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	dw, dh := fit(bounds.Dx(), bounds.Dy(), width, height)

	var out image.Image = src
	if dw != bounds.Dx() || dh != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit shrinks (w, h) to fit inside (maxW, maxH) preserving aspect ratio.
// Never upscales.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	return dw, dh
}
