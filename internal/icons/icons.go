// Package icons renders the small glyphs the control items and the tray
// menu display. Glyphs are drawn programmatically so the binary ships no
// image assets.
package icons

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/barkeep-io/barkeep/internal/host"
)

// StandardSize is the square pixel size of a rendered glyph.
const StandardSize = 18

var (
	glyphColor = color.NRGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
	dimColor   = color.NRGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
)

// Primary returns the always-visible control item's glyph. The direction of
// the chevron (or the fill of the dot) flips with the hidden sub-state so
// the icon reads as "click to reveal" versus "click to collapse".
func Primary(style string, hidden bool) *host.Image {
	switch style {
	case "dot":
		return dot(glyphColor, hidden)
	default:
		return chevron(hidden)
	}
}

// SectionGlyph returns the glyph for the hidden or always-hidden section's
// control item while its section is shown. The always-hidden item renders
// dimmed; dividers degrade to dots when the user turned dividers off.
func SectionGlyph(dimmed, divider bool) *host.Image {
	tint := glyphColor
	if dimmed {
		tint = dimColor
	}
	if divider {
		return verticalBar(tint)
	}
	return dot(tint, true)
}

// chevron draws a left- or right-pointing chevron.
func chevron(pointRight bool) *host.Image {
	img := blank()
	mid := StandardSize / 2
	arm := StandardSize / 3

	for i := 0; i <= arm; i++ {
		x := mid - arm/2 + i/2
		if pointRight {
			x = mid + arm/2 - i/2
		}
		set(img, x, mid-i)
		set(img, x+1, mid-i)
		set(img, x, mid+i)
		set(img, x+1, mid+i)
	}
	return toImage(img)
}

// dot draws a filled or hollow circle.
func dot(tint color.NRGBA, filled bool) *host.Image {
	img := blank()
	mid := StandardSize / 2
	r := StandardSize / 4

	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			if d > r*r {
				continue
			}
			if !filled && d < (r-2)*(r-2) {
				continue
			}
			img.SetNRGBA(mid+x, mid+y, tint)
		}
	}
	return toImage(img)
}

// verticalBar draws a 2px divider bar.
func verticalBar(tint color.NRGBA) *host.Image {
	img := blank()
	mid := StandardSize / 2
	for y := 2; y < StandardSize-2; y++ {
		img.SetNRGBA(mid-1, y, tint)
		img.SetNRGBA(mid, y, tint)
	}
	return toImage(img)
}

// Fit scales an image down so neither dimension exceeds max, preserving
// aspect ratio. Images already small enough pass through unchanged.
func Fit(img *host.Image, max int) *host.Image {
	if img == nil || (img.Width <= max && img.Height <= max) {
		return img
	}

	longest := img.Width
	if img.Height > longest {
		longest = img.Height
	}
	w := img.Width * max / longest
	h := img.Height * max / longest
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	// Nearest-neighbor is plenty for status-bar sizes.
	out := &host.Image{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		sy := y * img.Height / h
		for x := 0; x < w; x++ {
			sx := x * img.Width / w
			src := (sy*img.Width + sx) * 4
			dst := (y*w + x) * 4
			copy(out.Pixels[dst:dst+4], img.Pixels[src:src+4])
		}
	}
	return out
}

// PNG encodes a glyph as PNG bytes for tray backends that want file-format
// icons rather than raw pixmaps.
func PNG(img *host.Image) []byte {
	if img == nil {
		return nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := (y*img.Width + x) * 4
			out.SetNRGBA(x, y, color.NRGBA{
				A: img.Pixels[i],
				R: img.Pixels[i+1],
				G: img.Pixels[i+2],
				B: img.Pixels[i+3],
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		log.Printf("[icons] failed to encode png: %v", err)
		return nil
	}
	return buf.Bytes()
}

func blank() *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, StandardSize, StandardSize))
}

func set(img *image.NRGBA, x, y int) {
	if x < 0 || y < 0 || x >= StandardSize || y >= StandardSize {
		return
	}
	img.SetNRGBA(x, y, glyphColor)
}

// toImage converts to the ARGB layout status notifier hosts expect.
func toImage(img *image.NRGBA) *host.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := &host.Image{Width: w, Height: h, Pixels: make([]byte, w*h*4)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			i := (y*w + x) * 4
			out.Pixels[i] = c.A
			out.Pixels[i+1] = c.R
			out.Pixels[i+2] = c.G
			out.Pixels[i+3] = c.B
		}
	}
	return out
}
