package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
)

const (
	// MaxImageSide is the longest side of a stored photo in pixels.
	MaxImageSide = 1600
	// JPEGQuality is the quality of re-encoded photos.
	JPEGQuality = 80
	// MaxImagePixels caps width*height of an accepted photo.
	MaxImagePixels = 40_000_000
)

// CheckDimensions reads only the image header and rejects oversized bitmaps.
func CheckDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return fmt.Errorf("image is %dx%d, larger than %d megapixels", cfg.Width, cfg.Height, MaxImagePixels/1_000_000)
	}
	return nil
}

// CompressImage decodes a JPEG or PNG, scales it down so its longest side is at most
// maxSide and re-encodes it as JPEG.
func CompressImage(data []byte, maxSide, quality int) ([]byte, error) {
	if err := CheckDimensions(data); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := src
	b := src.Bounds()
	if w, h := b.Dx(), b.Dy(); w > maxSide || h > maxSide {
		nw, nh := maxSide, maxSide
		if w >= h {
			nh = max(1, h*maxSide/w)
		} else {
			nw = max(1, w*maxSide/h)
		}
		img = downscale(src, nw, nh)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}

// downscale averages the source pixels covered by each destination pixel.
func downscale(src image.Image, nw, nh int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))

	for y := 0; y < nh; y++ {
		y0 := b.Min.Y + y*h/nh
		y1 := max(y0+1, b.Min.Y+(y+1)*h/nh)
		for x := 0; x < nw; x++ {
			x0 := b.Min.X + x*w/nw
			x1 := max(x0+1, b.Min.X+(x+1)*w/nw)

			var r, g, bl, a, n uint64
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					pr, pg, pb, pa := src.At(sx, sy).RGBA()
					r += uint64(pr)
					g += uint64(pg)
					bl += uint64(pb)
					a += uint64(pa)
					n++
				}
			}
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(r / n >> 8),
				G: uint8(g / n >> 8),
				B: uint8(bl / n >> 8),
				A: uint8(a / n >> 8),
			})
		}
	}
	return dst
}
