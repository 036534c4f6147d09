package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageSettings controls how chapter illustrations are prepared for export.
type ImageSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int    // JPEG quality (1-100)
	Grayscale bool   // for e-ink readers
	Format    string // "jpeg" or "png"
}

// DefaultImageSettings fits a typical tablet-sized EPUB reader.
func DefaultImageSettings() ImageSettings {
	return ImageSettings{
		MaxWidth:  1200,
		MaxHeight: 1600,
		Quality:   85,
		Format:    "jpeg",
	}
}

// Extension is the file extension matching the output format.
func (s ImageSettings) Extension() string {
	if s.Format == "png" {
		return ".png"
	}
	return ".jpg"
}

type ImageProcessor struct {
	settings ImageSettings
}

func NewImageProcessor(settings ImageSettings) *ImageProcessor {
	if settings.Format == "" {
		settings.Format = "jpeg"
	}
	if settings.Quality <= 0 || settings.Quality > 100 {
		settings.Quality = 85
	}
	return &ImageProcessor{settings: settings}
}

func (p *ImageProcessor) Settings() ImageSettings {
	return p.settings
}

// ProcessImage decodes, downsizes and re-encodes an image.
func (p *ImageProcessor) ProcessImage(input io.Reader) ([]byte, error) {
	img, _, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := p.calculateDimensions(bounds.Dx(), bounds.Dy())

	var processed image.Image = img
	if w != bounds.Dx() || h != bounds.Dy() {
		processed = p.resize(img, w, h)
	}
	if p.settings.Grayscale {
		processed = toGrayscale(processed)
	}
	return p.encode(processed)
}

func (p *ImageProcessor) ProcessImageData(data []byte) ([]byte, error) {
	return p.ProcessImage(bytes.NewReader(data))
}

// calculateDimensions fits width x height inside the bounding box, keeping the
// aspect ratio. Images are never enlarged.
func (p *ImageProcessor) calculateDimensions(width, height int) (int, int) {
	maxW, maxH := p.settings.MaxWidth, p.settings.MaxHeight
	if maxW <= 0 || maxH <= 0 || (width <= maxW && height <= maxH) {
		return width, height
	}

	scale := float64(maxW) / float64(width)
	if hs := float64(maxH) / float64(height); hs < scale {
		scale = hs
	}

	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

func (p *ImageProcessor) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func toGrayscale(img image.Image) image.Image {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

func (p *ImageProcessor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	switch p.settings.Format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", p.settings.Format)
	}

	return buf.Bytes(), nil
}
