package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/ternarybob/arbor"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ternarybob/artifex/internal/common"
)

// Service performs in-memory image transformations. BMP, TIFF, and WebP
// inputs are decodable but outputs are limited to png, jpeg, and gif.
type Service struct {
	logger arbor.ILogger
}

// Info describes a decoded image.
type Info struct {
	Format string
	Width  int
	Height int
}

// NewService creates an image transformation service.
func NewService(logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{logger: logger.WithPrefix("imaging")}
}

// Inspect decodes just enough of the image to report its format and
// dimensions.
func (s *Service) Inspect(data []byte) (*Info, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Info{Format: format, Width: config.Width, Height: config.Height}, nil
}

// Convert re-encodes the image in the target format. Quality applies to
// jpeg output only and is clamped to [1,100].
func (s *Service) Convert(data []byte, targetFormat string, quality int) ([]byte, error) {
	img, sourceFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	target := normalizeFormat(targetFormat)
	s.logger.Debug().
		Str("source_format", sourceFormat).
		Str("target_format", target).
		Msg("Converting image")

	return encode(img, target, quality)
}

// Resize scales the image to the given dimensions. When exactly one of
// width or height is zero the other is derived from the source aspect
// ratio. Both zero is an error.
func (s *Service) Resize(data []byte, width, height int, format string, quality int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", width, height)
	}
	if width == 0 && height == 0 {
		return nil, fmt.Errorf("at least one of width or height must be set")
	}

	img, sourceFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if width == 0 {
		width = srcW * height / srcH
	}
	if height == 0 {
		height = srcH * width / srcW
	}
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	if format == "" {
		format = sourceFormat
	}

	s.logger.Debug().
		Int("source_width", srcW).
		Int("source_height", srcH).
		Int("width", width).
		Int("height", height).
		Msg("Resized image")

	return encode(dst, normalizeFormat(format), quality)
}

// Grayscale converts the image to 8-bit grayscale, preserving the source
// format for output where possible.
func (s *Service) Grayscale(data []byte, format string) ([]byte, error) {
	img, sourceFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	if format == "" {
		format = sourceFormat
	}
	return encode(gray, normalizeFormat(format), 0)
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	case "jpeg":
		if quality <= 0 || quality > 100 {
			quality = 85
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode gif: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return buf.Bytes(), nil
}

// Extension returns the conventional file extension for an output format.
func Extension(format string) string {
	switch normalizeFormat(format) {
	case "jpeg":
		return ".jpg"
	case "gif":
		return ".gif"
	default:
		return ".png"
	}
}
