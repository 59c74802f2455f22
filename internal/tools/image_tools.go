package tools

import (
	"context"
	"os"
	"strconv"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
	"github.com/ternarybob/artifex/internal/services/imaging"
)

func (d *Deps) imageFormatConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	format := req.Option("format", "png")
	quality, err := strconv.Atoi(req.Option("quality", "85"))
	if err != nil {
		return nil, models.NewInvalidInputError("quality must be an integer")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(30)

	converted, err := d.Imaging.Convert(data, format, quality)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	return writeArtifact(req, "converted"+imaging.Extension(format), converted)
}

func (d *Deps) imageResizer(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	width, err := strconv.Atoi(req.Option("width", "0"))
	if err != nil {
		return nil, models.NewInvalidInputError("width must be an integer")
	}
	height, err := strconv.Atoi(req.Option("height", "0"))
	if err != nil {
		return nil, models.NewInvalidInputError("height must be an integer")
	}
	if width <= 0 && height <= 0 {
		return nil, models.NewInvalidInputError("image_resizer requires width or height")
	}

	format := req.Option("format", "")
	quality, err := strconv.Atoi(req.Option("quality", "85"))
	if err != nil {
		return nil, models.NewInvalidInputError("quality must be an integer")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(30)

	resized, err := d.Imaging.Resize(data, width, height, format, quality)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	if format == "" {
		if info, infoErr := d.Imaging.Inspect(resized); infoErr == nil {
			format = info.Format
		}
	}

	result, err := writeArtifact(req, "resized"+imaging.Extension(format), resized)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"width":  width,
		"height": height,
	}
	return result, nil
}

func (d *Deps) imageGrayscale(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(30)

	format := req.Option("format", "")
	gray, err := d.Imaging.Grayscale(data, format)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	if format == "" {
		if info, infoErr := d.Imaging.Inspect(gray); infoErr == nil {
			format = info.Format
		}
	}

	return writeArtifact(req, "grayscale"+imaging.Extension(format), gray)
}
