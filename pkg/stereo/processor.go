// Package stereo turns equirectangular frames into stereographic views.
package stereo

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/dixieflatline76/Pano/pkg/projection"
	"github.com/dixieflatline76/Pano/pkg/remap"
)

// Options configures a Processor.
type Options struct {
	Distance  float64       // stereographic zoom
	Rotation  float64       // longitudinal rotation in radians
	Remap     remap.Options // interpolation, border and workers
	CacheSize int           // map pairs kept by the cache
	FitWidth  int           // when both are set, Process fits the view to this size
	FitHeight int
}

// Processor projects decoded frames and fits them to an output size.
type Processor struct {
	opts      Options
	cache     *MapCache
	resampler imaging.ResampleFilter
}

// NewProcessor creates a Processor with its own map cache.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		opts:      opts,
		cache:     NewMapCache(opts.CacheSize, opts.Remap.Workers),
		resampler: imaging.Lanczos,
	}
}

// Cache returns the processor's map cache.
func (c *Processor) Cache() *MapCache { return c.cache }

// Project remaps an equirectangular frame into its stereographic view. The
// view has the same size as the frame.
func (c *Processor) Project(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	xMap, yMap, err := c.cache.Get(ctx, projection.Params{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Distance: c.opts.Distance,
		Rotation: c.opts.Rotation,
	})
	if err != nil {
		return nil, fmt.Errorf("computing projection maps: %w", err)
	}

	out, err := remap.Remap(ctx, img, xMap, yMap, c.opts.Remap)
	if err != nil {
		return nil, fmt.Errorf("remapping image: %w", err)
	}
	return out, nil
}

// Process projects img and, when a fit size is configured, fits the view to it.
func (c *Processor) Process(ctx context.Context, img image.Image) (image.Image, error) {
	view, err := c.Project(ctx, img)
	if err != nil {
		return nil, err
	}
	if c.opts.FitWidth <= 0 || c.opts.FitHeight <= 0 {
		return view, nil
	}
	return c.FitImage(ctx, view, c.opts.FitWidth, c.opts.FitHeight)
}

// FitImage resizes img to width×height, smart-cropping first when the
// aspect ratios differ.
func (c *Processor) FitImage(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid fit size %dx%d", width, height)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	imageWidth := img.Bounds().Dx()
	imageHeight := img.Bounds().Dy()
	targetAspect := float64(width) / float64(height)
	imageAspect := float64(imageWidth) / float64(imageHeight)

	r := &resizer{resampler: c.resampler}

	switch {
	case imageWidth == width && imageHeight == height: // Perfect fit
		return img, nil
	case math.Abs(imageAspect-targetAspect) < 1e-9: // Perfect aspect ratio
		resized := r.resizeWithContext(ctx, img, uint(width), uint(height))
		if resized == nil {
			return nil, ctx.Err()
		}
		return resized, nil
	default:
		cropped, err := c.cropImage(ctx, img, width, height)
		if err != nil {
			return nil, fmt.Errorf("cropping image: %w", err)
		}
		return cropped, nil
	}
}

// cropImage crops the best region of the target aspect and resizes it.
func (c *Processor) cropImage(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	r := &resizer{resampler: c.resampler}
	analyzer := smartcrop.NewAnalyzer(r)

	// FindBestCrop takes no context, so run it aside and wait for either.
	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		topCrop, err := analyzer.FindBestCrop(img, width, height)
		resultChan <- cropResult{crop: topCrop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}

		cropped := imaging.Crop(img, result.crop)
		resized := r.resizeWithContext(ctx, cropped, uint(width), uint(height))
		if resized == nil {
			return nil, ctx.Err()
		}
		return resized, nil
	}
}

// resizer implements the smartcrop resizer and adds context awareness.
type resizer struct {
	resampler imaging.ResampleFilter
}

// Resize satisfies smartcrop's resizer, which has no context.
func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// resizeWithContext returns nil if ctx ends before the resize does.
func (r *resizer) resizeWithContext(ctx context.Context, img image.Image, width, height uint) image.Image {
	resultChan := make(chan image.Image, 1)

	go func() {
		resultChan <- imaging.Resize(img, int(width), int(height), r.resampler)
	}()

	select {
	case <-ctx.Done():
		return nil
	case result := <-resultChan:
		return result
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
