// Package remap resamples an image through a pair of coordinate maps.
package remap

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/Pano/pkg/projection"
)

var (
	// ErrNilInput is returned when the image or a map is missing.
	ErrNilInput = errors.New("remap: nil image or map")
	// ErrShapeMismatch is returned when the x and y maps differ in shape.
	ErrShapeMismatch = errors.New("remap: x and y maps differ in shape")
	// ErrEmptySource is returned for a source image with no pixels.
	ErrEmptySource = errors.New("remap: empty source image")
)

// Coordinates beyond this are treated as outside the image without being
// converted to int.
const maxCoord = 1 << 30

// cubicA is the cubic convolution coefficient.
const cubicA = -0.75

// Remap builds an image with the shape of the maps where destination pixel
// (r, c) is src sampled at (xMap.At(r, c), yMap.At(r, c)). Coordinates are
// 0-based pixel centres relative to src.Bounds().Min.
func Remap(ctx context.Context, src image.Image, xMap, yMap *projection.Grid, opts Options) (*image.NRGBA, error) {
	if src == nil || xMap == nil || yMap == nil {
		return nil, ErrNilInput
	}
	if !xMap.SameShape(yMap) {
		return nil, ErrShapeMismatch
	}
	if src.Bounds().Empty() {
		return nil, ErrEmptySource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newSampler(imaging.Clone(src), opts)
	w, h := xMap.Width(), xMap.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for row := 0; row < h; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			xs, ys := xMap.Row(row), yMap.Row(row)
			out := dst.Pix[row*dst.Stride : row*dst.Stride+w*4]
			for col := 0; col < w; col++ {
				px := s.sample(float64(xs[col]), float64(ys[col]))
				copy(out[col*4:col*4+4], px[:])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

type sampler struct {
	img    *image.NRGBA
	w, h   int
	interp Interpolation
	border Border
	fill   [4]float64
}

func newSampler(img *image.NRGBA, opts Options) *sampler {
	b := img.Bounds()
	return &sampler{
		img:    img,
		w:      b.Dx(),
		h:      b.Dy(),
		interp: opts.Interpolation,
		border: opts.Border,
		fill:   toFloat(opts.Fill),
	}
}

func toFloat(c color.NRGBA) [4]float64 {
	return [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
}

// sample returns the interpolated pixel at (x, y).
func (s *sampler) sample(x, y float64) [4]uint8 {
	if !usable(x) || !usable(y) {
		return quantize(s.fill)
	}

	switch s.interp {
	case Linear:
		return quantize(s.linear(x, y))
	case Cubic:
		return quantize(s.cubic(x, y))
	default:
		return quantize(s.fetch(int(math.Floor(x+0.5)), int(math.Floor(y+0.5))))
	}
}

func usable(v float64) bool {
	return !math.IsNaN(v) && v > -maxCoord && v < maxCoord
}

func (s *sampler) linear(x, y float64) [4]float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	tx, ty := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	p00, p10 := s.fetch(ix, iy), s.fetch(ix+1, iy)
	p01, p11 := s.fetch(ix, iy+1), s.fetch(ix+1, iy+1)

	var out [4]float64
	for c := 0; c < 4; c++ {
		top := p00[c]*(1-tx) + p10[c]*tx
		bottom := p01[c]*(1-tx) + p11[c]*tx
		out[c] = top*(1-ty) + bottom*ty
	}
	return out
}

func (s *sampler) cubic(x, y float64) [4]float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	wx := cubicWeights(x - x0)
	wy := cubicWeights(y - y0)
	ix, iy := int(x0), int(y0)

	var out [4]float64
	for j := 0; j < 4; j++ {
		var row [4]float64
		for i := 0; i < 4; i++ {
			p := s.fetch(ix+i-1, iy+j-1)
			for c := 0; c < 4; c++ {
				row[c] += p[c] * wx[i]
			}
		}
		for c := 0; c < 4; c++ {
			out[c] += row[c] * wy[j]
		}
	}
	return out
}

// cubicWeights returns the convolution weights for offsets -1, 0, 1, 2
// around a sample at fractional position t.
func cubicWeights(t float64) [4]float64 {
	var w [4]float64
	w[0] = ((cubicA*(t+1)-5*cubicA)*(t+1)+8*cubicA)*(t+1) - 4*cubicA
	w[1] = ((cubicA+2)*t-(cubicA+3))*t*t + 1
	w[2] = ((cubicA+2)*(1-t)-(cubicA+3))*(1-t)*(1-t) + 1
	w[3] = 1 - w[0] - w[1] - w[2]
	return w
}

// fetch reads one source pixel, applying the border mode outside the image.
func (s *sampler) fetch(x, y int) [4]float64 {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		switch s.border {
		case BorderReplicate:
			x = clamp(x, s.w)
			y = clamp(y, s.h)
		case BorderWrap:
			x = wrap(x, s.w)
			y = wrap(y, s.h)
		default:
			return s.fill
		}
	}
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+4 : i+4]
	return [4]float64{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])}
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func quantize(v [4]float64) [4]uint8 {
	var out [4]uint8
	for c := range v {
		f := math.Round(v[c])
		switch {
		case f < 0:
			out[c] = 0
		case f > 255:
			out[c] = 255
		default:
			out[c] = uint8(f)
		}
	}
	return out
}
