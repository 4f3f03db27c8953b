// Package projection builds the sampling maps that turn an equirectangular
// panorama into a stereographic view, as in
// http://mathworld.wolfram.com/StereographicProjection.html.
package projection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidParameter is returned for non-positive dimensions or distance.
var ErrInvalidParameter = errors.New("invalid projection parameter")

// azimuthBias is subtracted from every azimuth. It shifts the output by a
// fixed diagonal and must stay as is for existing camera rigs.
const azimuthBias = math.Pi / 4.0

// Params groups the inputs of a map computation.
type Params struct {
	Width    int     // image width in pixels
	Height   int     // image height in pixels
	Distance float64 // projection scale ("zoom"), z = Width / Distance
	Rotation float64 // longitudinal rotation in radians
}

// Validate returns an error wrapping ErrInvalidParameter if p cannot be projected.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidParameter, p.Width)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidParameter, p.Height)
	case math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0) || p.Distance <= 0:
		return fmt.Errorf("%w: distance must be positive and finite, got %v", ErrInvalidParameter, p.Distance)
	case math.IsNaN(p.Rotation) || math.IsInf(p.Rotation, 0):
		return fmt.Errorf("%w: rotation must be finite, got %v", ErrInvalidParameter, p.Rotation)
	}
	return nil
}

// ComputeMaps returns the x and y sampling maps for a w×h equirectangular
// image. Entry (r, c) of each map is the fractional source coordinate that
// destination pixel (r, c) should be interpolated from.
//
// Destination pixels use 1-based coordinates (x, y) = (c+1, r+1). For each one:
//
//	rho = sqrt((x-w/2)^2 + (y-h/2)^2)
//	lat = mod(2*atan(rho/(w/dist)) + pi, pi) - pi/2
//	lon = mod(atan2(y-h/2, x-w/2) - pi/4 + pi + zRot, 2*pi) - pi
//	x_map = w/2 + lon/(2*pi/w), y_map = h/2 - lat/(2*pi/w)
//
// The result depends only on the arguments. Non-positive w, h or dist yield
// an error wrapping ErrInvalidParameter.
func ComputeMaps(w, h int, dist, zRot float64) (xMap, yMap *Grid, err error) {
	p := Params{Width: w, Height: h, Distance: dist, Rotation: zRot}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	xMap, yMap = newGrid(w, h), newGrid(w, h)
	k := newKernel(p)
	for row := 0; row < h; row++ {
		k.fillRow(xMap, yMap, row)
	}
	return xMap, yMap, nil
}

// ComputeMapsContext is ComputeMaps with rows evaluated concurrently by at
// most workers goroutines (GOMAXPROCS when workers <= 0). The maps are
// identical to the ones ComputeMaps returns.
func ComputeMapsContext(ctx context.Context, w, h int, dist, zRot float64, workers int) (xMap, yMap *Grid, err error) {
	p := Params{Width: w, Height: h, Distance: dist, Rotation: zRot}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	xMap, yMap = newGrid(w, h), newGrid(w, h)
	k := newKernel(p)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for row := 0; row < h; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			k.fillRow(xMap, yMap, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return xMap, yMap, nil
}

// kernel holds the per-call constants of the projection.
type kernel struct {
	width    int
	halfW    float64
	halfH    float64
	z        float64 // projection radius in pixels
	rads     float64 // radians per pixel along the equator
	rotation float64
}

func newKernel(p Params) kernel {
	w := float64(p.Width)
	return kernel{
		width:    p.Width,
		halfW:    w / 2.0,
		halfH:    float64(p.Height) / 2.0,
		z:        w / p.Distance,
		rads:     2 * math.Pi / w,
		rotation: p.Rotation,
	}
}

// fillRow writes row into both maps. Rows are disjoint so concurrent calls
// for different rows are safe.
func (k kernel) fillRow(xMap, yMap *Grid, row int) {
	y := float64(row + 1)
	base := row * k.width
	for col := 0; col < k.width; col++ {
		sx, sy := k.project(float64(col+1), y)
		xMap.data[base+col] = float32(sx)
		yMap.data[base+col] = float32(sy)
	}
}

// project maps a 1-based destination pixel to its source coordinates.
func (k kernel) project(x, y float64) (float64, float64) {
	dx := x - k.halfW
	dy := y - k.halfH
	rho := math.Sqrt(dx*dx + dy*dy)

	lat := 2 * math.Atan(rho/k.z)
	lon := math.Atan2(dy, dx) - azimuthBias

	lat = floorMod(lat+math.Pi, math.Pi) - math.Pi/2.0
	lon = floorMod(lon+math.Pi+k.rotation, 2*math.Pi) - math.Pi

	return k.halfW + lon/k.rads, k.halfH - lat/k.rads
}

// floorMod returns a mod b with the sign of b, always in [0, b).
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	// a tiny negative r can round up to exactly b
	if r >= b {
		r = 0
	}
	return r
}
