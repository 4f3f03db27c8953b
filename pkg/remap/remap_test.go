package remap

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Pano/pkg/projection"
)

func mustGrid(t *testing.T, w, h int, values []float32) *projection.Grid {
	t.Helper()
	g, err := projection.NewGrid(w, h, values)
	require.NoError(t, err)
	return g
}

// identityMaps returns maps that sample every pixel from itself.
func identityMaps(t *testing.T, w, h int) (*projection.Grid, *projection.Grid) {
	t.Helper()
	xs := make([]float32, w*h)
	ys := make([]float32, w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			xs[r*w+c] = float32(c)
			ys[r*w+c] = float32(r)
		}
	}
	return mustGrid(t, w, h, xs), mustGrid(t, w, h, ys)
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 30), B: uint8((x + y) * 5), A: 255})
		}
	}
	return img
}

func TestRemapIdentity(t *testing.T) {
	src := gradientImage(6, 4)
	xMap, yMap := identityMaps(t, 6, 4)

	for _, interp := range []Interpolation{Nearest, Linear, Cubic} {
		t.Run(interp.String(), func(t *testing.T) {
			dst, err := Remap(context.Background(), src, xMap, yMap, Options{Interpolation: interp})
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), dst.Bounds())
			assert.Equal(t, src.Pix, dst.Pix)
		})
	}
}

func TestRemapOffsetSourceBounds(t *testing.T) {
	full := gradientImage(6, 4)
	sub := full.SubImage(image.Rect(2, 1, 6, 4))
	xMap := mustGrid(t, 1, 1, []float32{0})
	yMap := mustGrid(t, 1, 1, []float32{0})

	dst, err := Remap(context.Background(), sub, xMap, yMap, Options{})
	require.NoError(t, err)
	assert.Equal(t, full.NRGBAAt(2, 1), dst.NRGBAAt(0, 0))
}

func TestRemapLinearBlend(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	xMap := mustGrid(t, 1, 1, []float32{0.5})
	yMap := mustGrid(t, 1, 1, []float32{0})

	dst, err := Remap(context.Background(), src, xMap, yMap, Options{Interpolation: Linear, Border: BorderReplicate})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 255}, dst.NRGBAAt(0, 0))
}

func TestRemapNearestRounds(t *testing.T) {
	src := gradientImage(4, 1)
	xMap := mustGrid(t, 2, 1, []float32{1.49, 1.5})
	yMap := mustGrid(t, 2, 1, []float32{0, 0})

	dst, err := Remap(context.Background(), src, xMap, yMap, Options{Interpolation: Nearest})
	require.NoError(t, err)
	assert.Equal(t, src.NRGBAAt(1, 0), dst.NRGBAAt(0, 0))
	assert.Equal(t, src.NRGBAAt(2, 0), dst.NRGBAAt(1, 0))
}

func TestRemapBorders(t *testing.T) {
	src := gradientImage(4, 2)
	fill := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	xMap := mustGrid(t, 3, 1, []float32{-1, 4, float32(math.NaN())})
	yMap := mustGrid(t, 3, 1, []float32{0, 1, 0})

	tests := []struct {
		name   string
		border Border
		want   []color.NRGBA
	}{
		{"Constant", BorderConstant, []color.NRGBA{fill, fill, fill}},
		{"Replicate", BorderReplicate, []color.NRGBA{src.NRGBAAt(0, 0), src.NRGBAAt(3, 1), fill}},
		{"Wrap", BorderWrap, []color.NRGBA{src.NRGBAAt(3, 0), src.NRGBAAt(0, 1), fill}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, err := Remap(context.Background(), src, xMap, yMap, Options{Border: tt.border, Fill: fill})
			require.NoError(t, err)
			for c, want := range tt.want {
				assert.Equal(t, want, dst.NRGBAAt(c, 0), "column %d", c)
			}
		})
	}
}

func TestRemapErrors(t *testing.T) {
	src := gradientImage(2, 2)
	xMap, yMap := identityMaps(t, 2, 2)
	other := mustGrid(t, 1, 4, []float32{0, 0, 0, 0})

	_, err := Remap(context.Background(), nil, xMap, yMap, Options{})
	assert.ErrorIs(t, err, ErrNilInput)

	_, err = Remap(context.Background(), src, nil, yMap, Options{})
	assert.ErrorIs(t, err, ErrNilInput)

	_, err = Remap(context.Background(), src, xMap, other, Options{})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Remap(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)), xMap, yMap, Options{})
	assert.ErrorIs(t, err, ErrEmptySource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Remap(ctx, src, xMap, yMap, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemapStereographicShape(t *testing.T) {
	src := gradientImage(32, 16)
	xMap, yMap, err := projection.ComputeMaps(32, 16, 2.0, math.Pi/2)
	require.NoError(t, err)

	dst, err := Remap(context.Background(), src, xMap, yMap, Options{Interpolation: Cubic, Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), dst.Bounds())
}

func TestCubicWeightsSumToOne(t *testing.T) {
	for _, tv := range []float64{0, 0.25, 0.5, 0.9} {
		w := cubicWeights(tv)
		assert.InDelta(t, 1.0, w[0]+w[1]+w[2]+w[3], 1e-12)
	}
	assert.Equal(t, [4]float64{0, 1, 0, 0}, cubicWeights(0))
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		in      string
		want    Interpolation
		wantErr bool
	}{
		{"nearest", Nearest, false},
		{"Linear", Linear, false},
		{" bicubic ", Cubic, false},
		{"cubic", Cubic, false},
		{"lanczos", Nearest, true},
	}
	for _, tt := range tests {
		got, err := ParseInterpolation(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBorder(t *testing.T) {
	tests := []struct {
		in      string
		want    Border
		wantErr bool
	}{
		{"constant", BorderConstant, false},
		{"clamp", BorderReplicate, false},
		{"WRAP", BorderWrap, false},
		{"mirror", BorderConstant, true},
	}
	for _, tt := range tests {
		got, err := ParseBorder(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want.String(), got.String())
	}
}
