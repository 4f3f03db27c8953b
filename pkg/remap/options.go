package remap

import (
	"fmt"
	"image/color"
	"strings"
)

// Interpolation selects how a fractional source coordinate is sampled.
type Interpolation int

const (
	// Nearest takes the closest source pixel.
	Nearest Interpolation = iota
	// Linear blends the 2x2 neighbourhood.
	Linear
	// Cubic uses cubic convolution over the 4x4 neighbourhood.
	Cubic
)

func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// ParseInterpolation converts a name such as "cubic" into an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return Nearest, nil
	case "linear", "bilinear":
		return Linear, nil
	case "cubic", "bicubic":
		return Cubic, nil
	default:
		return Nearest, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Border selects what is sampled outside the source image.
type Border int

const (
	// BorderConstant samples Options.Fill.
	BorderConstant Border = iota
	// BorderReplicate clamps to the nearest edge pixel.
	BorderReplicate
	// BorderWrap tiles the source image.
	BorderWrap
)

func (b Border) String() string {
	switch b {
	case BorderConstant:
		return "constant"
	case BorderReplicate:
		return "replicate"
	case BorderWrap:
		return "wrap"
	default:
		return "unknown"
	}
}

// ParseBorder converts a name such as "wrap" into a Border.
func ParseBorder(s string) (Border, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant":
		return BorderConstant, nil
	case "replicate", "clamp":
		return BorderReplicate, nil
	case "wrap":
		return BorderWrap, nil
	default:
		return BorderConstant, fmt.Errorf("unknown border mode %q", s)
	}
}

// Options configures Remap. The zero value samples nearest pixels with a
// transparent black border on GOMAXPROCS workers.
type Options struct {
	Interpolation Interpolation
	Border        Border
	Fill          color.NRGBA // used by BorderConstant
	Workers       int         // <= 0 means GOMAXPROCS
}
