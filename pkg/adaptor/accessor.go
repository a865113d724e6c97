// Package adaptor presents an existing voxel.Image as if its pixels had
// already been run through a value transformation, without copying or
// materializing a second buffer. The transformation is supplied as a
// stateless Accessor strategy applied on every pixel read and write.
package adaptor

import (
	"math"

	"voxelview/pkg/voxel"
)

// Accessor converts pixel values between the internal representation stored
// in the wrapped buffer and the external representation a View exposes.
// Accessors must be stateless and side-effect free: the same instance is
// safely shared by any number of views without synchronization.
//
// Get and Set are mathematical inverses only when the underlying function
// is invertible. Arc-cosine, for example, is only invertible on [-1, 1].
type Accessor[I, E voxel.Value] interface {
	// Get maps a stored internal value to the externally visible value.
	Get(internal I) E

	// Set maps an externally supplied value and writes the result through
	// to the internal storage slot.
	Set(slot *I, external E)
}

// Identity exposes the stored values unchanged apart from the numeric
// conversion between the internal and external types.
type Identity[I, E voxel.Value] struct{}

func (Identity[I, E]) Get(internal I) E        { return E(internal) }
func (Identity[I, E]) Set(slot *I, external E) { *slot = I(external) }

// Acos presents each pixel as the arc-cosine of its stored value, widening
// to float64 before applying math.Acos and narrowing to the target type
// afterwards. Both Get and Set apply the same function, so a write followed
// by a read yields acos(acos(v)), not v.
//
// Arc-cosine is only defined on [-1, 1]. With Clamp false (the default)
// out-of-domain input is handed to math.Acos as-is and produces NaN; with
// Clamp true the input is clamped to the valid domain first.
type Acos[I, E voxel.Value] struct {
	Clamp bool
}

func (a Acos[I, E]) Get(internal I) E {
	return E(a.acos(float64(internal)))
}

func (a Acos[I, E]) Set(slot *I, external E) {
	*slot = I(a.acos(float64(external)))
}

func (a Acos[I, E]) acos(x float64) float64 {
	if a.Clamp {
		if x < -1 {
			x = -1
		} else if x > 1 {
			x = 1
		}
	}
	return math.Acos(x)
}

// Linear presents each pixel as Gain*v + Bias. Unlike Acos, its Set applies
// the inverse map, so writes round-trip exactly up to floating rounding and
// the narrowing conversion to the internal type. Gain must be non-zero.
type Linear[I, E voxel.Value] struct {
	Gain float64
	Bias float64
}

func (l Linear[I, E]) Get(internal I) E {
	return E(float64(internal)*l.Gain + l.Bias)
}

func (l Linear[I, E]) Set(slot *I, external E) {
	*slot = I((float64(external) - l.Bias) / l.Gain)
}
