// Package transform provides coordinate-space maps applied to points and
// vectors of a fixed dimensionality. Only the translation map is
// implemented; it is the transform the resampler consumes and the simplest
// member of the affine family, with the useful property of always being
// invertible.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Translation represents the affine map p -> p + offset. Offsets form a
// group under addition, so every Translation has an exact inverse and
// composition never fails.
type Translation struct {
	offset []float64
}

// NewTranslation builds a translation with the given offset. The offset
// fixes the dimensionality of every point the transform will accept.
func NewTranslation(offset []float64) (*Translation, error) {
	if len(offset) == 0 {
		return nil, fmt.Errorf("translation offset must have at least one component")
	}
	return &Translation{offset: append([]float64(nil), offset...)}, nil
}

// Dimension returns the dimensionality of the space the transform acts on.
func (t *Translation) Dimension() int { return len(t.offset) }

// Offset returns a copy of the stored offset vector.
func (t *Translation) Offset() []float64 {
	return append([]float64(nil), t.offset...)
}

// SetOffset replaces the stored offset. The dimensionality cannot change.
func (t *Translation) SetOffset(offset []float64) error {
	if len(offset) != len(t.offset) {
		return fmt.Errorf("offset has %d components but transform is %d-dimensional", len(offset), len(t.offset))
	}
	copy(t.offset, offset)
	return nil
}

func (t *Translation) checkDim(what string, v []float64) error {
	if len(v) != len(t.offset) {
		return fmt.Errorf("%s has %d components but transform is %d-dimensional", what, len(v), len(t.offset))
	}
	return nil
}

// TransformPoint returns point + offset.
func (t *Translation) TransformPoint(point []float64) ([]float64, error) {
	if err := t.checkDim("point", point); err != nil {
		return nil, err
	}
	out := make([]float64, len(point))
	floats.AddTo(out, point, t.offset)
	return out, nil
}

// TransformVector returns the vector unchanged: free vectors are
// differences of points, and translation cancels in the difference.
func (t *Translation) TransformVector(vector []float64) ([]float64, error) {
	if err := t.checkDim("vector", vector); err != nil {
		return nil, err
	}
	return append([]float64(nil), vector...), nil
}

// TransformCovariantVector returns the covector unchanged, for the same
// reason TransformVector does.
func (t *Translation) TransformCovariantVector(covector []float64) ([]float64, error) {
	return t.TransformVector(covector)
}

// BackTransformPoint returns point - offset, the point that maps to the
// given one. Translations are always invertible, so this never fails for a
// point of the right dimensionality.
func (t *Translation) BackTransformPoint(point []float64) ([]float64, error) {
	if err := t.checkDim("point", point); err != nil {
		return nil, err
	}
	out := make([]float64, len(point))
	floats.SubTo(out, point, t.offset)
	return out, nil
}

// BackTransformVector returns the vector unchanged.
func (t *Translation) BackTransformVector(vector []float64) ([]float64, error) {
	return t.TransformVector(vector)
}

// Compose merges other into t so that t becomes the composition of the two
// translations. pre selects whether other is applied before (true) or after
// (false) t; since translation composition is commutative the flag does not
// change the result. It is kept for interface symmetry with transforms
// where order matters.
func (t *Translation) Compose(other *Translation, pre bool) error {
	if other == nil {
		return fmt.Errorf("cannot compose with nil translation")
	}
	if err := t.checkDim("other translation", other.offset); err != nil {
		return err
	}
	floats.Add(t.offset, other.offset)
	return nil
}

// Translate accumulates an additional offset into the transform. As with
// Compose, the pre flag is inert for translations.
func (t *Translation) Translate(offset []float64, pre bool) error {
	if err := t.checkDim("offset", offset); err != nil {
		return err
	}
	floats.Add(t.offset, offset)
	return nil
}

// Inverse returns a new translation with the negated offset.
func (t *Translation) Inverse() *Translation {
	inv := make([]float64, len(t.offset))
	floats.ScaleTo(inv, -1, t.offset)
	return &Translation{offset: inv}
}

// String renders the transform for diagnostics.
func (t *Translation) String() string {
	return fmt.Sprintf("Translation%v", t.offset)
}
