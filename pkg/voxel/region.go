// Package voxel provides the core data model for N-dimensional image volumes:
// integer index/size tuples, axis-aligned regions, and the Image pixel buffer
// that adaptor views and filters operate on.
package voxel

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Value constrains the pixel types an Image can store. Any Go integer or
// floating-point type qualifies.
type Value interface {
	constraints.Integer | constraints.Float
}

// Index addresses a single pixel within a volume. Index values may be
// negative: regions are allowed to start anywhere in index space.
type Index []int

// Size holds the per-axis extent of a region in pixels. All components
// must be non-negative.
type Size []int

// Region is a closed, axis-aligned integer box over pixel indices,
// described by a starting Index and a Size. A Region with any zero-size
// axis contains no pixels.
type Region struct {
	// Start is the index of the first pixel in the region.
	Start Index

	// Extent is the number of pixels along each axis.
	Extent Size
}

// NewRegion builds a region from a starting index and extent.
// The two must have the same dimensionality.
func NewRegion(start Index, extent Size) (Region, error) {
	if len(start) != len(extent) {
		return Region{}, fmt.Errorf("region start has %d dimensions but extent has %d", len(start), len(extent))
	}
	for i, s := range extent {
		if s < 0 {
			return Region{}, fmt.Errorf("region extent must be non-negative, axis %d is %d", i, s)
		}
	}
	return Region{Start: cloneInts(start), Extent: cloneInts(extent)}, nil
}

func cloneInts[S ~[]int](s S) S {
	out := make(S, len(s))
	copy(out, s)
	return out
}

// Dimension returns the number of axes of the region.
func (r Region) Dimension() int {
	return len(r.Extent)
}

// NumPixels returns the total number of pixels inside the region.
func (r Region) NumPixels() int {
	if len(r.Extent) == 0 {
		return 0
	}
	n := 1
	for _, s := range r.Extent {
		n *= s
	}
	return n
}

// End returns the exclusive upper bound of the region along each axis.
func (r Region) End() Index {
	end := make(Index, len(r.Start))
	for i := range r.Start {
		end[i] = r.Start[i] + r.Extent[i]
	}
	return end
}

// ContainsIndex reports whether idx lies inside the region. An index of
// mismatched dimensionality is never inside.
func (r Region) ContainsIndex(idx Index) bool {
	if len(idx) != len(r.Start) {
		return false
	}
	for i, v := range idx {
		if v < r.Start[i] || v >= r.Start[i]+r.Extent[i] {
			return false
		}
	}
	return true
}

// ContainsRegion reports whether other lies entirely inside r. An empty
// other region is contained in anything of matching dimensionality.
func (r Region) ContainsRegion(other Region) bool {
	if other.Dimension() != r.Dimension() {
		return false
	}
	if other.NumPixels() == 0 {
		return true
	}
	for i := range other.Start {
		if other.Start[i] < r.Start[i] {
			return false
		}
		if other.Start[i]+other.Extent[i] > r.Start[i]+r.Extent[i] {
			return false
		}
	}
	return true
}

// Crop shrinks r so it fits inside bounds, returning the intersection.
// An error is returned when the two regions do not overlap at all.
func (r Region) Crop(bounds Region) (Region, error) {
	if bounds.Dimension() != r.Dimension() {
		return Region{}, fmt.Errorf("cannot crop %d-dimensional region by %d-dimensional bounds", r.Dimension(), bounds.Dimension())
	}
	out := Region{Start: make(Index, r.Dimension()), Extent: make(Size, r.Dimension())}
	for i := range r.Start {
		lo := max(r.Start[i], bounds.Start[i])
		hi := min(r.Start[i]+r.Extent[i], bounds.Start[i]+bounds.Extent[i])
		if hi <= lo {
			return Region{}, fmt.Errorf("region %v does not overlap bounds %v", r, bounds)
		}
		out.Start[i] = lo
		out.Extent[i] = hi - lo
	}
	return out, nil
}

// Equal reports whether two regions describe the same box.
func (r Region) Equal(other Region) bool {
	if r.Dimension() != other.Dimension() {
		return false
	}
	for i := range r.Start {
		if r.Start[i] != other.Start[i] || r.Extent[i] != other.Extent[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the region.
func (r Region) Clone() Region {
	return Region{Start: cloneInts(r.Start), Extent: cloneInts(r.Extent)}
}

// String renders the region as start+extent, e.g. [0 0 0]+[4 4 4].
func (r Region) String() string {
	return fmt.Sprintf("%v+%v", []int(r.Start), []int(r.Extent))
}
