package voxel

import (
	"fmt"
	"sync/atomic"
)

// clock is the process-global modification counter. Every mutation of an
// image bumps it, so timestamps from different images are comparable and
// strictly ordered.
var clock atomic.Uint64

func tick() uint64 {
	return clock.Add(1)
}

// Image is a concrete N-dimensional pixel buffer. It owns its pixel storage
// and tracks the three nested regions used by demand-driven pipelines:
//
//   - the largest possible region, the full logical extent of the dataset;
//   - the buffered region, the extent currently resident in memory;
//   - the requested region, the extent a consumer has asked to materialize.
//
// The invariant requested ⊆ buffered ⊆ largest is checked on Allocate.
// Pixels are stored in row-major order with the first axis varying fastest,
// matching the offset table exposed by OffsetTable.
type Image[T Value] struct {
	largest   Region
	buffered  Region
	requested Region

	// pix holds the raw pixel values of the buffered region.
	pix []T

	// offsets[0] is 1; offsets[i+1] = offsets[i] * buffered.Extent[i].
	// The last entry is the total pixel count of the buffered region.
	offsets []int

	spacing []float64
	origin  []float64

	mtime uint64
}

// NewImage creates an unallocated image of the given dimensionality with
// unit spacing and zero origin. Regions start empty; call SetRegions and
// Allocate before accessing pixels.
func NewImage[T Value](dimension int) *Image[T] {
	img := &Image[T]{
		largest:   Region{Start: make(Index, dimension), Extent: make(Size, dimension)},
		buffered:  Region{Start: make(Index, dimension), Extent: make(Size, dimension)},
		requested: Region{Start: make(Index, dimension), Extent: make(Size, dimension)},
		spacing:   make([]float64, dimension),
		origin:    make([]float64, dimension),
	}
	for i := range img.spacing {
		img.spacing[i] = 1.0
	}
	img.mtime = tick()
	return img
}

// Dimension returns the number of axes of the image.
func (img *Image[T]) Dimension() int {
	return img.largest.Dimension()
}

// SetRegions sets the largest possible, buffered and requested regions to
// the same box. This is the common case for images that are fully resident.
func (img *Image[T]) SetRegions(r Region) error {
	if r.Dimension() != img.Dimension() {
		return fmt.Errorf("region is %d-dimensional but image is %d-dimensional", r.Dimension(), img.Dimension())
	}
	img.largest = r.Clone()
	img.buffered = r.Clone()
	img.requested = r.Clone()
	img.mtime = tick()
	return nil
}

// SetLargestPossibleRegion sets the full logical extent of the dataset.
func (img *Image[T]) SetLargestPossibleRegion(r Region) {
	img.largest = r.Clone()
	img.mtime = tick()
}

// SetBufferedRegion sets the extent that Allocate will make resident and
// recomputes the offset table for the new extent. Pixel storage is not
// resized until the next Allocate or SetPixels; until then, accesses that
// the stale storage cannot serve fail with a bounds error.
func (img *Image[T]) SetBufferedRegion(r Region) {
	img.buffered = r.Clone()
	img.rebuildOffsets()
	img.mtime = tick()
}

// SetRequestedRegion sets the extent a consumer wants materialized.
func (img *Image[T]) SetRequestedRegion(r Region) {
	img.requested = r.Clone()
	img.mtime = tick()
}

// SetRequestedRegionToLargestPossibleRegion widens the request to the full
// extent of the dataset.
func (img *Image[T]) SetRequestedRegionToLargestPossibleRegion() {
	img.requested = img.largest.Clone()
	img.mtime = tick()
}

// LargestPossibleRegion returns the full logical extent of the dataset.
func (img *Image[T]) LargestPossibleRegion() Region { return img.largest }

// BufferedRegion returns the extent currently resident in memory.
func (img *Image[T]) BufferedRegion() Region { return img.buffered }

// RequestedRegion returns the extent a consumer asked to materialize.
func (img *Image[T]) RequestedRegion() Region { return img.requested }

// VerifyRegions checks the nesting invariant
// requested ⊆ buffered ⊆ largest possible.
func (img *Image[T]) VerifyRegions() error {
	if !img.largest.ContainsRegion(img.buffered) {
		return fmt.Errorf("buffered region %v extends outside largest possible region %v", img.buffered, img.largest)
	}
	if !img.buffered.ContainsRegion(img.requested) {
		return fmt.Errorf("requested region %v extends outside buffered region %v", img.requested, img.buffered)
	}
	return nil
}

// Allocate sizes the pixel storage to the buffered region and zeroes it.
// The region nesting invariant must hold.
func (img *Image[T]) Allocate() error {
	if err := img.VerifyRegions(); err != nil {
		return fmt.Errorf("cannot allocate: %w", err)
	}
	img.rebuildOffsets()
	img.pix = make([]T, img.buffered.NumPixels())
	img.mtime = tick()
	return nil
}

// Initialize releases pixel storage and resets all regions to empty,
// returning the image to its just-constructed state. Spacing and origin
// are preserved.
func (img *Image[T]) Initialize() {
	dim := img.Dimension()
	img.pix = nil
	img.offsets = nil
	img.largest = Region{Start: make(Index, dim), Extent: make(Size, dim)}
	img.buffered = img.largest.Clone()
	img.requested = img.largest.Clone()
	img.mtime = tick()
}

func (img *Image[T]) rebuildOffsets() {
	img.offsets = make([]int, img.Dimension()+1)
	img.offsets[0] = 1
	for i, s := range img.buffered.Extent {
		img.offsets[i+1] = img.offsets[i] * s
	}
}

// OffsetTable returns the per-axis strides of the buffered region. The
// returned slice is owned by the image and must not be modified.
func (img *Image[T]) OffsetTable() []int {
	return img.offsets
}

// ComputeOffset maps an index inside the buffered region to its linear
// position in the pixel slice.
func (img *Image[T]) ComputeOffset(idx Index) (int, error) {
	if img.pix == nil {
		return 0, fmt.Errorf("image has no allocated pixel buffer")
	}
	if !img.buffered.ContainsIndex(idx) {
		return 0, fmt.Errorf("index %v outside buffered region %v", []int(idx), img.buffered)
	}
	off := 0
	for i, v := range idx {
		off += (v - img.buffered.Start[i]) * img.offsets[i]
	}
	// The buffered region may have grown since the storage was allocated.
	if off >= len(img.pix) {
		return 0, fmt.Errorf("index %v in buffered region %v maps past the %d allocated pixels; call Allocate after growing the region", []int(idx), img.buffered, len(img.pix))
	}
	return off, nil
}

// ComputeIndex is the inverse of ComputeOffset: it maps a linear position
// in the pixel slice back to an index in the buffered region.
func (img *Image[T]) ComputeIndex(offset int) (Index, error) {
	if img.pix == nil {
		return nil, fmt.Errorf("image has no allocated pixel buffer")
	}
	if offset < 0 || offset >= len(img.pix) {
		return nil, fmt.Errorf("offset %d outside pixel buffer of %d pixels", offset, len(img.pix))
	}
	idx := make(Index, img.Dimension())
	for i := img.Dimension() - 1; i >= 0; i-- {
		idx[i] = offset/img.offsets[i] + img.buffered.Start[i]
		offset %= img.offsets[i]
	}
	return idx, nil
}

// GetPixel returns the stored value at idx. Accessing outside the buffered
// region is a recoverable bounds error.
func (img *Image[T]) GetPixel(idx Index) (T, error) {
	off, err := img.ComputeOffset(idx)
	if err != nil {
		var zero T
		return zero, err
	}
	return img.pix[off], nil
}

// SetPixel stores value at idx. Writing outside the buffered region is a
// recoverable bounds error. The modification timestamp is not bumped per
// pixel; call Modified after a batch of writes when pipeline consumers
// need to observe the change.
func (img *Image[T]) SetPixel(idx Index, value T) error {
	off, err := img.ComputeOffset(idx)
	if err != nil {
		return err
	}
	img.pix[off] = value
	return nil
}

// PixelRef returns a pointer to the storage slot at idx, letting accessors
// write through to the raw representation.
func (img *Image[T]) PixelRef(idx Index) (*T, error) {
	off, err := img.ComputeOffset(idx)
	if err != nil {
		return nil, err
	}
	return &img.pix[off], nil
}

// Pixels exposes the raw pixel slice of the buffered region. Views created
// by Graft share this slice, so writes through one are visible in all.
func (img *Image[T]) Pixels() []T {
	return img.pix
}

// SetPixels replaces the pixel storage with the provided slice, which must
// match the buffered region's pixel count.
func (img *Image[T]) SetPixels(pix []T) error {
	if len(pix) != img.buffered.NumPixels() {
		return fmt.Errorf("pixel slice has %d values but buffered region %v holds %d", len(pix), img.buffered, img.buffered.NumPixels())
	}
	img.rebuildOffsets()
	img.pix = pix
	img.mtime = tick()
	return nil
}

// Spacing returns a copy of the physical size of a pixel along each axis.
// Geometry changes must go through SetSpacing so the modification
// timestamp ticks.
func (img *Image[T]) Spacing() []float64 {
	return append([]float64(nil), img.spacing...)
}

// SetSpacing sets the physical size of a pixel along each axis.
func (img *Image[T]) SetSpacing(spacing []float64) error {
	if len(spacing) != img.Dimension() {
		return fmt.Errorf("spacing has %d components but image is %d-dimensional", len(spacing), img.Dimension())
	}
	for i, s := range spacing {
		if s <= 0 {
			return fmt.Errorf("spacing must be positive, axis %d is %g", i, s)
		}
	}
	img.spacing = append([]float64(nil), spacing...)
	img.mtime = tick()
	return nil
}

// Origin returns a copy of the physical coordinates of the pixel at the
// zero index. Geometry changes must go through SetOrigin.
func (img *Image[T]) Origin() []float64 {
	return append([]float64(nil), img.origin...)
}

// SetOrigin sets the physical coordinates of the pixel at the zero index.
func (img *Image[T]) SetOrigin(origin []float64) error {
	if len(origin) != img.Dimension() {
		return fmt.Errorf("origin has %d components but image is %d-dimensional", len(origin), img.Dimension())
	}
	img.origin = append([]float64(nil), origin...)
	img.mtime = tick()
	return nil
}

// Modified bumps the image's modification timestamp. Pipelines compare
// timestamps to detect stale downstream data.
func (img *Image[T]) Modified() {
	img.mtime = tick()
}

// MTime returns the image's last modification timestamp.
func (img *Image[T]) MTime() uint64 {
	return img.mtime
}

// Graft adopts the geometry and pixel storage of src: regions, spacing and
// origin are copied, and the pixel slice is shared rather than deep-copied.
// Afterwards the two images observe each other's pixel writes while keeping
// independent region bookkeeping.
func (img *Image[T]) Graft(src *Image[T]) error {
	if src == nil {
		return fmt.Errorf("cannot graft from nil image")
	}
	if src.Dimension() != img.Dimension() {
		return fmt.Errorf("cannot graft %d-dimensional image onto %d-dimensional image", src.Dimension(), img.Dimension())
	}
	img.largest = src.largest.Clone()
	img.buffered = src.buffered.Clone()
	img.requested = src.requested.Clone()
	img.spacing = append([]float64(nil), src.spacing...)
	img.origin = append([]float64(nil), src.origin...)
	img.offsets = append([]int(nil), src.offsets...)
	img.pix = src.pix
	img.mtime = tick()
	return nil
}
