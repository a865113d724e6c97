package adaptor

import (
	"fmt"

	"voxelview/pkg/voxel"
)

// View wraps a voxel.Image and an Accessor, intercepting pixel reads and
// writes to apply the accessor's value transformation while delegating all
// shape and metadata operations to the wrapped buffer. A View never copies
// pixel data and never owns the buffer it wraps: destroying the view leaves
// the buffer untouched, and the buffer must outlive the view.
//
// Region getters return a cached copy of the bound buffer's regions. The
// cache is refreshed when SetImage rebinds the view (or when a region is
// set through the view itself); mutating the buffer's regions directly
// leaves the cache stale until the next rebind.
//
// A View satisfies voxel.Source, so it is accepted anywhere a raw buffer
// is, which is the point: filters see pixels that appear to have been
// transformed already.
type View[I, E voxel.Value] struct {
	img *voxel.Image[I]
	acc Accessor[I, E]

	largest   voxel.Region
	buffered  voxel.Region
	requested voxel.Region
}

// NewView binds a view to img with the given accessor. img may be nil, in
// which case SetImage must be called before any other operation.
func NewView[I, E voxel.Value](img *voxel.Image[I], acc Accessor[I, E]) *View[I, E] {
	v := &View[I, E]{acc: acc}
	if img != nil {
		v.SetImage(img)
	}
	return v
}

// SetImage rebinds the view to a new buffer and refreshes the cached
// region metadata from it.
func (v *View[I, E]) SetImage(img *voxel.Image[I]) {
	if img == nil {
		panic("adaptor: SetImage called with nil image")
	}
	v.img = img
	v.refreshRegions()
}

func (v *View[I, E]) refreshRegions() {
	v.largest = v.img.LargestPossibleRegion().Clone()
	v.buffered = v.img.BufferedRegion().Clone()
	v.requested = v.img.RequestedRegion().Clone()
}

// mustImage returns the bound buffer. Using a view before SetImage is a
// programming error, not a runtime condition, so it fails fatally.
func (v *View[I, E]) mustImage() *voxel.Image[I] {
	if v.img == nil {
		panic("adaptor: view has no bound image; call SetImage before use")
	}
	return v.img
}

// Image returns the currently bound buffer, or nil before SetImage.
func (v *View[I, E]) Image() *voxel.Image[I] { return v.img }

// Accessor returns the view's accessor strategy.
func (v *View[I, E]) Accessor() Accessor[I, E] { return v.acc }

// SetAccessor replaces the view's accessor strategy.
func (v *View[I, E]) SetAccessor(acc Accessor[I, E]) { v.acc = acc }

// GetPixel fetches the raw stored value at idx from the wrapped buffer and
// returns it transformed by the accessor. Indices outside the buffered
// region yield a recoverable bounds error.
func (v *View[I, E]) GetPixel(idx voxel.Index) (E, error) {
	raw, err := v.mustImage().GetPixel(idx)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("adaptor read: %w", err)
	}
	return v.acc.Get(raw), nil
}

// SetPixel runs value through the accessor's Set and writes the result into
// the buffer's storage slot at idx, mutating it in place.
func (v *View[I, E]) SetPixel(idx voxel.Index, value E) error {
	slot, err := v.mustImage().PixelRef(idx)
	if err != nil {
		return fmt.Errorf("adaptor write: %w", err)
	}
	v.acc.Set(slot, value)
	return nil
}

// Dimension returns the dimensionality of the bound buffer.
func (v *View[I, E]) Dimension() int { return v.mustImage().Dimension() }

// LargestPossibleRegion returns the cached largest possible region.
func (v *View[I, E]) LargestPossibleRegion() voxel.Region {
	v.mustImage()
	return v.largest
}

// BufferedRegion returns the cached buffered region.
func (v *View[I, E]) BufferedRegion() voxel.Region {
	v.mustImage()
	return v.buffered
}

// RequestedRegion returns the cached requested region.
func (v *View[I, E]) RequestedRegion() voxel.Region {
	v.mustImage()
	return v.requested
}

// SetLargestPossibleRegion writes through to the bound buffer and updates
// the cache.
func (v *View[I, E]) SetLargestPossibleRegion(r voxel.Region) {
	v.mustImage().SetLargestPossibleRegion(r)
	v.largest = r.Clone()
}

// SetBufferedRegion writes through to the bound buffer and updates the cache.
func (v *View[I, E]) SetBufferedRegion(r voxel.Region) {
	v.mustImage().SetBufferedRegion(r)
	v.buffered = r.Clone()
}

// SetRequestedRegion writes through to the bound buffer and updates the cache.
func (v *View[I, E]) SetRequestedRegion(r voxel.Region) {
	v.mustImage().SetRequestedRegion(r)
	v.requested = r.Clone()
}

// Allocate forwards to the bound buffer and refreshes the region cache.
func (v *View[I, E]) Allocate() error {
	if err := v.mustImage().Allocate(); err != nil {
		return err
	}
	v.refreshRegions()
	return nil
}

// Initialize forwards to the bound buffer, releasing its storage and
// resetting its regions, then refreshes the region cache.
func (v *View[I, E]) Initialize() {
	v.mustImage().Initialize()
	v.refreshRegions()
}

// Spacing delegates to the bound buffer.
func (v *View[I, E]) Spacing() []float64 { return v.mustImage().Spacing() }

// SetSpacing delegates to the bound buffer.
func (v *View[I, E]) SetSpacing(spacing []float64) error {
	return v.mustImage().SetSpacing(spacing)
}

// Origin delegates to the bound buffer.
func (v *View[I, E]) Origin() []float64 { return v.mustImage().Origin() }

// SetOrigin delegates to the bound buffer.
func (v *View[I, E]) SetOrigin(origin []float64) error {
	return v.mustImage().SetOrigin(origin)
}

// Modified delegates to the bound buffer.
func (v *View[I, E]) Modified() { v.mustImage().Modified() }

// MTime delegates to the bound buffer, so staleness checks against the view
// see the buffer's timestamp.
func (v *View[I, E]) MTime() uint64 { return v.mustImage().MTime() }

// Graft copies src's geometry into the bound buffer and shares its pixel
// storage, then refreshes the view's region cache. This cheaply produces a
// second typed view over identical memory.
func (v *View[I, E]) Graft(src *voxel.Image[I]) error {
	if err := v.mustImage().Graft(src); err != nil {
		return fmt.Errorf("adaptor graft: %w", err)
	}
	v.refreshRegions()
	return nil
}
