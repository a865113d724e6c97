package voxel

// Source is the read surface shared by raw images and adaptor views. Any
// consumer written against Source — slice extraction, metrics, resampling —
// accepts a view wherever it accepts a raw buffer, which is the point of
// the adaptor pattern.
type Source[T Value] interface {
	// Dimension returns the number of axes.
	Dimension() int

	// LargestPossibleRegion returns the full logical extent of the dataset.
	LargestPossibleRegion() Region

	// BufferedRegion returns the extent currently resident in memory.
	BufferedRegion() Region

	// RequestedRegion returns the extent a consumer asked to materialize.
	RequestedRegion() Region

	// Spacing returns the physical size of a pixel along each axis.
	Spacing() []float64

	// Origin returns the physical coordinates of the pixel at index zero.
	Origin() []float64

	// MTime returns the last modification timestamp.
	MTime() uint64

	// GetPixel returns the value visible at idx, after whatever value
	// transformation the source applies.
	GetPixel(idx Index) (T, error)
}
