// Package resample materializes a new image by pulling pixel values from a
// source through a coordinate transform. Each output index is mapped to a
// physical point, carried through the transform into source space, and
// interpolated from the source's pixels. Because the source is a
// voxel.Source, a raw buffer and an accessor view resample identically.
package resample

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"voxelview/pkg/transform"
	"voxelview/pkg/voxel"
)

// Interpolation selects how values between source pixels are estimated.
type Interpolation int

const (
	// Nearest rounds the mapped position to the closest source pixel.
	Nearest Interpolation = iota

	// Linear blends the 2^N surrounding source pixels by distance.
	Linear
)

// Params configures a resampling run.
type Params struct {
	// Interpolation selects the sampling kernel. Defaults to Nearest.
	Interpolation Interpolation

	// DefaultValue fills output pixels whose mapped position falls outside
	// the source's buffered region.
	DefaultValue float64

	// NumWorkers bounds the number of goroutines slicing up the output
	// along its outermost axis. Zero or negative means all CPUs.
	NumWorkers int
}

// Through resamples src through t into a freshly allocated image covering
// outRegion. The output inherits the source's spacing and origin, and its
// largest possible, buffered and requested regions all equal outRegion.
//
// Each output index is converted to a physical point using the inherited
// geometry, mapped through t into source space, converted back to a
// continuous source index, and interpolated.
func Through(src voxel.Source[float64], t *transform.Translation, outRegion voxel.Region, p Params) (*voxel.Image[float64], error) {
	dim := src.Dimension()
	if outRegion.Dimension() != dim {
		return nil, fmt.Errorf("output region is %d-dimensional but source is %d-dimensional", outRegion.Dimension(), dim)
	}
	if t.Dimension() != dim {
		return nil, fmt.Errorf("transform is %d-dimensional but source is %d-dimensional", t.Dimension(), dim)
	}

	out := voxel.NewImage[float64](dim)
	if err := out.SetRegions(outRegion); err != nil {
		return nil, err
	}
	if err := out.SetSpacing(src.Spacing()); err != nil {
		return nil, err
	}
	if err := out.SetOrigin(src.Origin()); err != nil {
		return nil, err
	}
	if err := out.Allocate(); err != nil {
		return nil, err
	}
	if outRegion.NumPixels() == 0 {
		return out, nil
	}

	workers := p.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	outerAxis := dim - 1
	if workers > outRegion.Extent[outerAxis] {
		workers = outRegion.Extent[outerAxis]
	}

	// Split the output along its outermost axis, one contiguous band of
	// slices per worker.
	var wg sync.WaitGroup
	errs := make([]error, workers)
	per := (outRegion.Extent[outerAxis] + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := outRegion.Start[outerAxis] + w*per
		hi := lo + per
		if end := outRegion.Start[outerAxis] + outRegion.Extent[outerAxis]; hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		band := outRegion.Clone()
		band.Start[outerAxis] = lo
		band.Extent[outerAxis] = hi - lo

		wg.Add(1)
		go func(w int, band voxel.Region) {
			defer wg.Done()
			errs[w] = resampleBand(src, t, out, band, p)
		}(w, band)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	out.Modified()
	return out, nil
}

// resampleBand fills one band of the output region sequentially.
func resampleBand(src voxel.Source[float64], t *transform.Translation, out *voxel.Image[float64], band voxel.Region, p Params) error {
	dim := band.Dimension()
	spacing := src.Spacing()
	origin := src.Origin()
	srcRegion := src.BufferedRegion()

	idx := append(voxel.Index(nil), band.Start...)
	point := make([]float64, dim)
	cont := make([]float64, dim)

	for n := band.NumPixels(); n > 0; n-- {
		// Physical point of the output pixel.
		for i, v := range idx {
			point[i] = origin[i] + spacing[i]*float64(v)
		}
		mapped, err := t.TransformPoint(point)
		if err != nil {
			return err
		}
		// Continuous index in source space.
		for i := range mapped {
			cont[i] = (mapped[i] - origin[i]) / spacing[i]
		}

		var value float64
		switch p.Interpolation {
		case Linear:
			value = interpolateLinear(src, srcRegion, cont, p.DefaultValue)
		default:
			value = interpolateNearest(src, srcRegion, cont, p.DefaultValue)
		}
		if err := out.SetPixel(idx, value); err != nil {
			return fmt.Errorf("resample write at %v: %w", []int(idx), err)
		}
		increment(idx, band)
	}
	return nil
}

// increment advances idx to the next index of region in raster order, with
// the first axis varying fastest.
func increment(idx voxel.Index, region voxel.Region) {
	for i := range idx {
		idx[i]++
		if idx[i] < region.Start[i]+region.Extent[i] {
			return
		}
		idx[i] = region.Start[i]
	}
}

// interpolateNearest rounds the continuous index to the closest pixel and
// reads it, or returns def when the rounded index leaves the source region.
func interpolateNearest(src voxel.Source[float64], region voxel.Region, cont []float64, def float64) float64 {
	idx := make(voxel.Index, len(cont))
	for i, c := range cont {
		idx[i] = int(math.Round(c))
	}
	if !region.ContainsIndex(idx) {
		return def
	}
	v, err := src.GetPixel(idx)
	if err != nil {
		return def
	}
	return v
}

// interpolateLinear blends the 2^N pixels surrounding the continuous index.
// Positions outside the source region return def; corner indices of a
// position inside the region are clamped to its bounds, which reproduces
// edge values when sampling within half a pixel of the boundary.
func interpolateLinear(src voxel.Source[float64], region voxel.Region, cont []float64, def float64) float64 {
	dim := len(cont)
	for i, c := range cont {
		if c < float64(region.Start[i]) || c > float64(region.Start[i]+region.Extent[i]-1) {
			return def
		}
	}

	base := make([]int, dim)
	frac := make([]float64, dim)
	for i, c := range cont {
		f := math.Floor(c)
		base[i] = int(f)
		frac[i] = c - f
	}

	sum := 0.0
	idx := make(voxel.Index, dim)
	for corner := 0; corner < 1<<dim; corner++ {
		weight := 1.0
		for i := 0; i < dim; i++ {
			if corner&(1<<i) != 0 {
				idx[i] = base[i] + 1
				weight *= frac[i]
			} else {
				idx[i] = base[i]
				weight *= 1 - frac[i]
			}
			if hi := region.Start[i] + region.Extent[i] - 1; idx[i] > hi {
				idx[i] = hi
			}
		}
		if weight == 0 {
			continue
		}
		v, err := src.GetPixel(idx)
		if err != nil {
			return def
		}
		sum += weight * v
	}
	return sum
}
