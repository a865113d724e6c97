// Package metrics scores how closely two pixel sources agree over a common
// region. It is typically used to quantify what an accessor view or a
// resampling pass did to a volume: compare the raw buffer against the view,
// or a volume against its resampled counterpart.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"voxelview/pkg/voxel"
)

// Report holds the comparison metrics for a pair of pixel sources.
type Report struct {
	// RMSE is the root mean square difference between the two sources.
	// Lower values indicate closer agreement.
	RMSE float64

	// MAE is the mean absolute difference between the two sources.
	MAE float64

	// Correlation is the Pearson correlation of the two intensity
	// sequences. 1 means perfectly linearly related.
	Correlation float64

	// SSIM is the structural similarity index over the whole region,
	// considering luminance, contrast and structure. Values range from
	// -1 to 1, with 1 indicating perfect similarity.
	SSIM float64

	// EntropyDiff is the absolute difference in Shannon entropy of the
	// two intensity distributions, estimated over 256 bins.
	EntropyDiff float64
}

// Compare reads both sources over region and computes the full report.
// The region must lie inside both sources' buffered regions.
func Compare(a, b voxel.Source[float64], region voxel.Region) (Report, error) {
	if !a.BufferedRegion().ContainsRegion(region) {
		return Report{}, fmt.Errorf("region %v outside first source's buffered region %v", region, a.BufferedRegion())
	}
	if !b.BufferedRegion().ContainsRegion(region) {
		return Report{}, fmt.Errorf("region %v outside second source's buffered region %v", region, b.BufferedRegion())
	}
	n := region.NumPixels()
	if n == 0 {
		return Report{}, fmt.Errorf("cannot compare over empty region %v", region)
	}

	va := make([]float64, 0, n)
	vb := make([]float64, 0, n)
	idx := append(voxel.Index(nil), region.Start...)
	for i := 0; i < n; i++ {
		pa, err := a.GetPixel(idx)
		if err != nil {
			return Report{}, fmt.Errorf("reading first source: %w", err)
		}
		pb, err := b.GetPixel(idx)
		if err != nil {
			return Report{}, fmt.Errorf("reading second source: %w", err)
		}
		va = append(va, pa)
		vb = append(vb, pb)
		advance(idx, region)
	}

	return Report{
		RMSE:        rmse(va, vb),
		MAE:         mae(va, vb),
		Correlation: stat.Correlation(va, vb, nil),
		SSIM:        ssim(va, vb),
		EntropyDiff: math.Abs(entropy(va) - entropy(vb)),
	}, nil
}

func advance(idx voxel.Index, region voxel.Region) {
	for i := range idx {
		idx[i]++
		if idx[i] < region.Start[i]+region.Extent[i] {
			return
		}
		idx[i] = region.Start[i]
	}
}

func rmse(a, b []float64) float64 {
	mse := 0.0
	for i := range a {
		d := a[i] - b[i]
		mse += d * d
	}
	return math.Sqrt(mse / float64(len(a)))
}

func mae(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}

// ssim computes a single structural similarity score over the full sample,
// with the standard k1/k2 stabilizing constants and unit dynamic range.
func ssim(a, b []float64) float64 {
	const (
		l  = 1.0
		k1 = 0.01
		k2 = 0.03
	)
	c1 := (k1 * l) * (k1 * l)
	c2 := (k2 * l) * (k2 * l)

	muX := stat.Mean(a, nil)
	muY := stat.Mean(b, nil)
	sigmaX := stat.Variance(a, nil)
	sigmaY := stat.Variance(b, nil)
	sigmaXY := stat.Covariance(a, b, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	if den == 0 {
		return 0
	}
	return num / den
}

// entropy estimates Shannon entropy of the intensity distribution using a
// 256-bin histogram over the sample's value range.
func entropy(data []float64) float64 {
	const numBins = 256

	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return 0
	}

	hist := make([]float64, numBins)
	for _, v := range data {
		bin := int((v - lo) / (hi - lo) * (numBins - 1))
		hist[bin]++
	}

	h := 0.0
	total := float64(len(data))
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}
