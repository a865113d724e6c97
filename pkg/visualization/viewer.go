// Package visualization extracts 2D slices from 3D pixel sources and saves
// them as image sequences for inspection. Because it reads through the
// voxel.Source interface, the slices show exactly what a consumer of the
// source would see: extracting from an accessor view renders the
// transformed values, never the raw buffer.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"voxelview/pkg/voxel"
)

// Viewer renders axis-aligned slices of a 3-dimensional pixel source.
type Viewer struct {
	src voxel.Source[float64]

	// Colormap switches rendering from 16-bit grayscale to a blue-to-red
	// pseudo-color map, which makes small intensity differences easier
	// to spot in previews.
	Colormap bool

	// Scale is an integer upscaling factor applied to rendered slices.
	// Values below 2 leave the slice at its natural size.
	Scale int

	// Label annotates each rendered slice with its axis and position.
	Label bool

	// Window fixes the intensity range mapped onto the display range.
	// When Lo == Hi the window is computed per slice from the data.
	Window struct {
		Lo, Hi float64
	}
}

// NewViewer creates a viewer over a 3-dimensional source.
func NewViewer(src voxel.Source[float64]) (*Viewer, error) {
	if src.Dimension() != 3 {
		return nil, fmt.Errorf("viewer requires a 3-dimensional source, got %d dimensions", src.Dimension())
	}
	return &Viewer{src: src}, nil
}

// axisIndex maps an axis name to its dimension number.
func axisIndex(axis string) (int, error) {
	switch strings.ToLower(axis) {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
}

// ExtractSlice reads the 2D plane at the given position along the axis,
// where position counts from the start of the buffered region. The
// returned grid is indexed [row][column] with the remaining two axes in
// ascending order.
func (v *Viewer) ExtractSlice(axis string, position int) ([][]float64, error) {
	ax, err := axisIndex(axis)
	if err != nil {
		return nil, err
	}
	region := v.src.BufferedRegion()
	if position < 0 || position >= region.Extent[ax] {
		return nil, fmt.Errorf("position %d outside axis %s extent %d", position, axis, region.Extent[ax])
	}

	// The two in-plane axes, in ascending order.
	u, w := (ax+1)%3, (ax+2)%3
	if u > w {
		u, w = w, u
	}

	rows := region.Extent[w]
	cols := region.Extent[u]
	grid := make([][]float64, rows)
	idx := make(voxel.Index, 3)
	idx[ax] = region.Start[ax] + position
	for r := 0; r < rows; r++ {
		grid[r] = make([]float64, cols)
		idx[w] = region.Start[w] + r
		for c := 0; c < cols; c++ {
			idx[u] = region.Start[u] + c
			val, err := v.src.GetPixel(idx)
			if err != nil {
				return nil, fmt.Errorf("extracting %s-slice %d: %w", axis, position, err)
			}
			grid[r][c] = val
		}
	}
	return grid, nil
}

// RenderSlice extracts a slice and rasterizes it. NaN and -Inf pixels
// render as the bottom of the intensity window, +Inf as the top.
func (v *Viewer) RenderSlice(axis string, position int) (image.Image, error) {
	grid, err := v.ExtractSlice(axis, position)
	if err != nil {
		return nil, err
	}

	lo, hi := v.Window.Lo, v.Window.Hi
	if lo == hi {
		lo, hi = gridRange(grid)
	}

	rows, cols := len(grid), len(grid[0])
	var img image.Image
	if v.Colormap {
		rgba := image.NewRGBA(image.Rect(0, 0, cols, rows))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				rgba.Set(c, r, pseudoColor(normalize(grid[r][c], lo, hi)))
			}
		}
		img = rgba
	} else {
		gray := image.NewGray16(image.Rect(0, 0, cols, rows))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				val := uint16(normalize(grid[r][c], lo, hi) * 65535)
				gray.SetGray16(c, r, color.Gray16{Y: val})
			}
		}
		img = gray
	}

	if v.Scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*v.Scale, b.Dy()*v.Scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		img = scaled
	}

	if v.Label {
		dc := gg.NewContextForImage(img)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(fmt.Sprintf("%s=%d", strings.ToLower(axis), position), 8, 16)
		img = dc.Image()
	}

	return img, nil
}

// normalize maps val into [0,1] over the window. NaN and -Inf render at
// the bottom of the window, +Inf saturates at the top.
func normalize(val, lo, hi float64) float64 {
	if math.IsInf(val, 1) {
		return 1
	}
	if math.IsNaN(val) || math.IsInf(val, -1) {
		return 0
	}
	if hi <= lo {
		return 0
	}
	t := (val - lo) / (hi - lo)
	return math.Max(0, math.Min(1, t))
}

// gridRange finds the finite min/max of a slice grid.
func gridRange(grid [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// pseudoColor maps t in [0,1] onto a blue-to-red HSV ramp with brightness
// rising alongside intensity.
func pseudoColor(t float64) color.Color {
	return colorful.Hsv(240*(1-t), 1.0, 0.15+0.85*t)
}

// SaveSlice writes a rendered slice to disk, choosing the encoder from the
// file extension (.png or .jpg).
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filename), ".png") {
		return png.Encode(file, img)
	}
	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence renders and saves every slice along the given axis into
// outputDir, one numbered file per position.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	ax, err := axisIndex(axis)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	region := v.src.BufferedRegion()
	for pos := 0; pos < region.Extent[ax]; pos++ {
		img, err := v.RenderSlice(axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", strings.ToLower(axis), pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}
	return nil
}
