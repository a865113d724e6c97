// Package models holds the types and loaders the voxelview CLI uses to turn
// a directory of 2D slice images into an N-dimensional volume.
package models

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"voxelview/pkg/voxel"
)

// Slice represents a single 2D source slice with metadata
type Slice struct {
	// Image is the actual slice image data
	Image image.Image

	// Index is the position of this slice in the sequence
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Position is the physical position of the slice along the stacking axis
	Position float64
}

// LoadSlices reads all JPEG and PNG images from dir, sorted by the numeric
// part of their filenames so the anatomical order of the stack survives
// arbitrary naming schemes. sliceGap is the physical distance between
// consecutive slices and fixes each slice's Position.
func LoadSlices(dir string, sliceGap float64) ([]Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading slice directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no JPEG or PNG images found in %s", dir)
	}

	sort.Slice(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	slices := make([]Slice, 0, len(names))
	for i, name := range names {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}
		slices = append(slices, Slice{
			Image:    img,
			Index:    i,
			Filename: name,
			Position: float64(i) * sliceGap,
		})
	}
	return slices, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	numStr := ""
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}
	if numStr != "" {
		if num, err := strconv.Atoi(numStr); err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(file)
	default:
		return jpeg.Decode(file)
	}
}

// AssembleVolume stacks the slices into a 3-dimensional float64 buffer with
// intensities normalized to [0,1]. All slices must share the dimensions of
// the first one. The z spacing is set to sliceGap, x and y to unit spacing.
func AssembleVolume(slices []Slice, sliceGap float64) (*voxel.Image[float64], error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("cannot assemble a volume from zero slices")
	}

	bounds := slices[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	vol := voxel.NewImage[float64](3)
	region, err := voxel.NewRegion(voxel.Index{0, 0, 0}, voxel.Size{width, height, len(slices)})
	if err != nil {
		return nil, err
	}
	if err := vol.SetRegions(region); err != nil {
		return nil, err
	}
	if err := vol.SetSpacing([]float64{1, 1, sliceGap}); err != nil {
		return nil, err
	}
	if err := vol.Allocate(); err != nil {
		return nil, err
	}

	for z, s := range slices {
		b := s.Image.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("slice %s is %dx%d but the stack is %dx%d", s.Filename, b.Dx(), b.Dy(), width, height)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, bl, _ := s.Image.At(b.Min.X+x, b.Min.Y+y).RGBA()
				// Luminance from 16-bit channels, scaled to [0,1].
				gray := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535.0
				if err := vol.SetPixel(voxel.Index{x, y, z}, gray); err != nil {
					return nil, err
				}
			}
		}
	}
	vol.Modified()
	return vol, nil
}
