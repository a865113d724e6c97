package voxel

import (
	"testing"
)

// TestNewRegion verifies construction and dimension validation
func TestNewRegion(t *testing.T) {
	r, err := NewRegion(Index{1, 2}, Size{3, 4})
	if err != nil {
		t.Fatalf("Failed to create region: %v", err)
	}

	if r.Dimension() != 2 {
		t.Errorf("Expected dimension 2, got %d", r.Dimension())
	}

	if r.NumPixels() != 12 {
		t.Errorf("Expected 12 pixels, got %d", r.NumPixels())
	}

	// Mismatched dimensionality must be rejected
	if _, err := NewRegion(Index{0}, Size{2, 2}); err == nil {
		t.Error("Expected error for mismatched start/extent dimensions")
	}

	// Negative extents must be rejected
	if _, err := NewRegion(Index{0, 0}, Size{2, -1}); err == nil {
		t.Error("Expected error for negative extent")
	}
}

// TestRegionContainsIndex verifies index membership including boundaries
func TestRegionContainsIndex(t *testing.T) {
	r, _ := NewRegion(Index{1, 1}, Size{3, 3})

	inside := []Index{{1, 1}, {3, 3}, {2, 2}}
	for _, idx := range inside {
		if !r.ContainsIndex(idx) {
			t.Errorf("Expected %v inside region %v", idx, r)
		}
	}

	outside := []Index{{0, 1}, {4, 1}, {1, 4}, {-1, -1}}
	for _, idx := range outside {
		if r.ContainsIndex(idx) {
			t.Errorf("Expected %v outside region %v", idx, r)
		}
	}

	// Wrong dimensionality is never inside
	if r.ContainsIndex(Index{1, 1, 1}) {
		t.Error("3-dimensional index should not be inside a 2-dimensional region")
	}
}

// TestRegionContainsRegion verifies the nesting relation used by the
// requested/buffered/largest invariant
func TestRegionContainsRegion(t *testing.T) {
	outer, _ := NewRegion(Index{0, 0}, Size{10, 10})
	inner, _ := NewRegion(Index{2, 2}, Size{4, 4})
	overflow, _ := NewRegion(Index{8, 8}, Size{4, 4})
	empty, _ := NewRegion(Index{5, 5}, Size{0, 0})

	if !outer.ContainsRegion(inner) {
		t.Errorf("Expected %v to contain %v", outer, inner)
	}

	if !outer.ContainsRegion(outer) {
		t.Error("A region should contain itself")
	}

	if outer.ContainsRegion(overflow) {
		t.Errorf("Expected %v not to contain %v", outer, overflow)
	}

	if !outer.ContainsRegion(empty) {
		t.Error("An empty region should be contained anywhere")
	}
}

// TestRegionCrop verifies intersection with overlapping and disjoint boxes
func TestRegionCrop(t *testing.T) {
	r, _ := NewRegion(Index{0, 0}, Size{10, 10})
	bounds, _ := NewRegion(Index{5, 5}, Size{10, 10})

	cropped, err := r.Crop(bounds)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	want, _ := NewRegion(Index{5, 5}, Size{5, 5})
	if !cropped.Equal(want) {
		t.Errorf("Expected cropped region %v, got %v", want, cropped)
	}

	disjoint, _ := NewRegion(Index{20, 20}, Size{2, 2})
	if _, err := r.Crop(disjoint); err == nil {
		t.Error("Expected error when cropping by a disjoint region")
	}
}

// TestRegionClone verifies that clones do not share backing storage
func TestRegionClone(t *testing.T) {
	r, _ := NewRegion(Index{1, 2}, Size{3, 4})
	c := r.Clone()

	c.Start[0] = 99
	if r.Start[0] == 99 {
		t.Error("Clone shares start storage with the original")
	}
}
