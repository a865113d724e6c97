package adaptor

import (
	"math"
	"testing"
)

// TestAcosGet verifies the accessor against math.Acos across the valid
// domain [-1, 1]
func TestAcosGet(t *testing.T) {
	acc := Acos[float64, float64]{}

	for x := -1.0; x <= 1.0; x += 0.05 {
		got := acc.Get(x)
		want := math.Acos(x)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Acos.Get(%f): expected %g, got %g", x, want, got)
		}
	}
}

// TestAcosSet verifies that Set applies the same function as Get, writing
// through to the internal slot
func TestAcosSet(t *testing.T) {
	acc := Acos[float64, float64]{}

	var slot float64
	acc.Set(&slot, 0.5)
	want := math.Acos(0.5)
	if math.Abs(slot-want) > 1e-9 {
		t.Errorf("Acos.Set(0.5): expected slot %g, got %g", want, slot)
	}
}

// TestAcosDomainPolicy verifies both out-of-domain policies: pass-through
// to NaN by default, clamping when requested
func TestAcosDomainPolicy(t *testing.T) {
	passthrough := Acos[float64, float64]{}
	if !math.IsNaN(passthrough.Get(1.5)) {
		t.Errorf("Expected NaN for out-of-domain input without clamping, got %g", passthrough.Get(1.5))
	}

	clamping := Acos[float64, float64]{Clamp: true}
	if got := clamping.Get(1.5); got != 0 {
		t.Errorf("Expected clamped acos(1.5)=acos(1)=0, got %g", got)
	}
	if got := clamping.Get(-2.0); math.Abs(got-math.Pi) > 1e-9 {
		t.Errorf("Expected clamped acos(-2)=acos(-1)=pi, got %g", got)
	}
}

// TestIdentityAccessor verifies pass-through with numeric conversion
func TestIdentityAccessor(t *testing.T) {
	acc := Identity[float64, float64]{}
	if got := acc.Get(3.25); got != 3.25 {
		t.Errorf("Expected 3.25, got %g", got)
	}

	var slot float64
	acc.Set(&slot, -1.5)
	if slot != -1.5 {
		t.Errorf("Expected -1.5 in slot, got %g", slot)
	}

	// Narrowing conversion follows Go's numeric conversion rules
	narrow := Identity[int16, float64]{}
	var islot int16
	narrow.Set(&islot, 3.9)
	if islot != 3 {
		t.Errorf("Expected truncation to 3, got %d", islot)
	}
}

// TestLinearRoundTrip verifies that Linear's Get and Set are exact inverses,
// unlike Acos
func TestLinearRoundTrip(t *testing.T) {
	acc := Linear[float64, float64]{Gain: 2.0, Bias: 1.0}

	if got := acc.Get(3.0); got != 7.0 {
		t.Errorf("Expected 2*3+1=7, got %g", got)
	}

	var slot float64
	acc.Set(&slot, 7.0)
	if slot != 3.0 {
		t.Errorf("Expected Set to invert Get, got slot %g", slot)
	}

	// Write-then-read returns the written value
	acc.Set(&slot, -4.5)
	if got := acc.Get(slot); math.Abs(got-(-4.5)) > 1e-12 {
		t.Errorf("Expected round trip of -4.5, got %g", got)
	}
}
