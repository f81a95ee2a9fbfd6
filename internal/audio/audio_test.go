package audio

import (
	"errors"
	"math"
	"testing"
)

func TestVolumeExponent(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{1.0, 0},
		{0.5, -1},
		{0.25, -2},
		{0.0, -100},
	}

	for _, tt := range tests {
		if got := volumeExponent(tt.vol); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("volumeExponent(%f) = %f, want %f", tt.vol, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestNewManager(t *testing.T) {
	m := New()
	if m.MasterVolume() != 1.0 {
		t.Errorf("default master volume = %f, want 1.0", m.MasterVolume())
	}
	if m.SFXVolume() != 0.8 {
		t.Errorf("default SFX volume = %f, want 0.8", m.SFXVolume())
	}
	if m.IsInitialized() {
		t.Error("new manager reports initialized")
	}
}

func TestSetVolume(t *testing.T) {
	m := New()

	m.SetMasterVolume(0.5)
	if m.MasterVolume() != 0.5 {
		t.Errorf("master volume = %f, want 0.5", m.MasterVolume())
	}
	m.SetMasterVolume(2.0)
	if m.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", m.MasterVolume())
	}
	m.SetSFXVolume(-1.0)
	if m.SFXVolume() != 0.0 {
		t.Errorf("SFX volume = %f, want 0.0 (clamped)", m.SFXVolume())
	}
}

func TestPlayImpactNeedsInit(t *testing.T) {
	m := New()
	if err := m.PlayImpact(2); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("PlayImpact() error = %v, want ErrNotInitialized", err)
	}
	// Close without Init is a no-op.
	m.Close()
}

func TestClickStream(t *testing.T) {
	c := newClick(DefaultSampleRate, refSpeed)
	if c.length != DefaultSampleRate.N(clickLength) {
		t.Fatalf("click length %d samples", c.length)
	}

	buf := make([][2]float64, 512)
	total := 0
	peakFirst, peakLast := 0.0, 0.0
	for {
		n, ok := c.Stream(buf)
		for i := 0; i < n; i++ {
			if buf[i][0] != buf[i][1] {
				t.Fatalf("sample %d is not mono", total+i)
			}
			a := math.Abs(buf[i][0])
			if total+i < c.length/10 {
				peakFirst = max(peakFirst, a)
			}
			if total+i >= c.length*9/10 {
				peakLast = max(peakLast, a)
			}
		}
		total += n
		if !ok {
			break
		}
	}
	if total != c.length {
		t.Errorf("streamed %d samples, want %d", total, c.length)
	}
	if peakLast >= peakFirst/10 {
		t.Errorf("click does not decay: first peak %f, last peak %f", peakFirst, peakLast)
	}

	soft := newClick(DefaultSampleRate, 0)
	if soft.freq >= c.freq {
		t.Errorf("soft click pitch %f not below hard click %f", soft.freq, c.freq)
	}
}
