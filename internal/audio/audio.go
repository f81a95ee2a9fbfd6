// Package audio plays short synthesized clicks when the ball strikes the
// maze.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// DefaultSampleRate is the playback sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Impact click shape.
const (
	clickLength = 60 * time.Millisecond
	clickFreq   = 880.0 // Hz at reference speed
	clickDecay  = 12.0  // envelope time constants per click
	// Impacts at or above refSpeed play at full volume.
	refSpeed = 4.0
	// Impacts slower than MinImpactSpeed are silent.
	MinImpactSpeed = 0.3
)

// Manager mixes impact sounds onto the speaker.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolLevel  float64

	// Mixer for overlapping clicks
	sfxMixer *beep.Mixer
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		sampleRate:   DefaultSampleRate,
		masterVolume: 1.0,
		sfxVolLevel:  0.8,
		sfxMixer:     &beep.Mixer{},
	}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.sfxMixer)

	m.initialized = true
	return nil
}

// Close stops playback.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// IsInitialized returns whether the speaker is open.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the effect volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLevel = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// SFXVolume returns the effect volume.
func (m *Manager) SFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLevel
}

// PlayImpact plays a click for an impact at the given approach speed.
// Slow impacts are ignored.
func (m *Manager) PlayImpact(speed float32) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.masterVolume * m.sfxVolLevel
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if float64(speed) < MinImpactSpeed {
		return nil
	}

	level := clamp(float64(speed)/refSpeed, 0, 1) * vol
	s := &effects.Volume{
		Streamer: newClick(m.sampleRate, speed),
		Base:     2,
		Volume:   volumeExponent(level),
		Silent:   level <= 0,
	}

	speaker.Lock()
	m.sfxMixer.Add(s)
	speaker.Unlock()
	return nil
}

// click is a sine burst with an exponential decay envelope.
type click struct {
	freq     float64
	phase    float64
	position int
	length   int
	rate     beep.SampleRate
}

// newClick returns a click pitched up for harder impacts.
func newClick(rate beep.SampleRate, speed float32) *click {
	pitch := 0.75 + 0.5*clamp(float64(speed)/refSpeed, 0, 1)
	return &click{
		freq:   clickFreq * pitch,
		length: rate.N(clickLength),
		rate:   rate,
	}
}

func (c *click) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.length {
			return i, i > 0
		}
		env := math.Exp(-clickDecay * float64(c.position) / float64(c.length))
		val := env * math.Sin(2*math.Pi*c.phase)
		samples[i][0] = val
		samples[i][1] = val

		c.phase += c.freq / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.position++
	}
	return len(samples), true
}

func (c *click) Err() error { return nil }

// volumeExponent converts a 0-1 volume to the base-2 exponent
// effects.Volume expects: 1 is 0, 0.5 is -1.
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
