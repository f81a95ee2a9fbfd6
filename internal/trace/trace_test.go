package trace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

func TestRecordFormat(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)
	res := physics.FrameResult{
		State:          physics.Resting,
		Pose:           physics.Pose{Position: math.Vec3{X: 1.5, Y: 0.3, Z: -2}},
		Velocity:       math.Vec3{Z: 0.25},
		Contacts:       make([]physics.ContactInfo, 2),
		MaxPenetration: 0.0005,
		Impacts:        1,
	}
	if err := r.Record(1, 1.0/60, res); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	res.Respawned = true
	res.State = physics.FreeFall
	if err := r.Record(2, 2.0/60, res); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := Header + "\n" +
		"1 0.0167 1.50000,0.30000,-2.00000 0.00000,0.00000,0.25000 resting 2 0.000500 1\n" +
		"2 0.0333 1.50000,0.30000,-2.00000 0.00000,0.00000,0.25000 free-fall! 2 0.000500 1\n"
	if got := buf.String(); got != want {
		t.Errorf("trace:\n%s\nwant:\n%s", got, want)
	}
	if r.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", r.Frames())
	}
}

type failWriter struct{ n int }

var errWrite = errors.New("disk full")

func (w *failWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errWrite
}

func TestRecordErrorIsSticky(t *testing.T) {
	w := &failWriter{}
	r := NewRecorder(w)
	for i := 0; i < 3; i++ {
		_ = r.Record(i, 0, physics.FrameResult{})
	}
	if err := r.Flush(); !errors.Is(err, errWrite) {
		t.Fatalf("Flush() error = %v, want %v", err, errWrite)
	}
	if err := r.Record(4, 0, physics.FrameResult{}); !errors.Is(err, errWrite) {
		t.Errorf("Record() after failure = %v, want %v", err, errWrite)
	}
	if w.n != 1 {
		t.Errorf("writer called %d times, want 1", w.n)
	}
	if r.Frames() != 3 {
		t.Errorf("Frames() = %d, want the 3 buffered before the failure", r.Frames())
	}
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace")
	r, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.Record(1, 0.5, physics.FrameResult{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != Header || !strings.HasPrefix(lines[1], "1 0.5000 ") {
		t.Errorf("file contents = %q", data)
	}

	if _, err := Create(filepath.Join(t.TempDir(), "missing", "run.trace")); err == nil {
		t.Error("Create() into a missing directory succeeded")
	}
}
