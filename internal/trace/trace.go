// Package trace writes a compact per-frame text record of a simulation run.
// Two runs with the same scene, config and input produce byte-identical
// traces, which makes them usable as regression fixtures.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// Header is the first line of every trace.
const Header = "# frame time pos vel state contacts penetration impacts"

// Recorder formats frames onto a writer.
type Recorder struct {
	w      *bufio.Writer
	closer io.Closer
	frames int
	err    error
}

// NewRecorder returns a Recorder writing to w. If w is an io.Closer it is
// closed by Close.
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	_, r.err = fmt.Fprintln(r.w, Header)
	return r
}

// Create opens path for writing and returns a Recorder on it.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace: %w", err)
	}
	return NewRecorder(f), nil
}

// Record appends one frame. The first write error is sticky and returned
// from every later call.
func (r *Recorder) Record(frame int, t float64, res physics.FrameResult) error {
	if r.err != nil {
		return r.err
	}
	state := res.State.String()
	if res.Respawned {
		state += "!"
	}
	_, r.err = fmt.Fprintf(r.w, "%d %.4f %s %s %s %d %.6f %d\n",
		frame, t,
		vec(res.Pose.Position), vec(res.Velocity),
		state, len(res.Contacts), res.MaxPenetration, res.Impacts)
	if r.err == nil {
		r.frames++
	}
	return r.err
}

// Frames returns the number of frames recorded.
func (r *Recorder) Frames() int { return r.frames }

// Flush writes buffered frames to the underlying writer.
func (r *Recorder) Flush() error {
	if r.err != nil {
		return r.err
	}
	r.err = r.w.Flush()
	return r.err
}

// Close flushes and closes the underlying writer if it is closable.
func (r *Recorder) Close() error {
	err := r.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func vec(v math.Vec3) string {
	return fmt.Sprintf("%.5f,%.5f,%.5f", v.X, v.Y, v.Z)
}
