package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/tiltmaze/internal/audio"
	"github.com/Faultbox/tiltmaze/internal/game"
	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/internal/logger"
	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/internal/scene"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// Terminals report key presses but not releases, so a key counts as held
// until its auto-repeat stops arriving.
const holdWindow = 150 * time.Millisecond

// hudRows are reserved under the map for status lines.
const hudRows = 4

var (
	styleWall  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFloor = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleGoal  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleZone  = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleBall  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHUD   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHit   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

type viewer struct {
	screen tcell.Screen
	game   *game.Game
	sound  *audio.Manager
	log    *zap.Logger

	// Last press time per tilt direction: +X, -X, +Z, -Z.
	held [4]time.Time

	pilot    *game.Autopilot
	paused   bool
	hitFlash int
	closed   bool
}

func newViewer(g *game.Game, sound bool) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	v := &viewer{screen: screen, game: g, log: logger.Named("view")}
	if sound {
		v.sound = audio.New()
		if err := v.sound.Init(); err != nil {
			// Non-fatal, the viewer runs without sound
			v.log.Warn("audio initialization failed", zap.Error(err))
			v.sound = nil
		}
	}
	return v, nil
}

func (v *viewer) cleanup() {
	if v.closed {
		return
	}
	v.closed = true
	if v.sound != nil {
		v.sound.Close()
	}
	v.screen.Fini()
}

func (v *viewer) run() error {
	ticker := time.NewTicker(time.Duration(float64(v.game.Timestep()) * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !v.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			if !v.paused {
				if err := v.step(); err != nil {
					return err
				}
			}
			v.draw()
		}
	}
}

// handleEvent returns false when the viewer should quit.
func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		now := time.Now()
		switch ev.Key() {
		case tcell.KeyUp:
			v.held[0] = now
		case tcell.KeyDown:
			v.held[1] = now
		case tcell.KeyRight:
			v.held[2] = now
		case tcell.KeyLeft:
			v.held[3] = now
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'w', 'W':
				v.held[0] = now
			case 's', 'S':
				v.held[1] = now
			case 'd', 'D':
				v.held[2] = now
			case 'a', 'A':
				v.held[3] = now
			case ' ':
				v.paused = !v.paused
			case 'r':
				v.pilot = nil
				if err := v.game.Reset(); err != nil {
					v.log.Error("reset failed", zap.Error(err))
				}
			case 'p':
				v.togglePilot()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) togglePilot() {
	if v.pilot != nil {
		v.pilot = nil
		return
	}
	ap, err := game.NewAutopilot(v.game)
	if err != nil {
		v.log.Warn("autopilot unavailable", zap.Error(err))
		return
	}
	v.pilot = ap
}

// input converts held keys into tilt input.
func (v *viewer) input() game.Input {
	now := time.Now()
	on := func(i int) float32 {
		if now.Sub(v.held[i]) < holdWindow {
			return 1
		}
		return 0
	}
	return game.Input{X: on(0) - on(1), Z: on(2) - on(3)}
}

func (v *viewer) step() error {
	in := v.input()
	if v.pilot != nil && in == (game.Input{}) {
		in = v.pilot.Input(v.game.Frame(), v.game.Last())
	}
	res, err := v.game.Step(in)
	if err != nil {
		return err
	}
	if res.Impacts > 0 && res.ImpactSpeed >= audio.MinImpactSpeed {
		v.hitFlash = 6
		if v.sound != nil {
			if err := v.sound.PlayImpact(res.ImpactSpeed); err != nil {
				v.log.Debug("impact sound", zap.Error(err))
			}
		}
	} else if v.hitFlash > 0 {
		v.hitFlash--
	}
	return nil
}

// projection maps maze-space XZ onto screen cells, two columns per unit
// of the scale so cells look square.
type projection struct {
	origin math.Vec3
	scale  float32 // rows per world unit
}

func (p projection) cell(pt math.Vec3) (x, y int) {
	d := pt.Sub(p.origin)
	return int(d.X * p.scale * 2), int(d.Z * p.scale)
}

func (v *viewer) projection(w, h int) projection {
	lvl := v.game.Level()
	b := lvl.Bounds
	if lvl.Layout != nil {
		cols, rows := lvl.Layout.Size()
		o := lvl.Layout.Origin
		b = geometry.AABB{
			Min: o,
			Max: o.Add(math.Vec3{X: float32(cols) * lvl.Layout.Cell, Z: float32(rows) * lvl.Layout.Cell}),
		}
	}
	ext := b.Extent()
	scale := float32(1)
	if ext.X > 0 && ext.Z > 0 {
		scale = min(float32(w)/(2*ext.X), float32(h-hudRows)/ext.Z)
	}
	return projection{origin: b.Min, scale: max(scale, 0.1)}
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	p := v.projection(w, h)
	lvl := v.game.Level()

	if l := lvl.Layout; l != nil {
		v.drawLayout(p, *l)
	}
	for _, z := range lvl.World.Zones() {
		x0, y0 := p.cell(z.Bounds.Min)
		x1, y1 := p.cell(z.Bounds.Max)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				v.screen.SetContent(x, y, '~', nil, styleZone)
			}
		}
	}

	res := v.game.Last()
	local := lvl.LayoutFrame().ApplyInverse(res.Pose.Position)
	bx, by := p.cell(local)
	ball := styleBall
	if v.hitFlash > 0 {
		ball = styleHit
	}
	v.screen.SetContent(bx, by, '●', nil, ball)

	v.drawHUD(w, h, res)
	v.screen.Show()
}

func (v *viewer) drawLayout(p projection, l geometry.Layout) {
	cols, rows := l.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			lo := l.CellCenter(col, row).Sub(math.Vec3{X: l.Cell / 2, Z: l.Cell / 2})
			hi := lo.Add(math.Vec3{X: l.Cell, Z: l.Cell})
			x0, y0 := p.cell(lo)
			x1, y1 := p.cell(hi)
			r, style := '·', styleFloor
			switch l.At(col, row) {
			case geometry.WallRune:
				r, style = '█', styleWall
			case scene.GoalMarker:
				r, style = '◎', styleGoal
			}
			for y := y0; y < max(y1, y0+1); y++ {
				for x := x0; x < max(x1, x0+1); x++ {
					v.screen.SetContent(x, y, r, nil, style)
				}
			}
		}
	}
}

func (v *viewer) drawHUD(w, h int, res physics.FrameResult) {
	t := v.game.Tilt()
	mode := "manual"
	switch {
	case v.paused:
		mode = "paused"
	case v.pilot != nil:
		mode = "autopilot"
	}
	lines := []string{
		fmt.Sprintf("%s  frame %d  t %.1fs  %s  %s", v.game.Level().Name, v.game.Frame(), v.game.Time(), res.State, mode),
		fmt.Sprintf("pos %6.2f %6.2f %6.2f  vel %6.2f %6.2f %6.2f",
			res.Pose.Position.X, res.Pose.Position.Y, res.Pose.Position.Z,
			res.Velocity.X, res.Velocity.Y, res.Velocity.Z),
		fmt.Sprintf("tilt x %+5.1f z %+5.1f  contacts %d", t.X, t.Z, len(res.Contacts)),
		"WASD/arrows tilt  p autopilot  space pause  r reset  q quit",
	}
	if ok, at := v.game.GoalReached(); ok {
		lines[2] += fmt.Sprintf("  goal at %.1fs", at)
	}
	for i, line := range lines {
		y := h - hudRows + i
		for x, r := range []rune(line) {
			if x >= w {
				break
			}
			v.screen.SetContent(x, y, r, nil, styleHUD)
		}
	}
}
