package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/status"
)

// Visible world window, meters
const (
	viewWidth  = 2.6
	viewHeight = 2.1
	floorRow   = 3 // Rows reserved below the floor line for help
)

const helpLine = "c node  b bone  f floor  p pose  e end  n next  space pause  q quit"

// cellWriter is the part of tcell.Screen the viewer draws through
type cellWriter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLimb    = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	writerStyles = map[core.Writer]tcell.Style{
		core.WriterNone:    tcell.StyleDefault.Foreground(tcell.ColorWhite),
		core.WriterPose:    tcell.StyleDefault.Foreground(tcell.ColorGreen),
		core.WriterTracker: tcell.StyleDefault.Foreground(tcell.ColorYellow),
	}
)

// projection maps world x/y onto terminal cells; z is dropped
type projection struct {
	scaleX, scaleY float64
	originX        int
	originY        int
}

func newProjection(width, height int) projection {
	usable := float64(height - floorRow - 1)
	scaleY := usable / viewHeight
	scaleX := 2 * scaleY // Cells are roughly twice as tall as wide
	if scaleX*viewWidth > float64(width-1) {
		scaleX = float64(width-1) / viewWidth
		scaleY = scaleX / 2
	}
	return projection{
		scaleX:  scaleX,
		scaleY:  scaleY,
		originX: width / 2,
		originY: height - floorRow,
	}
}

func (p projection) cell(v mgl64.Vec3) (int, int) {
	x := p.originX + int(math.Round(v.X()*p.scaleX))
	y := p.originY - int(math.Round(v.Y()*p.scaleY))
	return x, y
}

// draw renders f onto cw; cells outside the screen are skipped
func draw(cw cellWriter, f Frame) {
	w, h := cw.Size()
	if w <= 0 || h <= floorRow+1 {
		return
	}
	p := newProjection(w, h)

	for x := 0; x < w; x++ {
		put(cw, x, p.originY, '─', styleFloor)
	}

	for _, b := range f.Bones {
		if b.HasParent {
			x0, y0 := p.cell(b.Parent)
			x1, y1 := p.cell(b.Position)
			line(cw, x0, y0, x1, y1, styleLimb)
		}
	}
	for _, b := range f.Bones {
		x, y := p.cell(b.Position)
		put(cw, x, y, 'o', writerStyles[b.Writer])
	}

	tx, ty := p.cell(f.Target)
	put(cw, tx, ty, '+', styleTarget)

	text(cw, 0, 0, statusLine(f), styleText)
	applied := "none"
	if len(f.Applied) > 0 {
		applied = strings.Join(f.Applied, ", ")
	}
	text(cw, 0, 1, "applied: "+applied, styleActive)
	text(cw, 0, h-1, helpLine, styleDim)
}

func statusLine(f Frame) string {
	poseState := "off"
	if f.PoseOn {
		poseState = "on"
	}
	anim := "no animators"
	if f.Animator != "" {
		anim = fmt.Sprintf("animator %s (%s) %s", f.Animator, f.Mode, poseState)
	}
	line := fmt.Sprintf("frame %d | %s | conflicts %d | errors %d",
		f.FrameNo, anim,
		f.Metrics[status.KeyConflicts],
		f.Metrics[status.KeyTrackerErrors]+f.Metrics[status.KeyPoseErrors])
	if f.Paused {
		line += " | paused"
	}
	return line
}

func put(cw cellWriter, x, y int, r rune, style tcell.Style) {
	w, h := cw.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	cw.SetContent(x, y, r, nil, style)
}

func text(cw cellWriter, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		put(cw, x+i, y, r, style)
	}
}

// line draws a DDA segment, leaving endpoints to the bone markers
func line(cw cellWriter, x0, y0, x1, y1 int, style tcell.Style) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(float64(dx)*t))
		y := y0 + int(math.Round(float64(dy)*t))
		put(cw, x, y, '·', style)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
