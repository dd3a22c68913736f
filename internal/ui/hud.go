//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"flashsync/internal/core"
	"flashsync/pkg/firefly"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type statePalette interface {
	Palette() []color.RGBA
}

var (
	colTitle   = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	colText    = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	colDim     = color.RGBA{R: 150, G: 150, B: 160, A: 255}
	colAccent  = color.RGBA{R: 236, G: 220, B: 120, A: 255}
	colTrack   = color.RGBA{R: 40, G: 40, B: 50, A: 255}
	colBeat    = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	colPanelBg = color.RGBA{R: 16, G: 16, B: 20, A: 255}
)

// HUD renders the swarm panel to the right of the field: a live readout of
// the sync state, the state census, the tunable controls and the swarm
// action buttons.
type HUD struct {
	sim     core.Sim
	width   int
	panel   *ebiten.Image
	pixel   *ebiten.Image
	readout Readout

	stateColors [len(firefly.States)]color.RGBA
	controls    []controlRow
	actions     []actionButton
	setInt      core.IntParameterSetter
	setFloat    core.FloatParameterSetter

	panelOffsetX int
	syncEvery    int
}

type controlRow struct {
	control core.ParameterControl
	value   float64
	known   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

type actionButton struct {
	label func(Readout) string
	rect  image.Rectangle
	run   func()
}

// NewHUD constructs a HUD for sim with a panel width pixels wide.
func NewHUD(sim core.Sim, width int) *HUD {
	h := &HUD{sim: sim, width: max(width, 0), syncEvery: 2}
	if h.width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	for i := range h.stateColors {
		h.stateColors[i] = colDim
	}
	if p, ok := sim.(statePalette); ok {
		pal := p.Palette()
		// display value 1+state encodes each firefly state
		for i := range h.stateColors {
			if i+1 < len(pal) {
				h.stateColors[i] = pal[i+1]
			}
		}
	}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			h.controls = append(h.controls, controlRow{control: ctrl})
		}
	}
	h.setInt, _ = sim.(core.IntParameterSetter)
	h.setFloat, _ = sim.(core.FloatParameterSetter)
	if acts, ok := sim.(SwarmActions); ok {
		h.actions = []actionButton{
			{
				label: func(Readout) string { return "De-phase" },
				run:   acts.DePhaseAll,
			},
			{
				label: func(r Readout) string {
					if r.HeartbeatSync {
						return "Free run"
					}
					return fmt.Sprintf("Sync to heartbeat 1/%d", h.syncEvery)
				},
				run: func() { ToggleHeartbeatSync(acts, h.syncEvery) },
			},
		}
	}
	h.layout()
	return h
}

// Update refreshes the readout and handles clicks on the panel.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.readout = readSwarm(h.sim)
	h.refreshControls()
	h.handleInput()
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	height := h.sim.Size().H * max(scale, 1)
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(colPanelBg)
	h.drawReadout()
	h.drawControls()
	h.drawActions()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) refreshControls() {
	provider, ok := h.sim.(core.ParameterProvider)
	if !ok {
		return
	}
	snap := provider.Parameters()
	for i := range h.controls {
		row := &h.controls[i]
		row.known = false
		param, ok := snap.Find(row.control.Key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			continue
		}
		row.value, row.known = v, true
	}
}

func (h *HUD) handleInput() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		row := &h.controls[i]
		switch {
		case pointInRect(px, my, row.minusRect):
			h.adjust(row, -1)
			return
		case pointInRect(px, my, row.plusRect):
			h.adjust(row, 1)
			return
		}
	}
	for _, a := range h.actions {
		if pointInRect(px, my, a.rect) {
			a.run()
			return
		}
	}
}

func (h *HUD) adjust(row *controlRow, direction int) {
	if !row.known {
		return
	}
	target, changed := stepControl(row.control, row.value, direction)
	if !changed {
		return
	}
	var ok bool
	switch row.control.Type {
	case core.ParamTypeInt:
		ok = h.setInt != nil && h.setInt.SetIntParameter(row.control.Key, int(target))
	case core.ParamTypeFloat:
		ok = h.setFloat != nil && h.setFloat.SetFloatParameter(row.control.Key, target)
	}
	if ok {
		row.value = target
	}
}

func (h *HUD) settable(row *controlRow, direction int) bool {
	if !row.known {
		return false
	}
	if row.control.Type == core.ParamTypeInt && h.setInt == nil {
		return false
	}
	if row.control.Type == core.ParamTypeFloat && h.setFloat == nil {
		return false
	}
	_, changed := stepControl(row.control, row.value, direction)
	return changed
}

func (h *HUD) drawReadout() {
	face := basicfont.Face7x13
	r := h.readout
	y := panelPadding + headerBaseline
	text.Draw(h.panel, r.Title, face, panelPadding, y, colTitle)
	if r.Total == 0 {
		text.Draw(h.panel, "No swarm attached", face, panelPadding, y+rowHeight, colDim)
		return
	}

	y += rowHeight
	text.Draw(h.panel, r.Clock, face, panelPadding, y, colText)
	y += rowHeight
	text.Draw(h.panel, r.Mode, face, panelPadding, y, colAccent)

	// order bar with the heartbeat lamp at its end
	y += barGap
	barW := h.width - 2*panelPadding - lampSize - barGap
	h.fillRect(image.Rect(panelPadding, y, panelPadding+barW, y+barHeight), colTrack)
	h.fillRect(image.Rect(panelPadding, y, panelPadding+int(float64(barW)*r.Order), y+barHeight), meterColor(r.Order))
	lamp := colTrack
	if r.Heartbeat {
		lamp = colBeat
	}
	h.fillRect(image.Rect(h.width-panelPadding-lampSize, y-1, h.width-panelPadding, y-1+lampSize), lamp)
	y += barHeight + rowHeight
	text.Draw(h.panel, fmt.Sprintf("order %.3f", r.Order), face, panelPadding, y, colText)

	// census bars scaled to the swarm size
	for i, st := range firefly.States {
		y += rowHeight
		n := r.Census[i]
		text.Draw(h.panel, fmt.Sprintf("%-8s %4d", st, n), face, panelPadding, y, colText)
		left := panelPadding + censusLabelWidth
		w := (h.width - panelPadding - left) * n / r.Total
		h.fillRect(image.Rect(left, y-barHeight-3, left+w, y-3), h.stateColors[i])
	}
	y += rowHeight
	text.Draw(h.panel, fmt.Sprintf("mean threshold %.3f", r.MeanThreshold), face, panelPadding, y, colDim)
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	for i := range h.controls {
		row := &h.controls[i]
		labelY := row.top + labelBaseline
		text.Draw(h.panel, row.control.Label, face, panelPadding, labelY, colText)
		value, col := "--", colDim
		if row.known {
			value, col = formatControl(row.control, row.value), colText
		}
		valueX := row.minusRect.Min.X - buttonGap - text.BoundString(face, value).Dx()
		text.Draw(h.panel, value, face, valueX, labelY, col)
		h.drawButton(row.minusRect, "-", h.settable(row, -1))
		h.drawButton(row.plusRect, "+", h.settable(row, 1))
	}
}

func (h *HUD) drawActions() {
	for _, a := range h.actions {
		h.drawButton(a.rect, a.label(h.readout), true)
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg, fg := color.RGBA{R: 54, G: 56, B: 64, A: 255}, color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg, fg = color.RGBA{R: 32, G: 34, B: 40, A: 255}, color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	h.fillRect(rect, bg)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) fillRect(rect image.Rectangle, col color.RGBA) {
	if h.pixel == nil || rect.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	h.panel.DrawImage(h.pixel, op)
}

// layout places the controls below the readout and the action buttons below
// the controls.
func (h *HUD) layout() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minus
		h.controls[i].plusRect = plus
	}
	top := controlsTop + len(h.controls)*lineHeight + buttonGap
	for i := range h.actions {
		y := top + i*(buttonSize+buttonGap)
		h.actions[i].rect = image.Rect(panelPadding, y, h.width-panelPadding, y+buttonSize)
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

const (
	panelPadding     = 12
	headerBaseline   = 18
	rowHeight        = 16
	barGap           = 8
	barHeight        = 6
	lampSize         = 8
	censusLabelWidth = 104
	lineHeight       = 36
	buttonSize       = 24
	buttonGap        = 6
	labelBaseline    = 24

	// title, clock, mode, bar, order, four census rows and the threshold line
	readoutHeight = headerBaseline + barGap + barHeight + 8*rowHeight
	controlsTop   = panelPadding + readoutHeight + barGap
)
