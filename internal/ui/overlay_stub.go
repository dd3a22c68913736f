//go:build !ebiten

package ui

import (
	"flashsync/internal/core"
	"flashsync/internal/render"
)

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(core.Sim, *render.GlowField, int) *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// GlowMask always reports no glow in headless builds.
func (o *Overlay) GlowMask() []float32 { return nil }

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}
