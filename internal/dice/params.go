package dice

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/config"
)

const (
	PosStep   = 0.5
	ForceStep = 100.0
	SpinStep  = 0.1
)

// Params are the drop parameters adjusted from the keyboard.
type Params struct {
	PosX, PosY, PosZ       float64
	ForceX, ForceY, ForceZ float64
	Spin                   float64
	FrameGap               int
}

func ParamsFrom(d config.DropConfig) Params {
	p := Params{
		PosX:     d.X,
		PosY:     d.Y,
		PosZ:     d.Z,
		ForceX:   d.ForceX,
		ForceY:   d.ForceY,
		ForceZ:   d.ForceZ,
		Spin:     d.Spin,
		FrameGap: d.FrameGap,
	}
	if p.FrameGap < 1 {
		p.FrameGap = 1
	}
	return p
}

func (p Params) Origin() mgl64.Vec3 { return mgl64.Vec3{p.PosX, p.PosY, p.PosZ} }
func (p Params) Throw() mgl64.Vec3  { return mgl64.Vec3{p.ForceX, p.ForceY, p.ForceZ} }

// HUD returns the parameter lines shown next to the viewport, each with the
// keys that change it.
func (p Params) HUD() []string {
	return []string{
		fmt.Sprintf("origin: %.1f %.1f %.1f (az sx dc)", p.PosX, p.PosY, p.PosZ),
		fmt.Sprintf("throw: %.0f %.0f %.0f (fv gb hn)", p.ForceX, p.ForceY, p.ForceZ),
		fmt.Sprintf("spin: %.1f (jm)", p.Spin),
		fmt.Sprintf("dice gap: %d (k,)", p.FrameGap),
	}
}
