package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
)

// Camera is a perspective camera looking from Eye at Target. The
// projection depends on the viewport aspect and is rebuilt by Resize.
type Camera struct {
	Eye, Target, Up mgl64.Vec3
	FOV             float64 // vertical, degrees
	Near, Far       float64
	Aspect          float64

	proj, view mgl64.Mat4
}

func NewCamera(v config.ViewConfig) *Camera {
	c := &Camera{
		Eye:    mgl64.Vec3(v.Eye),
		Target: mgl64.Vec3(v.Target),
		Up:     mgl64.Vec3{0, 1, 0},
		FOV:    v.FOV,
		Near:   v.Near,
		Far:    v.Far,
		Aspect: float64(v.Width) / float64(v.Height),
	}
	c.update()
	return c
}

func (c *Camera) update() {
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	c.view = mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 { return c.proj }
func (c *Camera) View() mgl64.Mat4       { return c.view }

// Resize recomputes the projection for a w x h viewport.
func (c *Camera) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	c.Aspect = float64(w) / float64(h)
	c.update()
}

// Orbit swings the eye around the target: yaw about the vertical axis,
// pitch toward or away from the poles.
func (c *Camera) Orbit(yaw, pitch float64) {
	off := c.Eye.Sub(c.Target)
	r := off.Len()
	if r == 0 {
		return
	}
	el := math.Asin(mgl64.Clamp(off.Y()/r, -1, 1)) + pitch
	el = mgl64.Clamp(el, -1.5, 1.5)
	az := math.Atan2(off.X(), off.Z()) + yaw
	c.Eye = c.Target.Add(mgl64.Vec3{
		r * math.Cos(el) * math.Sin(az),
		r * math.Sin(el),
		r * math.Cos(el) * math.Cos(az),
	})
	c.update()
}

// Dolly scales the eye distance from the target.
func (c *Camera) Dolly(f float64) {
	if f <= 0 {
		return
	}
	c.Eye = c.Target.Add(c.Eye.Sub(c.Target).Mul(f))
	c.update()
}

func (c *Camera) toView(p mgl64.Vec3) mgl64.Vec3 {
	return c.view.Mul4x1(p.Vec4(1)).Vec3()
}

func (c *Camera) toScreen(v mgl64.Vec3, sw, sh int) (float64, float64) {
	clip := c.proj.Mul4x1(v.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	return (ndc.X() + 1) / 2 * float64(sw), (1 - ndc.Y()) / 2 * float64(sh)
}

// Project maps a world point to screen coordinates. ok is false for points
// behind the near plane or outside the viewport.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	v := c.toView(p)
	if -v.Z() < c.Near {
		return 0, 0, 0, false
	}
	fx, fy := c.toScreen(v, sw, sh)
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, -v.Z(), x >= 0 && x < sw && y >= 0 && y < sh
}

// ProjectSegment maps a world segment to screen space, cutting it at the
// near plane. ok is false when the whole segment is behind the camera.
func (c *Camera) ProjectSegment(a, b mgl64.Vec3, sw, sh int) (x0, y0, x1, y1 float64, ok bool) {
	va, vb := c.toView(a), c.toView(b)
	za, zb := -va.Z(), -vb.Z()
	if za < c.Near && zb < c.Near {
		return 0, 0, 0, 0, false
	}
	if za < c.Near {
		va = va.Add(vb.Sub(va).Mul((c.Near - za) / (zb - za)))
	} else if zb < c.Near {
		vb = vb.Add(va.Sub(vb).Mul((c.Near - zb) / (za - zb)))
	}
	x0, y0 = c.toScreen(va, sw, sh)
	x1, y1 = c.toScreen(vb, sw, sh)
	return x0, y0, x1, y1, true
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0, 128)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// BoxVertices returns the corners of a box; bit k of the index selects the
// positive side along axis k.
func BoxVertices(pos mgl64.Vec3, rot mgl64.Mat3, size mgl64.Vec3) [8]mgl64.Vec3 {
	var v [8]mgl64.Vec3
	h := size.Mul(0.5)
	for i := range v {
		local := mgl64.Vec3{-h.X(), -h.Y(), -h.Z()}
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				local[k] = h[k]
			}
		}
		v[i] = pos.Add(rot.Mul3x1(local))
	}
	return v
}

// BoxEdges lists the vertex pairs of BoxVertices that form the 12 edges.
var BoxEdges = func() [12][2]int {
	var e [12][2]int
	n := 0
	for i := 0; i < 8; i++ {
		for k := 0; k < 3; k++ {
			if i&(1<<k) == 0 {
				e[n] = [2]int{i, i | 1<<k}
				n++
			}
		}
	}
	return e
}()

func (w *Wireframe) AddBox(pos mgl64.Vec3, rot mgl64.Mat3, size mgl64.Vec3) {
	v := BoxVertices(pos, rot, size)
	for _, e := range BoxEdges {
		w.AddEdge(v[e[0]], v[e[1]])
	}
}

// AddGrid adds a square grid on the y = 0 floor centred under center.
func (w *Wireframe) AddGrid(center mgl64.Vec3, extent, step float64) {
	if step <= 0 {
		return
	}
	n := int(extent / step)
	for i := -n; i <= n; i++ {
		o := float64(i) * step
		w.AddEdge(mgl64.Vec3{center.X() + o, 0, center.Z() - extent}, mgl64.Vec3{center.X() + o, 0, center.Z() + extent})
		w.AddEdge(mgl64.Vec3{center.X() - extent, 0, center.Z() + o}, mgl64.Vec3{center.X() + extent, 0, center.Z() + o})
	}
}

// DiceWireframe builds the edges of every die.
func DiceWireframe(d []dice.Die) *Wireframe {
	w := NewWireframe()
	for _, die := range d {
		w.AddBox(die.Position, die.Rotation, die.Size)
	}
	return w
}

// Render3D draws the wireframe onto the canvas through cam.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.SubWidth(), c.SubHeight()
	for _, e := range w.Edges {
		x0, y0, x1, y1, ok := cam.ProjectSegment(e.Start, e.End, sw, sh)
		if !ok {
			continue
		}
		fx0, fy0, fx1, fy1, ok := clipLine(x0, y0, x1, y1, 0, 0, float64(sw-1), float64(sh-1))
		if !ok {
			continue
		}
		c.DrawLine(round(fx0), round(fy0), round(fx1), round(fy1))
	}
}
