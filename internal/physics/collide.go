package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxContacts bounds the contacts generated for one geom pair.
const DefaultMaxContacts = 8

// ContactGeom is a single point of contact between two geoms. Normal points
// from G2 toward G1: moving G1 along Normal by Depth separates the pair.
type ContactGeom struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	G1, G2 Geom
}

// Collide runs the narrow phase on a pair of geoms and returns up to max
// contact points, deepest first. Unsupported pairs produce no contacts.
func Collide(g1, g2 Geom, max int) []ContactGeom {
	if max <= 0 {
		max = DefaultMaxContacts
	}
	var out []ContactGeom
	switch a := g1.(type) {
	case *Box:
		switch b := g2.(type) {
		case *Plane:
			out = collideBoxPlane(a, b)
		case *Box:
			out = collideBoxBox(a, b)
		}
	case *Plane:
		if b, ok := g2.(*Box); ok {
			out = collideBoxPlane(b, a)
			for i := range out {
				out[i].Normal = out[i].Normal.Mul(-1)
			}
		}
	}
	for i := range out {
		out[i].G1, out[i].G2 = g1, g2
	}
	return deepest(out, max)
}

func deepest(cs []ContactGeom, max int) []ContactGeom {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Depth > cs[j].Depth })
	if len(cs) > max {
		cs = cs[:max]
	}
	return cs
}

func collideBoxPlane(box *Box, plane *Plane) []ContactGeom {
	var out []ContactGeom
	n, _ := plane.Params()
	for _, v := range box.Vertices() {
		if depth := plane.PointDepth(v); depth >= 0 {
			out = append(out, ContactGeom{Pos: v, Normal: n, Depth: depth})
		}
	}
	return out
}

const axisEpsilon = 1e-6

// boxFrame is a box reduced to what the separating axis test needs.
type boxFrame struct {
	c    mgl64.Vec3
	axes [3]mgl64.Vec3
	h    mgl64.Vec3
}

func frameOf(b *Box) boxFrame {
	r := b.Rotation()
	return boxFrame{c: b.Position(), axes: [3]mgl64.Vec3{r.Col(0), r.Col(1), r.Col(2)}, h: b.halfExtents()}
}

func (f boxFrame) radius(l mgl64.Vec3) float64 {
	return f.h[0]*math.Abs(f.axes[0].Dot(l)) + f.h[1]*math.Abs(f.axes[1].Dot(l)) + f.h[2]*math.Abs(f.axes[2].Dot(l))
}

func (f boxFrame) contains(p mgl64.Vec3, tol float64) bool {
	d := p.Sub(f.c)
	for i := 0; i < 3; i++ {
		if math.Abs(d.Dot(f.axes[i])) > f.h[i]+tol {
			return false
		}
	}
	return true
}

// supportEdge returns the center of the box edge parallel to axis k that is
// furthest along dir.
func (f boxFrame) supportEdge(k int, dir mgl64.Vec3) mgl64.Vec3 {
	p := f.c
	for i := 0; i < 3; i++ {
		if i == k {
			continue
		}
		s := f.h[i]
		if f.axes[i].Dot(dir) < 0 {
			s = -s
		}
		p = p.Add(f.axes[i].Mul(s))
	}
	return p
}

type satAxis struct {
	dir     mgl64.Vec3
	overlap float64
	edgeA   int
	edgeB   int
}

// collideBoxBox is a separating axis test over the 15 candidate axes of two
// boxes. Face axes produce the vertices of each box found inside the other;
// edge axes produce the midpoint of the closest points of the two edges.
func collideBoxBox(a, b *Box) []ContactGeom {
	fa, fb := frameOf(a), frameOf(b)
	t := fa.c.Sub(fb.c)

	best := satAxis{overlap: math.Inf(1), edgeA: -1, edgeB: -1}
	test := func(l mgl64.Vec3, ea, eb int) bool {
		overlap := fa.radius(l) + fb.radius(l) - math.Abs(t.Dot(l))
		if overlap < 0 {
			return false
		}
		if t.Dot(l) < 0 {
			l = l.Mul(-1)
		}
		edge := ea >= 0
		// favour face axes over nearly equal edge axes to keep contacts stable
		if edge && overlap > best.overlap*0.95-1e-4 {
			return true
		}
		if !edge && overlap >= best.overlap {
			return true
		}
		best = satAxis{dir: l, overlap: overlap, edgeA: ea, edgeB: eb}
		return true
	}
	for i := 0; i < 3; i++ {
		if !test(fa.axes[i], -1, -1) || !test(fb.axes[i], -1, -1) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			l := fa.axes[i].Cross(fb.axes[k])
			if l.Len() < axisEpsilon {
				continue
			}
			if !test(l.Normalize(), i, k) {
				return nil
			}
		}
	}

	n := best.dir
	if best.edgeA >= 0 {
		pa := fa.supportEdge(best.edgeA, n.Mul(-1))
		pb := fb.supportEdge(best.edgeB, n)
		ca, cb := closestOnLines(pa, fa.axes[best.edgeA], fa.h[best.edgeA], pb, fb.axes[best.edgeB], fb.h[best.edgeB])
		return []ContactGeom{{Pos: ca.Add(cb).Mul(0.5), Normal: n, Depth: best.overlap}}
	}

	const tol = 1e-5
	minA := fa.c.Dot(n) - fa.radius(n)
	maxB := fb.c.Dot(n) + fb.radius(n)
	var out []ContactGeom
	for _, v := range b.Vertices() {
		if fa.contains(v, tol) {
			out = append(out, ContactGeom{Pos: v, Normal: n, Depth: clamp(v.Dot(n)-minA, 0, best.overlap)})
		}
	}
	for _, v := range a.Vertices() {
		if fb.contains(v, tol) {
			out = append(out, ContactGeom{Pos: v, Normal: n, Depth: clamp(maxB-v.Dot(n), 0, best.overlap)})
		}
	}
	if len(out) == 0 {
		// edge-on-face contact with no vertex inside: use the deepest point of b
		p := fb.c
		for i := 0; i < 3; i++ {
			s := fb.h[i]
			if fb.axes[i].Dot(n) < 0 {
				s = -s
			}
			p = p.Add(fb.axes[i].Mul(s))
		}
		out = append(out, ContactGeom{Pos: p.Sub(n.Mul(best.overlap * 0.5)), Normal: n, Depth: best.overlap})
	}
	return out
}

// closestOnLines returns the closest points between segments
// pa +/- da*ha and pb +/- db*hb.
func closestOnLines(pa, da mgl64.Vec3, ha float64, pb, db mgl64.Vec3, hb float64) (mgl64.Vec3, mgl64.Vec3) {
	r := pa.Sub(pb)
	b := da.Dot(db)
	c := da.Dot(r)
	f := db.Dot(r)
	denom := 1 - b*b
	s := 0.0
	if denom > axisEpsilon {
		s = clamp((b*f-c)/denom, -ha, ha)
	}
	u := clamp(b*s+f, -hb, hb)
	s = clamp(b*u-c, -ha, ha)
	return pa.Add(da.Mul(s)), pb.Add(db.Mul(u))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
