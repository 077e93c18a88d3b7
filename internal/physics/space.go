package physics

// NearCallback is invoked by Space.Collide once per candidate geom pair.
// It typically calls Collide on the pair and creates contact joints.
type NearCallback func(g1, g2 Geom)

// Space is a flat collection of geoms with an all-pairs bounding box
// broad phase.
type Space struct {
	geoms []Geom
}

func NewSpace() *Space { return &Space{} }

func (s *Space) Len() int      { return len(s.geoms) }
func (s *Space) Geoms() []Geom { return s.geoms }

// Add inserts g into the space. Geoms already in another space are moved.
func (s *Space) Add(g Geom) {
	if cur := g.Space(); cur == s {
		return
	} else if cur != nil {
		cur.Remove(g)
	}
	switch t := g.(type) {
	case *Plane:
		t.space = s
	case *Box:
		t.space = s
	}
	s.geoms = append(s.geoms, g)
}

// Remove takes g out of the space.
func (s *Space) Remove(g Geom) {
	for i, o := range s.geoms {
		if o == g {
			s.geoms = append(s.geoms[:i], s.geoms[i+1:]...)
			g.detach()
			return
		}
	}
}

// Collide runs the broad phase and calls fn for every pair of geoms whose
// bounding boxes overlap. Pairs where neither geom has a body, or both share
// a body, are never reported.
func (s *Space) Collide(fn NearCallback) {
	n := len(s.geoms)
	boxes := make([]AABB, n)
	for i, g := range s.geoms {
		boxes[i] = g.AABB()
	}
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			g1, g2 := s.geoms[i], s.geoms[k]
			b1, b2 := g1.Body(), g2.Body()
			if b1 == nil && b2 == nil {
				continue
			}
			if b1 == b2 {
				continue
			}
			if !boxes[i].Overlaps(boxes[k]) {
				continue
			}
			fn(g1, g2)
		}
	}
}
