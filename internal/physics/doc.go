// Package physics is a small rigid-body engine for boxes resting on planes
// and on each other.
//
// The API follows the classic world/space split:
//
//   - [World]: owns [Body] values and contact joints, advances time with [World.Step]
//   - [Space]: owns collision geoms ([Plane], [Box]) and runs the broad phase
//   - [Collide]: narrow phase for one geom pair, returning [ContactGeom] points
//   - [ContactJoint]: one-step constraint built from a contact point
//   - [JointGroup]: destroys all contact joints of a step at once
//
// # Step Loop
//
// A typical frame detects collisions, steps, and drops the contact joints:
//
//	space.Collide(func(g1, g2 physics.Geom) {
//	    for _, c := range physics.Collide(g1, g2, 0) {
//	        j := world.NewContactJoint(group, physics.Contact{Geom: c, Surface: surface})
//	        j.Attach(g1.Body(), g2.Body())
//	    }
//	})
//	world.Step(dt)
//	group.Empty()
//
// Contact joints are solved with sequential impulses. ERP controls how much
// penetration is removed per step and CFM softens the constraints.
package physics
