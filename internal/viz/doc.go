// Package viz is the terminal viewport of the dice scene.
//
// Dice are drawn as wireframes on a Braille [Canvas] through a perspective
// [Camera]; the projection is rebuilt whenever the terminal is resized. The
// bubbletea [Model] advances the scene on a 20 ms tick and shows the drop
// parameters, phase and a kinetic energy chart beside the canvas.
//
// # Key Bindings
//
// The drop keys (a/z s/x d/c f/v g/b h/n j/m k/, r q) go to the scene.
// The viewport adds:
//
//	Space  - Pause/Resume
//	Arrows - Orbit the camera
//	+/-    - Zoom
//	G      - Toggle the floor grid
//	T      - Cycle color themes
//	?      - Show help
package viz
