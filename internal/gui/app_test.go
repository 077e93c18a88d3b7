package gui

import (
	"testing"

	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/logger"
	"github.com/san-kum/dicesim/internal/viz"
)

func TestResizeKeepsCamera(t *testing.T) {
	view := config.DefaultConfig().View
	a := &App{View: viz.NewCamera(view), Log: logger.Discard()}
	a.syncCamera()
	before := a.Camera
	aspect := a.View.Aspect

	a.resize(800, 450)

	if a.width != 800 || a.height != 450 {
		t.Errorf("expected 800x450, got %dx%d", a.width, a.height)
	}
	if a.Camera != before {
		t.Errorf("camera changed on resize: %+v -> %+v", before, a.Camera)
	}
	if a.View.Aspect != aspect {
		t.Errorf("aspect changed on resize: %f -> %f", aspect, a.View.Aspect)
	}
}

func TestSyncCameraFollowsOrbit(t *testing.T) {
	view := config.DefaultConfig().View
	a := &App{View: viz.NewCamera(view), Log: logger.Discard()}
	a.syncCamera()

	if got := a.Camera.Fovy; got != float32(view.FOV) {
		t.Errorf("fovy: got %f, want %f", got, view.FOV)
	}
	if a.Camera.Position.Y != float32(view.Eye[1]) {
		t.Errorf("eye height: got %f, want %f", a.Camera.Position.Y, view.Eye[1])
	}

	a.View.Orbit(0.5, 0)
	a.syncCamera()
	e := a.View.Eye
	if a.Camera.Position.X != float32(e.X()) || a.Camera.Position.Z != float32(e.Z()) {
		t.Errorf("camera did not follow orbit: %+v vs %v", a.Camera.Position, e)
	}
	if a.Camera.Target.X != float32(view.Target[0]) {
		t.Errorf("target moved: %+v", a.Camera.Target)
	}
}
