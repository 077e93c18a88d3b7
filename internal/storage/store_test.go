package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/dice"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{Stride: 2}
	die := dice.Die{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.Mat3FromRows(mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}),
		Energy:   1.5,
	}
	r.Observe(1, []dice.Die{die})
	r.Observe(2, []dice.Die{die, die})

	if len(r.Energy) != 2 || r.Energy[1] != 3 {
		t.Errorf("unexpected energy series %v", r.Energy)
	}
	if len(r.Poses) != 2 {
		t.Fatalf("expected poses of frame 2 only, got %d", len(r.Poses))
	}
	if r.Poses[1].Die != 1 || r.Poses[1].Frame != 2 {
		t.Errorf("unexpected pose %+v", r.Poses[1])
	}
	if r.Poses[0].Rotation[2] != -1 || r.Poses[0].Rotation[6] != 1 {
		t.Errorf("rotation should be row major, got %v", r.Poses[0].Rotation)
	}
	if r.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", r.Frames)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Preset:  "classic",
		Dice:    6,
		DieSize: 0.3,
		Frames:  2,
		Dt:      1.0 / 60,
		Params:  dice.Params{PosY: 5, ForceX: 1000, Spin: 1.1, FrameGap: 20},
		Metrics: map[string]float64{"peak_height": 5},
		Energy:  []float64{0, 0.5},
	}
	poses := []Pose{
		{Frame: 1, Die: 0, Position: [3]float64{0, 5, 0}, Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}},
		{Frame: 2, Die: 0, Position: [3]float64{0.01, 4.99, 0}, Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}},
	}

	runID, err := st.Save(meta, poses)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Dice != 6 || loaded.DieSize != 0.3 || loaded.Params.FrameGap != 20 || loaded.Metrics["peak_height"] != 5 {
		t.Errorf("metadata mismatch: %+v", loaded)
	}

	got, err := st.LoadPoses(runID)
	if err != nil {
		t.Fatalf("load poses failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 poses, got %d", len(got))
	}
	if math.Abs(got[1].Position[1]-4.99) > 1e-6 || got[1].Rotation[4] != 1 {
		t.Errorf("pose mismatch: %+v", got[1])
	}
	if f := FramePoses(got, 2); len(f) != 1 || f[0].Frame != 2 {
		t.Errorf("unexpected frame poses %+v", f)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "a"} {
		if _, err := st.Save(RunMetadata{ID: id, Timestamp: base.Add(time.Duration(i) * time.Minute)}, nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "b" {
		t.Errorf("expected runs ordered by time, got %+v", runs)
	}
}

func TestStoreMissing(t *testing.T) {
	st := New(t.TempDir() + "/nothing")
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
	if _, err := st.Load("nope"); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
	if _, err := st.LoadPoses("nope"); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "run", Dice: 1}
	if err := ExportJSON(&buf, meta, []Pose{{Frame: 3}}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != "run" || len(got.Poses) != 1 || got.Poses[0].Frame != 3 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestPoseDice(t *testing.T) {
	rot := mgl64.Mat3FromRows(mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0})
	r := &Recorder{}
	r.Observe(4, []dice.Die{{Position: mgl64.Vec3{1, 2, 3}, Rotation: rot}})

	got := PoseDice(r.Poses, 0.3)
	if len(got) != 1 {
		t.Fatalf("expected 1 die, got %d", len(got))
	}
	if got[0].Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position mismatch: %v", got[0].Position)
	}
	if got[0].Rotation != rot {
		t.Errorf("rotation mismatch:\n%v\n%v", got[0].Rotation, rot)
	}
	if got[0].Size != (mgl64.Vec3{0.3, 0.3, 0.3}) {
		t.Errorf("size mismatch: %v", got[0].Size)
	}
}
