package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/dice"
)

var ErrNoRun = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	posesFile    = "poses.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Preset    string             `json:"preset,omitempty"`
	Dice      int                `json:"dice"`
	DieSize   float64            `json:"die_size,omitempty"`
	Frames    int                `json:"frames"`
	Dt        float64            `json:"dt"`
	Params    dice.Params        `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Energy    []float64          `json:"energy"`
}

// Pose is one die at one frame.
type Pose struct {
	Frame    int
	Die      int
	Position [3]float64
	Rotation [9]float64 // row major
}

// Recorder collects poses and the total kinetic energy of every frame. Its
// Observe method fits dice.Scene.Run.
type Recorder struct {
	Stride int
	Poses  []Pose
	Energy []float64
	Frames int
}

func (r *Recorder) Observe(frame int, d []dice.Die) {
	r.Frames = frame
	var e float64
	for _, die := range d {
		e += die.Energy
	}
	r.Energy = append(r.Energy, e)
	if r.Stride > 1 && frame%r.Stride != 0 {
		return
	}
	for i, die := range d {
		p := Pose{Frame: frame, Die: i, Position: die.Position}
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				p.Rotation[row*3+col] = die.Rotation.At(row, col)
			}
		}
		r.Poses = append(r.Poses, p)
	}
}

func (s *Store) Save(meta RunMetadata, poses []Pose) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("dice_%d", meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, posesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := []string{"frame", "die", "x", "y", "z"}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			header = append(header, fmt.Sprintf("r%d%d", row, col))
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, p := range poses {
		row := []string{strconv.Itoa(p.Frame), strconv.Itoa(p.Die)}
		for _, v := range p.Position {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range p.Rotation {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write poses: %w", err)
	}

	return meta.ID, nil
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadPoses(runID string) ([]Pose, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, posesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Pose{}, nil
	}

	poses := make([]Pose, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 14 {
			return nil, fmt.Errorf("poses line %d: expected 14 fields, got %d", i+2, len(record))
		}
		var p Pose
		if p.Frame, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("poses line %d: %w", i+2, err)
		}
		if p.Die, err = strconv.Atoi(record[1]); err != nil {
			return nil, fmt.Errorf("poses line %d: %w", i+2, err)
		}
		vals := make([]float64, 12)
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+2], 64); err != nil {
				return nil, fmt.Errorf("poses line %d: %w", i+2, err)
			}
		}
		copy(p.Position[:], vals[:3])
		copy(p.Rotation[:], vals[3:])
		poses = append(poses, p)
	}

	return poses, nil
}

// PoseDice rebuilds dice snapshots from recorded poses, each a cube with
// the given edge length.
func PoseDice(poses []Pose, size float64) []dice.Die {
	out := make([]dice.Die, len(poses))
	for i, p := range poses {
		r := p.Rotation
		out[i] = dice.Die{
			Position: mgl64.Vec3(p.Position),
			Rotation: mgl64.Mat3FromRows(
				mgl64.Vec3{r[0], r[1], r[2]},
				mgl64.Vec3{r[3], r[4], r[5]},
				mgl64.Vec3{r[6], r[7], r[8]},
			),
			Size: mgl64.Vec3{size, size, size},
		}
	}
	return out
}

// FramePoses returns the poses recorded for one frame.
func FramePoses(poses []Pose, frame int) []Pose {
	var out []Pose
	for _, p := range poses {
		if p.Frame == frame {
			out = append(out, p)
		}
	}
	return out
}
