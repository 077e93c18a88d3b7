package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Poses []Pose `json:"poses"`
}

// ExportJSON writes a run and its poses as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, poses []Pose) error {
	if poses == nil {
		poses = []Pose{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: meta, Poses: poses})
}
