package model

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactKind identifies a file written during a run.
type ArtifactKind string

const (
	// ArtifactPanel is the 2x2 performance panel image.
	ArtifactPanel ArtifactKind = "panel"

	// ArtifactCollisions is the collision chart image.
	ArtifactCollisions ArtifactKind = "collisions"

	// ArtifactWorkbook is the XLSX export of the augmented table.
	ArtifactWorkbook ArtifactKind = "workbook"
)

// Artifact is a file written during a run.
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}

// Run is the state carried through one pipeline execution.
// Each step reads what earlier steps produced and adds its own result.
type Run struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"run_id"`

	// InputPath is the CSV file the run reads.
	InputPath string `json:"input_path"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// Table is set by the load step and augmented by the derive step.
	Table *Table `json:"-"`

	// Summary is set by the summarize step.
	Summary *Summary `json:"summary,omitempty"`

	// Artifacts lists the files written, in write order.
	Artifacts []Artifact `json:"artifacts,omitempty"`

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error rendered as text for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a run for the given input file.
func NewRun(inputPath string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		InputPath: inputPath,
		StartedAt: time.Now(),
	}
}

// AddArtifact records a written file.
func (r *Run) AddArtifact(kind ArtifactKind, path string) {
	r.Artifacts = append(r.Artifacts, Artifact{Kind: kind, Path: path})
}

// Artifact returns the last recorded artifact of the given kind.
func (r *Run) Artifact(kind ArtifactKind) (Artifact, bool) {
	for i := len(r.Artifacts) - 1; i >= 0; i-- {
		if r.Artifacts[i].Kind == kind {
			return r.Artifacts[i], true
		}
	}
	return Artifact{}, false
}
