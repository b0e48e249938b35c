// Package jobs ties the execution support layer together: each job
// merges a base configuration document with a tenant overlay, submits
// the result to an image provider under retry, and reports progress and
// step telemetry along the way.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/portraitforge/genjobs/internal/docmerge"
	"github.com/portraitforge/genjobs/internal/provider"
)

// State is the lifecycle state of a generation job.
type State string

const (
	StateSubmitted State = "submitted"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Job is one image-generation unit of work. All fields are job-local;
// jobs share no mutable state with each other.
type Job struct {
	ID       string
	TenantID string

	// Prompt is the tenant's prompt text.
	Prompt string

	// Overlay is the tenant's partial configuration document, merged
	// onto the base document before generation.
	Overlay docmerge.Document

	State    State
	Progress int
	Message  string

	// Image holds the result on success.
	Image *provider.Image

	// Error holds the terminal failure message, if any.
	Error string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJob creates a submitted job with a fresh ID.
func NewJob(tenantID, prompt string, overlay docmerge.Document) Job {
	now := time.Now()
	return Job{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Prompt:    prompt,
		Overlay:   overlay,
		State:     StateSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
