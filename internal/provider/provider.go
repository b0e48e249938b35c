// Package provider contains clients for external image-generation
// services and the rate-limit classification they share. Clients are
// consumed through the Provider interface; retry policy lives with the
// caller, not here.
package provider

import (
	"context"

	"github.com/portraitforge/genjobs/internal/docmerge"
)

// Request is one generation call. Config is the merged prompt/
// configuration document for the job; clients read the fields they
// understand and ignore the rest.
type Request struct {
	Prompt string
	Config docmerge.Document
}

// Image is a generated image payload.
type Image struct {
	Data     []byte
	MIMEType string
	Provider string
	Model    string
}

// Provider generates one image per call. Implementations must return
// rate-limit failures recognizable by IsRateLimitError.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Image, error)
}
