package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingSink struct {
	err   error
	calls int
}

func (f *failingSink) UpdateProgress(_ context.Context, _ int, _ string) error {
	f.calls++
	return f.err
}

func TestJobProgress_SwallowsSinkError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewStepLogger(zap.New(core))
	sink := &failingSink{err: errors.New("queue unavailable")}

	// Must not panic and must not propagate the error.
	s.JobProgress(context.Background(), sink, 50, "halfway")

	assert.Equal(t, 1, sink.calls)
	entries := logs.FilterMessage("progress update failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(50), entries[0].ContextMap()["percent"])
}

func TestJobProgress_NilSinkIgnored(t *testing.T) {
	s := NewStepLogger(zap.NewNop())
	s.JobProgress(context.Background(), nil, 10, "starting")
}

func TestStepResult_SuccessFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewStepLogger(zap.New(core))

	s.StepResult("generate-image", StepResult{
		Success:   true,
		Provider:  "gemini",
		Model:     "imagen-3",
		SizeBytes: 2048,
		Duration:  1500 * time.Millisecond,
	})

	entries := logs.FilterMessage("step completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "gemini", fields["provider"])
	assert.Equal(t, "2.0 KB", fields["size"])
	assert.Equal(t, int64(1500), fields["duration_ms"])
}

func TestStepResult_FailureLogsError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewStepLogger(zap.New(core))

	s.StepResult("generate-image", StepResult{
		Success: false,
		Err:     errors.New("provider rejected prompt"),
	})

	entries := logs.FilterMessage("step failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "provider rejected prompt", entries[0].ContextMap()["error"])
}

func TestPrompt_TaggedField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewStepLogger(zap.New(core))

	s.Prompt("generate-image", "studio portrait, navy suit")

	entries := logs.FilterMessage("prompt submitted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "studio portrait, navy suit", entries[0].ContextMap()["prompt"])
}

func TestFormatProgressWithAttempt(t *testing.T) {
	assert.Equal(t, "40% rendering", FormatProgressWithAttempt(0, 40, "rendering"))
	assert.Equal(t, "⏳ 25% provider busy, retrying (attempt 2)",
		FormatProgressWithAttempt(2, 25, "provider busy, retrying"))
}
