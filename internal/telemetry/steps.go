// Package telemetry provides structured step logging and best-effort job
// progress forwarding for generation jobs. Nothing here sits on the
// success/failure path: a telemetry failure never changes a job outcome.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ProgressSink is the external job handle. Updates are best-effort; the
// receiver may drop or fail them.
type ProgressSink interface {
	UpdateProgress(ctx context.Context, percent int, message string) error
}

// StepResult describes one completed pipeline step. Write-once,
// purely descriptive.
type StepResult struct {
	Success   bool
	Provider  string
	Model     string
	SizeBytes int
	Duration  time.Duration
	Err       error
}

// StepLogger emits structured markers around pipeline steps.
type StepLogger struct {
	log *zap.Logger
}

// NewStepLogger creates a StepLogger. A nil logger is replaced with a nop
// logger so telemetry can never panic the caller.
func NewStepLogger(log *zap.Logger) *StepLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &StepLogger{log: log}
}

// StepStart emits the start marker for a step.
func (s *StepLogger) StepStart(step, jobID string) {
	s.log.Info("step started",
		zap.String("step", step),
		zap.String("job_id", jobID))
}

// Prompt records the exact prompt payload for support and debugging. The
// dedicated "prompt" field lets downstream log processing apply special
// formatting or redaction.
func (s *StepLogger) Prompt(step, promptText string) {
	s.log.Info("prompt submitted",
		zap.String("step", step),
		zap.String("prompt", promptText))
}

// StepResult emits the terminal status of a step, including provider and
// payload size details when present.
func (s *StepLogger) StepResult(step string, res StepResult) {
	fields := []zap.Field{
		zap.String("step", step),
		zap.Bool("success", res.Success),
	}
	if res.Provider != "" {
		fields = append(fields, zap.String("provider", res.Provider))
	}
	if res.Model != "" {
		fields = append(fields, zap.String("model", res.Model))
	}
	if res.SizeBytes > 0 {
		fields = append(fields, zap.String("size", fmt.Sprintf("%.1f KB", float64(res.SizeBytes)/1024)))
	}
	if res.Duration > 0 {
		fields = append(fields, zap.Int64("duration_ms", res.Duration.Milliseconds()))
	}

	if res.Success {
		s.log.Info("step completed", fields...)
		return
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	s.log.Error("step failed", fields...)
}

// JobProgress forwards a progress update to the job handle. Failures are
// logged as warnings and swallowed; progress reporting must never fail
// the enclosing operation.
func (s *StepLogger) JobProgress(ctx context.Context, sink ProgressSink, percent int, message string) {
	if sink == nil {
		return
	}
	if err := sink.UpdateProgress(ctx, percent, message); err != nil {
		s.log.Warn("progress update failed",
			zap.Int("percent", percent),
			zap.String("message", message),
			zap.Error(err))
	}
}

// FormatProgressWithAttempt renders one human-readable progress line. A
// positive attempt marks the line as a retry.
func FormatProgressWithAttempt(attempt, percent int, message string) string {
	if attempt <= 0 {
		return fmt.Sprintf("%d%% %s", percent, message)
	}
	return fmt.Sprintf("⏳ %d%% %s (attempt %d)", percent, message, attempt)
}
