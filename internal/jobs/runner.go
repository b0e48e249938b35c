package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/portraitforge/genjobs/internal/docmerge"
	"github.com/portraitforge/genjobs/internal/provider"
	"github.com/portraitforge/genjobs/internal/retry"
	"github.com/portraitforge/genjobs/internal/telemetry"
)

// stepGenerate names the provider-call step in telemetry output.
const stepGenerate = "generate-image"

// Runner executes single generation jobs: merge, then a retry-wrapped
// provider call, with step telemetry and best-effort progress updates
// throughout.
type Runner struct {
	engine   *docmerge.Engine
	provider provider.Provider
	exec     *retry.Executor
	retryCfg retry.Config
	steps    *telemetry.StepLogger
	log      *zap.Logger
}

// NewRunner wires a Runner. log may be nil.
func NewRunner(engine *docmerge.Engine, prov provider.Provider, exec *retry.Executor, retryCfg retry.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		engine:   engine,
		provider: prov,
		exec:     exec,
		retryCfg: retryCfg,
		steps:    telemetry.NewStepLogger(log),
		log:      log,
	}
}

// Run executes one job against the base document. Merge diagnostics are
// logged but never fail the job; the only errors returned are the
// provider's own (rate-limit-exhausted or non-retryable), unchanged.
func (r *Runner) Run(ctx context.Context, job *Job, base docmerge.Document, sink telemetry.ProgressSink) (*provider.Image, error) {
	r.steps.StepStart(stepGenerate, job.ID)
	r.steps.JobProgress(ctx, sink, 5, "preparing generation config")

	res := r.engine.Merge(base, job.Overlay)
	if len(res.Conflicts) > 0 {
		r.log.Warn("overlay conflicts resolved in favor of overlay",
			zap.String("job_id", job.ID),
			zap.Strings("paths", res.Conflicts))
	}
	if len(res.UnlistedArrayPaths) > 0 {
		r.log.Warn("array paths merged without explicit policy",
			zap.String("job_id", job.ID),
			zap.Strings("paths", res.UnlistedArrayPaths))
	}

	promptText := buildPrompt(job.Prompt, res.Merged)
	r.steps.Prompt(stepGenerate, promptText)
	r.steps.JobProgress(ctx, sink, 15, "submitting to provider")

	cfg := r.retryCfg
	cfg.OperationName = stepGenerate

	start := time.Now()
	img, err := retry.Do(ctx, r.exec, cfg,
		func(ctx context.Context) (*provider.Image, error) {
			return r.provider.Generate(ctx, provider.Request{
				Prompt: promptText,
				Config: res.Merged,
			})
		},
		func(attempt int, wait time.Duration) {
			msg := telemetry.FormatProgressWithAttempt(attempt, 25,
				fmt.Sprintf("provider busy, retrying in %ds", int(wait.Round(time.Second).Seconds())))
			r.steps.JobProgress(ctx, sink, 25, msg)
		})
	elapsed := time.Since(start)

	if err != nil {
		r.steps.StepResult(stepGenerate, telemetry.StepResult{
			Success:  false,
			Duration: elapsed,
			Err:      err,
		})
		return nil, err
	}

	r.steps.StepResult(stepGenerate, telemetry.StepResult{
		Success:   true,
		Provider:  img.Provider,
		Model:     img.Model,
		SizeBytes: len(img.Data),
		Duration:  elapsed,
	})
	r.steps.JobProgress(ctx, sink, 100, "generation complete")
	return img, nil
}

// buildPrompt combines the tenant's prompt text with the merged
// document's base prompt, base first so tenant wording lands last.
func buildPrompt(tenantPrompt string, merged docmerge.Document) string {
	basePrompt := docmerge.StringAt(merged, "prompt.text", "")
	switch {
	case basePrompt == "":
		return tenantPrompt
	case tenantPrompt == "":
		return basePrompt
	default:
		return basePrompt + "\n\n" + tenantPrompt
	}
}
