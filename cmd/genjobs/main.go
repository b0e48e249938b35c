package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/portraitforge/genjobs/internal/config"
	"github.com/portraitforge/genjobs/internal/docmerge"
	"github.com/portraitforge/genjobs/internal/jobs"
	"github.com/portraitforge/genjobs/internal/provider"
	"github.com/portraitforge/genjobs/internal/retry"
	"github.com/portraitforge/genjobs/internal/telemetry"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ConfigDir string
	Base      string
	Overlay   string
	Prompt    string
	Tenant    string
	Output    string
	Workers   int
	Verbose   bool
	Version   bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("genjobs", flag.ContinueOnError)
	fs.StringVar(&flags.ConfigDir, "config-dir", ".", "directory containing genjobs.yml")
	fs.StringVar(&flags.Base, "base", "", "path to the base document (JSON); overrides the configured one")
	fs.StringVar(&flags.Overlay, "overlay", "", "path to a tenant overlay document (JSON)")
	fs.StringVar(&flags.Prompt, "prompt", "", "tenant prompt text")
	fs.StringVar(&flags.Tenant, "tenant", "local", "tenant identifier")
	fs.StringVar(&flags.Output, "output", "out.png", "path to write the generated image")
	fs.IntVar(&flags.Workers, "workers", 0, "worker count; overrides the configured one")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return err
	}
	if flags.Workers > 0 {
		cfg.Workers = flags.Workers
	}

	logger, err := buildLogger(flags.Verbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	base, err := loadBase(cfg, flags)
	if err != nil {
		return err
	}

	var overlay docmerge.Document
	if flags.Overlay != "" {
		overlay, err = config.LoadDocument(flags.Overlay)
		if err != nil {
			return err
		}
	}

	prov, err := buildProvider(ctx, cfg.Provider)
	if err != nil {
		return err
	}

	store := jobs.NewStore()
	runner := jobs.NewRunner(
		docmerge.NewEngine(cfg.PolicySet()),
		prov,
		retry.NewExecutor(logger, provider.IsRateLimitError),
		cfg.RetryConfig(),
		logger,
	)
	pool := jobs.NewPool(runner, store, cfg.Workers, func(_ string, ev telemetry.ProgressEvent) {
		fmt.Printf("  %s\n", telemetry.FormatProgressWithAttempt(0, ev.Percent, ev.Message))
	})

	id, err := pool.Submit(flags.Tenant, flags.Prompt, overlay)
	if err != nil {
		return err
	}

	outcomes := pool.Run(ctx, base, []string{id})
	if outcomes[0].Err != nil {
		return outcomes[0].Err
	}

	job, err := store.Get(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(flags.Output, job.Image.Data, 0o644); err != nil {
		return fmt.Errorf("write output image: %w", err)
	}
	fmt.Printf("✓ %s (%s, %.1f KB)\n", flags.Output, job.Image.Provider, float64(len(job.Image.Data))/1024)
	return nil
}

func loadBase(cfg *config.Config, flags cliFlags) (docmerge.Document, error) {
	path := flags.Base
	if path == "" {
		path = cfg.BaseDocument
	}
	if path == "" {
		return docmerge.Document{}, nil
	}
	return config.LoadDocument(path)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func buildProvider(ctx context.Context, settings config.ProviderSettings) (provider.Provider, error) {
	apiKey := os.Getenv(settings.APIKeyEnv)

	switch strings.ToLower(settings.Kind) {
	case "openai", "":
		return provider.NewOpenAIClient(apiKey, settings.BaseURL, settings.Model), nil
	case "gemini":
		return provider.NewGeminiClient(ctx, apiKey, settings.Model)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", settings.Kind)
	}
}
