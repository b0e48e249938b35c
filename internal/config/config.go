// Package config loads runtime settings for the generation pipeline from
// genjobs.yml and base/overlay documents from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/portraitforge/genjobs/internal/docmerge"
	"github.com/portraitforge/genjobs/internal/provider"
	"github.com/portraitforge/genjobs/internal/retry"
)

// MergePolicies lists the dotted document paths with an explicit array
// merge policy. Arrays at any other path are replaced by the overlay and
// reported as unlisted.
type MergePolicies struct {
	Union  []string `yaml:"union,omitempty"`
	Concat []string `yaml:"concat,omitempty"`
}

// RetrySettings configures the rate-limit retry executor.
type RetrySettings struct {
	MaxRetries int `yaml:"maxRetries,omitempty"`
	SleepMs    int `yaml:"sleepMs,omitempty"`
}

// ProviderSettings selects and configures the image provider.
type ProviderSettings struct {
	// Kind is "openai" or "gemini".
	Kind    string `yaml:"kind,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
}

// Config holds project-level settings loaded from genjobs.yml.
type Config struct {
	BaseDocument  string           `yaml:"baseDocument,omitempty"`
	MergePolicies MergePolicies    `yaml:"mergePolicies,omitempty"`
	Retry         RetrySettings    `yaml:"retry,omitempty"`
	Provider      ProviderSettings `yaml:"provider,omitempty"`
	Workers       int              `yaml:"workers,omitempty"`
	Verbose       bool             `yaml:"verbose,omitempty"`
}

// Load attempts to read genjobs.yml or genjobs.yaml from the given
// directory. Returns a default config (not an error) if no config file
// exists.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"genjobs.yml", "genjobs.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := defaults()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		return cfg, nil
	}
	return defaults(), nil
}

func defaults() *Config {
	return &Config{
		Retry: RetrySettings{
			MaxRetries: 5,
			SleepMs:    int(provider.DefaultRetrySleep / time.Millisecond),
		},
		Provider: ProviderSettings{
			Kind:      "openai",
			Model:     "gpt-image-1",
			APIKeyEnv: "GENJOBS_API_KEY",
		},
		Workers: 4,
	}
}

// PolicySet converts the configured path lists into the merge engine's
// policy set. Paths listed under both union and concat resolve to union.
func (c *Config) PolicySet() docmerge.PolicySet {
	set := make(docmerge.PolicySet, len(c.MergePolicies.Union)+len(c.MergePolicies.Concat))
	for _, p := range c.MergePolicies.Concat {
		set[p] = docmerge.PolicyConcat
	}
	for _, p := range c.MergePolicies.Union {
		set[p] = docmerge.PolicyUnion
	}
	return set
}

// RetryConfig converts the retry settings for the executor.
func (c *Config) RetryConfig() retry.Config {
	return retry.Config{
		MaxRetries: c.Retry.MaxRetries,
		Sleep:      time.Duration(c.Retry.SleepMs) * time.Millisecond,
	}
}

// LoadDocument reads a JSON document file into a Document.
func LoadDocument(path string) (docmerge.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read document %s: %w", path, err)
	}
	var doc docmerge.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse document %s: %w", path, err)
	}
	return doc, nil
}
