package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay. Zero values mean "keep the
// environment/default value".
type fileConfig struct {
	Provider       string `yaml:"provider"`
	AnthropicModel string `yaml:"anthropic_model"`
	OpenAIModel    string `yaml:"openai_model"`
	GeminiModel    string `yaml:"gemini_model"`

	Author         string `yaml:"author"`
	Instruction    string `yaml:"instruction"`
	EditAbstract   *bool  `yaml:"edit_abstract"`
	SkipShortLines *bool  `yaml:"skip_short_lines"`
	MaxRetries     *int   `yaml:"max_retries"`
	MaxConcurrent  *int   `yaml:"max_concurrent"`
}

// MergeFile overlays values from a YAML config file onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Provider != "" {
		c.Provider = fc.Provider
	}
	if fc.AnthropicModel != "" {
		c.AnthropicModel = fc.AnthropicModel
	}
	if fc.OpenAIModel != "" {
		c.OpenAIModel = fc.OpenAIModel
	}
	if fc.GeminiModel != "" {
		c.GeminiModel = fc.GeminiModel
	}
	if fc.Author != "" {
		c.Author = fc.Author
	}
	if fc.Instruction != "" {
		c.Instruction = fc.Instruction
	}
	if fc.EditAbstract != nil {
		c.EditAbstract = *fc.EditAbstract
	}
	if fc.SkipShortLines != nil {
		c.SkipShortLines = *fc.SkipShortLines
	}
	if fc.MaxRetries != nil && *fc.MaxRetries >= 0 {
		c.MaxRetries = *fc.MaxRetries
	}
	if fc.MaxConcurrent != nil && *fc.MaxConcurrent > 0 {
		c.MaxConcurrent = *fc.MaxConcurrent
	}
	return nil
}
