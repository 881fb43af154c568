package harness

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/formatter"
)

// Profile describes an agent: who it is, its rules and its default task.
//
//	role: Researcher
//	constraints: Be concise.
//	task: Find the population of Lisbon.
//	format: flexible
//	formatters:
//	  get_time: '"It is \(.output.time)"'
type Profile struct {
	Name        string `yaml:"name"`
	Role        string `yaml:"role"`
	Constraints string `yaml:"constraints"`
	Task        string `yaml:"task"`

	// Format selects the response format: "flexible" (default) or "json".
	Format string `yaml:"format"`

	// Formatters maps step types to jq expressions rendering their results.
	Formatters map[string]string `yaml:"formatters"`
}

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Name:        "assistant",
		Role:        "You are a careful assistant that solves tasks step by step using the available actions.",
		Constraints: "Use one action per response. Call done with the final answer as soon as you have it.",
	}
}

// LoadProfile reads a YAML profile. An empty path returns DefaultProfile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if strings.TrimSpace(p.Role) == "" {
		return nil, fmt.Errorf("profile: role is required")
	}
	if strings.TrimSpace(p.Constraints) == "" {
		return nil, fmt.Errorf("profile: constraints are required")
	}
	if _, err := p.ResponseFormat(); err != nil {
		return nil, err
	}
	return p, nil
}

// ResponseFormat returns the format named by the profile.
func (p *Profile) ResponseFormat() (format.Format, error) {
	switch p.Format {
	case "", "flexible":
		return format.FlexibleJSON(), nil
	case "json":
		return format.JSON(), nil
	default:
		return nil, fmt.Errorf("profile: unknown format %q (must be flexible or json)", p.Format)
	}
}

// ResultFormatters compiles the profile's jq formatters.
func (p *Profile) ResultFormatters() (*formatter.Registry, error) {
	registry := formatter.NewRegistry()
	for stepType, expr := range p.Formatters {
		f, err := formatter.JQ(expr)
		if err != nil {
			return nil, fmt.Errorf("profile: formatter for %s: %w", stepType, err)
		}
		if err := registry.Register(stepType, f); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
