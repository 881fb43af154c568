package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing provider", Config{MaxSteps: 1}, "STEPPER_PROVIDER"},
		{"unknown provider", Config{Provider: "llama", MaxSteps: 1}, "unknown provider"},
		{"missing key", Config{Provider: "openai", MaxSteps: 1}, "OPENAI_API_KEY"},
		{"bad max steps", Config{Provider: "anthropic", AnthropicKey: "k"}, "STEPPER_MAX_STEPS"},
		{"valid", Config{Provider: "google", GoogleKey: "k", MaxSteps: 3}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("STEPPER_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "secret")
	t.Setenv("STEPPER_MAX_STEPS", "4")
	t.Setenv("STEPPER_TIMEOUT", "30s")
	t.Setenv("STEPPER_MCP_ARGS", "--root /tmp  --verbose")
	t.Setenv("STEPPER_DEMO_ACTIONS", "false")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 4, cfg.MaxSteps)
	assert.Equal(t, "30s", cfg.Timeout.String())
	assert.Equal(t, []string{"--root", "/tmp", "--verbose"}, cfg.MCPArgs)
	assert.False(t, cfg.DemoActions)
	assert.Equal(t, "8000", cfg.Port)
}

func TestParseProfile(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		p, err := ParseProfile([]byte(`
name: researcher
role: Researcher
constraints: Be concise
task: Find X
format: json
formatters:
  calculate: '"= \(.output.result)"'
`))

		require.NoError(t, err)
		assert.Equal(t, "Researcher", p.Role)
		assert.Equal(t, "Find X", p.Task)

		f, err := p.ResponseFormat()
		require.NoError(t, err)
		assert.Equal(t, format.JSON().Description(), f.Description())

		formatters, err := p.ResultFormatters()
		require.NoError(t, err)
		text, ok, err := formatters.Format("calculate", step.Succeeded{Output: CalculateOutput{Result: 5}})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "= 5", text)
	})

	t.Run("defaults fill missing fields", func(t *testing.T) {
		p, err := ParseProfile([]byte(`task: Find X`))

		require.NoError(t, err)
		assert.Equal(t, DefaultProfile().Role, p.Role)
		f, err := p.ResponseFormat()
		require.NoError(t, err)
		assert.Equal(t, format.FlexibleJSON().Description(), f.Description())
	})

	t.Run("blank role", func(t *testing.T) {
		_, err := ParseProfile([]byte(`role: "  "`))
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseProfile([]byte(`format: xml`))
		assert.Error(t, err)
	})

	t.Run("bad jq", func(t *testing.T) {
		p, err := ParseProfile([]byte("formatters:\n  echo: '.output['\n"))
		require.NoError(t, err)
		_, err = p.ResultFormatters()
		assert.Error(t, err)
	})
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: Tester\nconstraints: None\n"), 0o600))
	p, err = LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Tester", p.Role)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDemoActions(t *testing.T) {
	actions := DemoActions()
	require.Len(t, actions, 3)

	var calc = actions[2]
	assert.Equal(t, "calculate", calc.Type())

	t.Run("calculate", func(t *testing.T) {
		s, err := calc.CreateStep(context.Background(), "", format.Parsed{
			Action: "calculate",
			Params: map[string]any{"operation": "multiply", "a": 6.0, "b": 7.0},
		})
		require.NoError(t, err)
		st := s.State().(step.Succeeded)
		assert.Equal(t, CalculateOutput{Result: 42}, st.Output)
		assert.Equal(t, "multiply(6, 7) = 42", st.Summary)
	})

	t.Run("divide by zero", func(t *testing.T) {
		_, err := calc.CreateStep(context.Background(), "", format.Parsed{
			Action: "calculate",
			Params: map[string]any{"operation": "divide", "a": 1.0, "b": 0.0},
		})
		assert.Error(t, err)
	})

	t.Run("echo", func(t *testing.T) {
		s, err := actions[1].CreateStep(context.Background(), "", format.Parsed{
			Action: "echo",
			Params: map[string]any{"message": "hi"},
		})
		require.NoError(t, err)
		assert.Equal(t, `echoed "hi"`, s.Summary())
	})
}

func TestNewTextGenerator(t *testing.T) {
	_, err := NewTextGenerator(context.Background(), &Config{Provider: "nope"}, nil)
	assert.Error(t, err)

	gen, err := NewTextGenerator(context.Background(), &Config{Provider: "openai", OpenAIKey: "k", MaxAttempts: 2}, nil)
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestLoadEnv_SkipsValidation(t *testing.T) {
	t.Setenv("STEPPER_PROVIDER", "")
	t.Setenv("STEPPER_DB", "runs.db")

	cfg := LoadEnv()

	assert.Equal(t, "runs.db", cfg.DB)
	assert.Error(t, cfg.Validate())
}

func TestOpenStore(t *testing.T) {
	t.Run("memory when no path", func(t *testing.T) {
		store, closeStore, err := OpenStore(&Config{})
		require.NoError(t, err)
		defer closeStore()

		_, ok := store.(RunLister)
		assert.True(t, ok)
	})

	t.Run("sqlite file", func(t *testing.T) {
		cfg := &Config{DB: filepath.Join(t.TempDir(), "runs.db")}
		store, closeStore, err := OpenStore(cfg)
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, store.Append(ctx, "run-1", step.NewThought("raw", "thinking")))
		require.NoError(t, closeStore())

		store, closeStore, err = OpenStore(cfg)
		require.NoError(t, err)
		defer closeStore()

		runs, err := store.(RunLister).Runs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"run-1"}, runs)
	})
}
