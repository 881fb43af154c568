package stepper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	t.Run("defaults are zero", func(t *testing.T) {
		o := ApplyOptions()
		assert.Empty(t, o.Model)
		assert.Zero(t, o.MaxTokens)
		assert.Nil(t, o.Temperature)
	})

	t.Run("applies all options", func(t *testing.T) {
		o := ApplyOptions(WithModel("gpt-4o"), WithMaxTokens(512), WithTemperature(0.2))
		assert.Equal(t, "gpt-4o", o.Model)
		assert.Equal(t, 512, o.MaxTokens)
		require.NotNil(t, o.Temperature)
		assert.InDelta(t, 0.2, *o.Temperature, 1e-9)
	})

	t.Run("later options win", func(t *testing.T) {
		o := ApplyOptions(WithMaxTokens(1), WithMaxTokens(2))
		assert.Equal(t, 2, o.MaxTokens)
	})
}
