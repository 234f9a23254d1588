package invoker_test

import (
	"testing"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Merge_FillsUnset(t *testing.T) {
	defaults := invoker.Params{Model: "m-default", MaxTokens: 4096, Temperature: invoker.Temperature(0.7)}

	got := invoker.Params{}.Merge(defaults)

	assert.Equal(t, "m-default", got.Model)
	assert.Equal(t, 4096, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.7, *got.Temperature, 1e-9)
}

func TestParams_Merge_KeepsOverrides(t *testing.T) {
	defaults := invoker.Params{Model: "m-default", MaxTokens: 4096, Temperature: invoker.Temperature(0.7)}

	got := invoker.Params{Model: "m-custom", MaxTokens: 10, Temperature: invoker.Temperature(0)}.Merge(defaults)

	assert.Equal(t, "m-custom", got.Model)
	assert.Equal(t, 10, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.0, *got.Temperature, 1e-9)
}

func TestParams_TemperatureOr(t *testing.T) {
	assert.InDelta(t, 0.3, invoker.Params{}.TemperatureOr(0.3), 1e-9)
	assert.InDelta(t, 1.0, invoker.Params{Temperature: invoker.Temperature(1)}.TemperatureOr(0.3), 1e-9)
}
