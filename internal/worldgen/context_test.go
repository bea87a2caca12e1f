package worldgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldContextReset(t *testing.T) {
	ctx := DefaultWorldContext()
	ctx.LandscapeNoiseOctaves = 9
	ctx.RidgedMountains = true
	ctx.Clouds = true

	ctx.Reset()
	assert.Equal(t, DefaultWorldContext(), ctx)
	assert.InDelta(t, 0.83, ctx.CaveDensityThreshold, 1e-9)
}

func TestWorldContextValidate(t *testing.T) {
	assert.NoError(t, DefaultWorldContext().Validate())

	ctx := DefaultWorldContext()
	ctx.LandscapeNoiseOctaves = -1
	ctx.MountainNoiseFrequency = -0.5
	err := ctx.Validate()
	assert.ErrorContains(t, err, "landscape")
	assert.ErrorContains(t, err, "mountain")
}
