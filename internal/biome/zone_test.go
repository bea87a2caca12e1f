package biome

import (
	"testing"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZones(t *testing.T) *ZoneIndex {
	t.Helper()
	b := NewBuilder(1)
	require.NoError(t, b.AddBiome(DefaultDefinition))
	require.NoError(t, b.AddCity(vec.Vec3{X: 0, Y: 20, Z: 0}, 100))
	require.NoError(t, b.AddCity(vec.Vec3{X: 50, Y: 20, Z: 0}, 10))
	_, zones, err := b.Build()
	require.NoError(t, err)
	return zones
}

func TestInfluenceOutsideZone(t *testing.T) {
	zones := buildZones(t)
	m, _, ok := zones.Influence(vec.Vec2{X: 1000, Z: 1000}, ZoneCity)
	assert.False(t, ok)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, 0, zones.CityDensity(vec.Vec2{X: 1000, Z: 1000}))
}

func TestInfluenceCentreAndTarget(t *testing.T) {
	zones := buildZones(t)
	m, target, ok := zones.Influence(vec.Vec2{}, ZoneCity)
	require.True(t, ok)
	assert.Equal(t, 0.0, m, "в центре города рельеф полностью выравнивается")
	assert.Equal(t, voxel.MaxWaterHeight+2, target)
	assert.Equal(t, 1, zones.CityDensity(vec.Vec2{}))
}

func TestInfluenceMonotonic(t *testing.T) {
	zones := buildZones(t)
	prev := -1.0
	for x := 0; x < 100; x++ {
		m := zones.CityMultiplier(vec.Vec2{X: -x, Z: 0})
		assert.GreaterOrEqual(t, m, prev, "множитель растёт от центра к краю (x=%d)", x)
		assert.LessOrEqual(t, m, 1.0)
		prev = m
	}
	assert.InDelta(t, 0.25, zones.CityMultiplier(vec.Vec2{X: -50}), 1e-9)
}

func TestFirstZoneWins(t *testing.T) {
	zones := buildZones(t)
	z, ok := zones.ZoneAt(vec.Vec2{X: 50, Z: 0}, ZoneCity)
	require.True(t, ok)
	assert.Equal(t, 100.0, z.Radius, "при пересечении выбирается первая добавленная зона")
}

func TestHasCity(t *testing.T) {
	zones := buildZones(t)
	assert.True(t, zones.HasCity(vec.Vec3{X: 10, Y: 20, Z: 10}))
	assert.False(t, zones.HasCity(vec.Vec3{X: 10, Y: 200, Z: 10}), "HasCity учитывает высоту")
	assert.False(t, zones.HasCity(vec.Vec3{X: 500, Y: 20}))
}

func TestMinCityHeight(t *testing.T) {
	assert.InDelta(t, float64(voxel.MaxWaterHeight+1)/float64(voxel.MaxTerrainHeight-1), MinCityHeight, 1e-12)
	assert.Greater(t, MinCityHeight, 0.0)
	assert.Less(t, MinCityHeight, 1.0)
}
