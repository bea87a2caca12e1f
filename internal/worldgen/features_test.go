package worldgen

import (
	"testing"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ringRadius = 3

// ringTrees - префаб из ствола в начале координат и четырех листьев на расстоянии ringRadius
type ringTrees struct{}

func (ringTrees) Tree(name string, variant int) (voxel.VolumeReader, bool) {
	vol := voxel.NewRawVolume(voxel.RegionFromBounds(-ringRadius, 0, -ringRadius, ringRadius, 0, ringRadius))
	vol.SetVoxel(0, 0, 0, voxel.CreateVoxel(voxel.Wood, 0))
	for _, d := range []vec.Vec2{{X: ringRadius}, {X: -ringRadius}, {Z: ringRadius}, {Z: -ringRadius}} {
		vol.SetVoxel(d.X, 0, d.Z, voxel.CreateVoxel(voxel.Leaf, 0))
	}
	return vol, true
}

func (ringTrees) Cloud(variant int) (voxel.VolumeReader, bool) { return nil, false }
func (ringTrees) Variants() int                                { return 1 }

func newForestPager(t *testing.T) (*WorldPager, *Metrics) {
	return newTestPager(t, testEnv{
		seed:   17,
		ctx:    flatContext(),
		biomes: []biome.Definition{forestBiome},
		trees:  ringTrees{},
	})
}

// assertLeavesHaveTrunks проверяет, что у каждого листа в чанке есть свой ствол в том же чанке
func assertLeavesHaveTrunks(t *testing.T, chunk *voxel.Chunk) (leaves int) {
	t.Helper()
	r := chunk.Region()
	y := flatHeight + 1
	for z := r.Lower.Z; z <= r.Upper.Z; z++ {
		for x := r.Lower.X; x <= r.Upper.X; x++ {
			if chunk.Voxel(x, y, z).Material != voxel.Leaf {
				continue
			}
			leaves++
			found := false
			for _, d := range []vec.Vec2{{X: ringRadius}, {X: -ringRadius}, {Z: ringRadius}, {Z: -ringRadius}} {
				if r.ContainsColumn(x+d.X, z+d.Z) && chunk.Voxel(x+d.X, y, z+d.Z).Material == voxel.Wood {
					found = true
					break
				}
			}
			assert.True(t, found, "лист (%d,%d) без ствола в чанке", x, z)
		}
	}
	return leaves
}

func TestTreesSkipNonResidentNeighbours(t *testing.T) {
	p, m := newForestPager(t)
	chunk, _ := pageIn(t, p, fullHeightRegion(0, 0, 32))

	assert.Greater(t, testutil.ToFloat64(m.TreesPlaced), 0.0)
	assert.Greater(t, testutil.ToFloat64(m.TreesSkipped.WithLabelValues(skipNotResident)), 0.0)

	assertLeavesHaveTrunks(t, chunk)
	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			assert.Equal(t, voxel.Grass, chunk.Voxel(x, flatHeight-1, z).Material)
			assert.False(t, voxel.IsTreeMaterial(chunk.Voxel(x, flatHeight+2, z).Material))
		}
	}
}

func TestTreesUseResidentNeighbours(t *testing.T) {
	without, m1 := newForestPager(t)
	pageIn(t, without, fullHeightRegion(0, 0, 32))

	with, m2 := newForestPager(t)
	neighbour, _ := pageIn(t, with, fullHeightRegion(32, 0, 32))
	with.Attach(&fakeVolume{chunks: []*voxel.Chunk{neighbour}})
	before := testutil.ToFloat64(m2.TreesSkipped.WithLabelValues(skipNotResident))
	pageIn(t, with, fullHeightRegion(0, 0, 32))
	after := testutil.ToFloat64(m2.TreesSkipped.WithLabelValues(skipNotResident)) - before

	assert.Less(t, after, testutil.ToFloat64(m1.TreesSkipped.WithLabelValues(skipNotResident)),
		"позиции резидентного соседа больше не пропускаются")
}

func TestTreesAvoidCities(t *testing.T) {
	p, m := newTestPager(t, testEnv{
		seed:   17,
		ctx:    flatContext(),
		biomes: []biome.Definition{forestBiome},
		cities: []biome.Zone{{Pos: vec.Vec3{X: 16, Z: 16}, Radius: 200}},
		trees:  ringTrees{},
	})
	chunk, _ := pageIn(t, p, fullHeightRegion(0, 0, 32))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.TreesPlaced))
	assert.Greater(t, testutil.ToFloat64(m.TreesSkipped.WithLabelValues(skipCity)), 0.0)
	assert.Zero(t, assertLeavesHaveTrunks(t, chunk))
}

func TestFeatureRegions(t *testing.T) {
	own := voxel.RegionFromBounds(32, 64, -32, 63, 95, -1)
	regions := featureRegions(own)
	require.Len(t, regions, 9)

	last := regions[len(regions)-1]
	assert.Equal(t, vec.Vec3{X: 32, Y: 0, Z: -32}, last.Lower, "последним идёт сам регион на полную высоту")
	assert.Equal(t, voxel.MaxHeight, last.Upper.Y)

	seen := map[vec.Vec3]bool{}
	for _, r := range regions {
		assert.Equal(t, 32, r.Width())
		assert.Equal(t, 32, r.Depth())
		assert.False(t, seen[r.Lower], "регионы не повторяются")
		seen[r.Lower] = true
	}
	assert.True(t, seen[vec.Vec3{X: 0, Z: -64}])
	assert.True(t, seen[vec.Vec3{X: 64, Z: 0}])
}

func TestStampClipsToChunk(t *testing.T) {
	chunk := voxel.NewChunk(voxel.RegionFromBounds(0, 0, 0, 7, 7, 7))
	src := voxel.NewRawVolume(voxel.RegionFromBounds(-2, 0, -2, 2, 2, 2))
	for y := 0; y <= 2; y++ {
		for z := -2; z <= 2; z++ {
			for x := -2; x <= 2; x++ {
				src.SetVoxel(x, y, z, voxel.CreateVoxel(voxel.Rock, 0))
			}
		}
	}
	src.SetVoxel(2, 2, 2, voxel.Voxel{})

	written := stamp(chunk, src, vec.Vec3{X: 0, Y: 6, Z: 9})
	// по X видны 0..2, по Y 6..7, по Z только 7
	assert.Equal(t, 3*2*1, written)
	assert.Equal(t, voxel.Rock, chunk.Voxel(2, 7, 7).Material)
	assert.True(t, chunk.Voxel(3, 7, 7).IsAir())
}

func TestFindFloorSkipsTreesAndWater(t *testing.T) {
	chunk := voxel.NewChunk(voxel.RegionFromBounds(0, 0, 0, 1, voxel.MaxHeight, 1))
	for y := 0; y < 40; y++ {
		chunk.SetVoxel(0, y, 0, voxel.CreateVoxel(voxel.Dirt, 0))
	}
	for y := 40; y < 50; y++ {
		chunk.SetVoxel(0, y, 0, voxel.CreateVoxel(voxel.Wood, 0))
	}
	assert.Equal(t, 39, findFloor(chunk, 0, 0))

	for y := 0; y <= voxel.MaxWaterHeight; y++ {
		chunk.SetVoxel(1, y, 1, voxel.CreateVoxel(voxel.Water, 0))
	}
	assert.Equal(t, -1, findFloor(chunk, 1, 1), "под водой деревья не растут")
}

func TestRegionRandDependsOnCentre(t *testing.T) {
	a := fullHeightRegion(0, 0, 32)
	b := fullHeightRegion(32, 0, 32)
	assert.Equal(t, regionRand(1, a).Int63(), regionRand(1, a).Int63())
	assert.NotEqual(t, regionRand(1, a).Int63(), regionRand(1, b).Int63())
	assert.NotEqual(t, regionRand(1, a).Int63(), regionRand(2, a).Int63())
}

const cloudHalf = 2

// skyTrees добавляет к ringTrees плоское облако 5x5 в один слой
type skyTrees struct{ ringTrees }

func (skyTrees) Cloud(variant int) (voxel.VolumeReader, bool) {
	vol := voxel.NewRawVolume(voxel.RegionFromBounds(-cloudHalf, 0, -cloudHalf, cloudHalf, 0, cloudHalf))
	for z := -cloudHalf; z <= cloudHalf; z++ {
		for x := -cloudHalf; x <= cloudHalf; x++ {
			vol.SetVoxel(x, 0, z, voxel.CreateVoxel(voxel.Cloud, uint32(variant)))
		}
	}
	return vol, true
}

func newSkyPager(t *testing.T, clouds bool) *WorldPager {
	ctx := flatContext()
	ctx.Clouds = clouds
	p, _ := newTestPager(t, testEnv{
		seed:   23,
		ctx:    ctx,
		biomes: []biome.Definition{forestBiome},
		trees:  skyTrees{},
	})
	return p
}

// cloudCells возвращает высоты всех облачных вокселей чанка
func cloudCells(chunk *voxel.Chunk) map[int]int {
	r := chunk.Region()
	heights := make(map[int]int)
	for y := r.Lower.Y; y <= r.Upper.Y; y++ {
		for z := r.Lower.Z; z <= r.Upper.Z; z++ {
			for x := r.Lower.X; x <= r.Upper.X; x++ {
				if chunk.Voxel(x, y, z).Material == voxel.Cloud {
					heights[y]++
				}
			}
		}
	}
	return heights
}

func TestCloudsPlacedAtCloudHeight(t *testing.T) {
	require.True(t, forestBiome.Humidity >= 0.5, "облака бывают только во влажном климате")
	region := fullHeightRegion(64, -32, 32)

	chunk, _ := pageIn(t, newSkyPager(t, true), region)
	heights := cloudCells(chunk)
	require.Len(t, heights, 1, "облака занимают один слой")
	assert.Greater(t, heights[voxel.CloudHeight], 0)
	assert.LessOrEqual(t, heights[voxel.CloudHeight], region.Width()*region.Depth(), "облака обрезаны по чанку")

	again, _ := pageIn(t, newSkyPager(t, true), region)
	assert.Equal(t, chunk.Voxels(), again.Voxels(), "облака детерминированы для зерна")

	plain, _ := pageIn(t, newSkyPager(t, false), region)
	assert.Empty(t, cloudCells(plain), "без Clouds облаков нет")
}

func TestCloudsSkipLowChunks(t *testing.T) {
	chunk, _ := pageIn(t, newSkyPager(t, true), voxel.RegionFromBounds(0, 0, 0, 31, 63, 31))
	assert.Empty(t, cloudCells(chunk))
}
