package worldgen

import (
	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/noise"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// columnStride - столбцы генерируются блоками 2x2 с высотой угла блока
const columnStride = 2

// terrain - неизменяемый снимок параметров генерации (зерно, смещение, шумы)
type terrain struct {
	ctx    WorldContext
	seed   int64
	offset vec.Vec2Float

	landscape *noise.Field
	mountain  *noise.Field
	cave      *noise.Field
	zones     *biome.ZoneIndex
	biomes    *biome.Manager
}

func newTerrain(ctx WorldContext, seed int64, offset vec.Vec2Float, zones *biome.ZoneIndex, biomes *biome.Manager) *terrain {
	return &terrain{
		ctx:       ctx,
		seed:      seed,
		offset:    offset,
		landscape: noise.NewField(seed),
		mountain:  noise.NewField(seed + 1),
		cave:      noise.NewField(seed + 2),
		zones:     zones,
		biomes:    biomes.WithSeed(seed),
	}
}

// noiseValue - доля высоты рельефа для столбца в [0, 1]
func (t *terrain) noiseValue(x, z int) float64 {
	p := mgl64.Vec2{t.offset.X + float64(x), t.offset.Z + float64(z)}
	c := &t.ctx

	landscape := noise.Norm(t.landscape.FBm2(p, c.LandscapeNoiseOctaves,
		c.LandscapeNoiseLacunarity, c.LandscapeNoiseGain, c.LandscapeNoiseFrequency))

	var mountain float64
	if c.RidgedMountains {
		mountain = mgl64.Clamp(t.mountain.RidgedMF2(p.Mul(c.MountainNoiseFrequency), c.RidgeOffset,
			c.MountainNoiseOctaves, c.MountainNoiseLacunarity, c.MountainNoiseGain), 0, 1)
	} else {
		mountain = noise.Norm(t.mountain.FBm2(p, c.MountainNoiseOctaves,
			c.MountainNoiseLacunarity, c.MountainNoiseGain, c.MountainNoiseFrequency))
	}

	multiplier := mountain * (mountain + 0.5)
	return mgl64.Clamp(landscape*multiplier, 0, 1)
}

// density - плотность ячейки: доля высоты столбца плюс пещерный шум
func (t *terrain) density(x, y, z int, n float64) float64 {
	p := mgl64.Vec3{t.offset.X + float64(x), float64(y), t.offset.Z + float64(z)}
	c := &t.ctx
	return n + noise.Norm(t.cave.FBm3(p, c.CaveNoiseOctaves, c.CaveNoiseLacunarity, c.CaveNoiseGain, c.CaveNoiseFrequency))
}

func (t *terrain) solid(x, y, z int, n float64) bool {
	return t.density(x, y, z, n) > t.ctx.CaveDensityThreshold
}

// height возвращает высоту первой ячейки воздуха над поверхностью столбца.
// В городе высота смешивается с целевой пропорционально (1 - множитель).
// Затем поверхность опускается, пока верхняя ячейка не станет твердой.
func (t *terrain) height(x, minsY, z int, n float64) int {
	const maxHeight = voxel.MaxTerrainHeight - 1

	var ni int
	multiplier, target, inCity := t.zones.Influence(vec.Vec2{X: x, Z: z}, biome.ZoneCity)
	if inCity && multiplier < 1.0 {
		ni = int((1.0-multiplier)*float64(target) + multiplier*n*maxHeight)
	} else {
		ni = int(n * maxHeight)
	}

	for y := ni - 1; y >= minsY+1; y-- {
		if t.solid(x, y, z, n) {
			break
		}
		ni--
	}
	return ni
}

// fillColumn заполняет column (индекс - высота минус minsY) и возвращает число
// записанных ячеек. Воздух ниже уровня воды заменяется водой.
func (t *terrain) fillColumn(cls *biome.Classifier, x, minsY, z int, column []voxel.Voxel) int {
	n := t.noiseValue(x, z)
	ni := t.height(x, minsY, z, n)

	top := min(max(ni, voxel.MaxWaterHeight)-minsY, len(column))
	if top <= 0 {
		return 0
	}
	for i := 0; i < top; i++ {
		column[i] = voxel.Voxel{}
	}

	if ni >= minsY {
		paved := t.zones.CityDensity(vec.Vec2{X: x, Z: z}) == 1

		lowest := minsY
		if minsY == 0 {
			// дно мира
			column[0] = voxel.CreateVoxel(voxel.Dirt, t.selector(x, 0, z))
			lowest = 1
		}
		pos := vec.Vec3{X: x, Z: z}
		for y := min(ni-1, minsY+top-1); y >= lowest; y-- {
			if !t.solid(x, y, z, n) {
				continue
			}
			pos.Y = y
			underground := y < ni-1
			if !underground && paved {
				column[y-minsY] = voxel.CreateVoxel(voxel.Generic, t.selector(x, y, z))
				continue
			}
			column[y-minsY] = cls.Voxel(pos, underground)
		}
	}

	for y := minsY; y < voxel.MaxWaterHeight && y-minsY < top; y++ {
		if column[y-minsY].IsAir() {
			column[y-minsY] = voxel.CreateVoxel(voxel.Water, t.selector(x, y, z))
		}
	}
	return top
}

func (t *terrain) selector(x, y, z int) uint32 {
	return uint32(noise.ValueNoise3D(vec.Vec3{X: x, Y: y, Z: z}, int32(t.seed)))
}

// snap приводит координату к углу блока столбцов
func snap(v int) int {
	if v >= 0 {
		return v - v%columnStride
	}
	return v - ((v%columnStride)+columnStride)%columnStride
}
