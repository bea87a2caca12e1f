package worldgen

import (
	"math"
	"math/rand"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/noise"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
)

// rotationCycle - повороты префабов вокруг Y по номеру позиции
var rotationCycle = [...]int{0, 1, 2, 0, 3}

// featureRegions возвращает восемь соседей региона и сам регион, все на полную высоту мира.
// Объекты соседей, нависающие над текущим чанком, попадают в него частично;
// сами соседи при этом не генерируются.
func featureRegions(region voxel.Region) []voxel.Region {
	dim := region.Dimensions()
	base := voxel.RegionFromBounds(region.Lower.X, 0, region.Lower.Z, region.Upper.X, voxel.MaxHeight, region.Upper.Z)
	offsets := [...]vec.Vec3{
		{X: -dim.X, Z: -dim.Z}, {X: -dim.X}, {X: -dim.X, Z: dim.Z},
		{X: dim.X, Z: -dim.Z}, {X: dim.X}, {X: dim.X, Z: dim.Z},
		{Z: -dim.Z}, {Z: dim.Z},
		{},
	}
	out := make([]voxel.Region, 0, len(offsets))
	for _, d := range offsets {
		out = append(out, base.Translate(d))
	}
	return out
}

// regionRand - генератор, зависящий только от зерна мира и центра региона
func regionRand(seed int64, region voxel.Region) *rand.Rand {
	c := region.Centre()
	return rand.New(rand.NewSource(seed ^ (int64(c.X)*73856093 + int64(c.Z)*19349663)))
}

// voxelSource - откуда читать воксели при поиске пола
type voxelSource interface {
	Voxel(x, y, z int) voxel.Voxel
}

// findFloor ищет сверху вниз первую твердую ячейку, не являющуюся частью дерева.
// Возвращает -1, если пол не выше уровня воды.
func findFloor(src voxelSource, x, z int) int {
	for y := voxel.MaxTerrainHeight; y > voxel.MaxWaterHeight; y-- {
		m := src.Voxel(x, y, z).Material
		if voxel.IsAir(m) || voxel.IsWater(m) || voxel.IsTreeMaterial(m) {
			continue
		}
		return y
	}
	return -1
}

func (p *WorldPager) placeTrees(t *terrain, cls *biome.Classifier, chunk *voxel.Chunk) {
	own := chunk.Region()
	lookup := p.attachedVolume()
	archetypes := cls.Manager().Archetypes()
	variants := max(p.trees.Variants(), 1)

	for _, region := range featureRegions(own) {
		ids := cls.TreeTypes(region)
		if len(ids) == 0 {
			p.logger.Trace("Нет типов деревьев для региона %s", region)
			continue
		}

		rnd := regionRand(t.seed, region)
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = archetypes.Name(id)
		}
		rnd.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
		positions := cls.TreePositions(region, rnd, 0)

		treeIndex := 0
		for i, pos := range positions {
			x := int(math.Floor(pos[0]))
			z := int(math.Floor(pos[1]))

			var src voxelSource
			if own.ContainsColumn(x, z) {
				src = chunk
			} else if lookup != nil {
				neighbor, ok := lookup.ResidentChunk(vec.Vec3{X: x, Y: own.Lower.Y, Z: z})
				if !ok {
					p.metrics.TreesSkipped.WithLabelValues(skipNotResident).Inc()
					continue
				}
				src = neighbor
			} else {
				p.metrics.TreesSkipped.WithLabelValues(skipNotResident).Inc()
				continue
			}

			floor := findFloor(src, x, z)
			if floor < 0 {
				p.metrics.TreesSkipped.WithLabelValues(skipNoFloor).Inc()
				continue
			}
			base := vec.Vec3{X: x, Y: floor + 1, Z: z}
			if t.zones.HasCity(base) {
				p.metrics.TreesSkipped.WithLabelValues(skipCity).Inc()
				continue
			}

			name := names[treeIndex%len(names)]
			treeIndex++
			variant := int(noise.ValueNoise3D(vec.Vec3{X: x, Z: z}, int32(t.seed)) % int32(variants))
			tree, ok := p.trees.Tree(name, variant)
			if !ok {
				p.metrics.TreesSkipped.WithLabelValues(skipNoPrefab).Inc()
				p.logger.Debug("Нет префаба дерева %s/%d", name, variant)
				continue
			}

			if stamp(chunk, voxel.RotateY(tree, rotationCycle[i%len(rotationCycle)]), base) > 0 {
				p.metrics.TreesPlaced.Inc()
			}
		}
	}
}

func (p *WorldPager) placeClouds(t *terrain, cls *biome.Classifier, chunk *voxel.Chunk) {
	own := chunk.Region()
	if own.Upper.Y < voxel.CloudHeight-16 {
		return
	}
	for _, region := range featureRegions(own) {
		rnd := regionRand(t.seed+1, region)
		for i, pos := range cls.CloudPositions(region, rnd, 0) {
			cloud, ok := p.trees.Cloud(i)
			if !ok {
				continue
			}
			base := vec.Vec3{X: int(math.Floor(pos[0])), Y: voxel.CloudHeight, Z: int(math.Floor(pos[1]))}
			stamp(chunk, cloud, base)
		}
	}
}

// stamp копирует непустые воксели src в чанк со сдвигом base, отсекая всё вне чанка.
// Возвращает число записанных вокселей.
func stamp(chunk *voxel.Chunk, src voxel.VolumeReader, base vec.Vec3) int {
	sr := src.Region()
	target := chunk.Region()
	written := 0
	for y := sr.Lower.Y; y <= sr.Upper.Y; y++ {
		ny := base.Y + y
		for z := sr.Lower.Z; z <= sr.Upper.Z; z++ {
			nz := base.Z + z
			for x := sr.Lower.X; x <= sr.Upper.X; x++ {
				nx := base.X + x
				if !target.ContainsPoint(nx, ny, nz) {
					continue
				}
				v := src.Voxel(x, y, z)
				if v.IsAir() {
					continue
				}
				chunk.SetVoxel(nx, ny, nz, v)
				written++
			}
		}
	}
	return written
}
