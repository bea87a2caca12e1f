package biome

import (
	"math/rand"

	"github.com/annel0/voxelworld/internal/noise"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// Classifier - рабочая копия классификатора с кешем последнего запроса.
// Генерация идёт столбцами, поэтому соседние запросы почти всегда
// приходятся на один и тот же (x, z). Не потокобезопасен: один экземпляр на горутину.
type Classifier struct {
	mgr *Manager

	memoValid       bool
	memoX, memoZ    int
	memoUnderground bool
	memoHumidity    float64
	memoTemperature float64
}

// Manager возвращает таблицу биомов классификатора
func (c *Classifier) Manager() *Manager {
	return c.mgr
}

func (c *Classifier) climate(x, z int, underground bool) (float64, float64) {
	if c.memoValid && c.memoX == x && c.memoZ == z && c.memoUnderground == underground {
		return c.memoHumidity, c.memoTemperature
	}
	c.memoX, c.memoZ, c.memoUnderground = x, z, underground
	c.memoHumidity = c.mgr.Humidity(x, z)
	c.memoTemperature = c.mgr.Temperature(x, z)
	c.memoValid = true
	return c.memoHumidity, c.memoTemperature
}

// Biome возвращает биом для точки
func (c *Classifier) Biome(pos vec.Vec3, underground bool) *Biome {
	h, t := c.climate(pos.X, pos.Z, underground)
	return c.mgr.biomeFor(pos.Y, underground, h, t)
}

// Voxel создаёт воксель биома для точки. Цвет выбирается детерминированно по позиции.
func (c *Classifier) Voxel(pos vec.Vec3, underground bool) voxel.Voxel {
	b := c.Biome(pos, underground)
	return voxel.CreateVoxel(b.Type, uint32(noise.ValueNoise3D(pos, int32(c.mgr.seed))))
}

// HasTrees проверяет, могут ли в точке расти деревья
func (c *Classifier) HasTrees(pos vec.Vec3) bool {
	if pos.Y < voxel.MaxWaterHeight {
		return false
	}
	b := c.Biome(pos, false)
	if !voxel.IsGrass(b.Type) {
		return false
	}
	if b.HasCactus() {
		return false
	}
	return b.HasTrees()
}

// HasPlants пока совпадает с HasTrees: отдельных правил для растений нет
func (c *Classifier) HasPlants(pos vec.Vec3) bool {
	return c.HasTrees(pos)
}

// HasCactus проверяет, могут ли в точке расти кактусы
func (c *Classifier) HasCactus(pos vec.Vec3) bool {
	if pos.Y < voxel.MaxWaterHeight {
		return false
	}
	b := c.Biome(pos, false)
	if !voxel.IsSand(b.Type) {
		return false
	}
	return b.HasCactus()
}

// HasClouds проверяет, бывают ли в точке облака
func (c *Classifier) HasClouds(pos vec.Vec3) bool {
	if pos.Y <= voxel.MaxMountainHeight {
		return false
	}
	return c.Biome(pos, false).HasClouds()
}

// TreeTypes возвращает архетипы деревьев биома в центре региона
func (c *Classifier) TreeTypes(region voxel.Region) []ArchetypeID {
	return c.Biome(region.Centre(), false).TreeTypes()
}

// TreePositions распределяет деревья по региону, отступив border от краёв
func (c *Classifier) TreePositions(region voxel.Region, rnd *rand.Rand, border int) []mgl64.Vec2 {
	centre := region.Centre()
	if !c.HasTrees(centre) {
		return nil
	}
	return distributePoints(region, rnd, border, c.Biome(centre, false).TreeDistance)
}

// PlantPositions распределяет растения по региону
func (c *Classifier) PlantPositions(region voxel.Region, rnd *rand.Rand, border int) []mgl64.Vec2 {
	centre := region.Centre()
	if !c.HasPlants(centre) {
		return nil
	}
	return distributePoints(region, rnd, border, c.Biome(centre, false).PlantDistance)
}

// CloudPositions распределяет облака над регионом
func (c *Classifier) CloudPositions(region voxel.Region, rnd *rand.Rand, border int) []mgl64.Vec2 {
	pos := region.Centre()
	pos.Y = region.Upper.Y
	if !c.HasClouds(pos) {
		return nil
	}
	return distributePoints(region, rnd, border, c.Biome(pos, false).CloudDistance)
}

func distributePoints(region voxel.Region, rnd *rand.Rand, border, distance int) []mgl64.Vec2 {
	inner := region.Shrink(border)
	minX, minZ, maxX, maxZ := inner.Rect()
	start := inner.RandomPosition(rnd)
	return noise.PoissonDiskDistribution(rnd, float64(distance), noise.NewRect(minX, minZ, maxX, maxZ), noise.PoissonOptions{
		InitialSet: []mgl64.Vec2{{float64(start.X), float64(start.Z)}},
	})
}
