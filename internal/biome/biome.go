package biome

import (
	"github.com/annel0/voxelworld/internal/voxel"
)

// Biome описывает один климатический режим: материал, диапазон высот,
// влажность, температуру и плотность растительности.
// Биом создаётся один раз при загрузке параметров мира и больше не изменяется.
type Biome struct {
	Type        voxel.VoxelType
	YMin        int
	YMax        int
	Humidity    float64
	Temperature float64
	Underground bool

	// Минимальные расстояния между деревьями, облаками и растениями (в вокселях)
	TreeDistance  int
	CloudDistance int
	PlantDistance int

	treeTypes []ArchetypeID
}

// Definition - декларативное описание биома из конфигурации
type Definition struct {
	Type        voxel.VoxelType
	YMin        int
	YMax        int
	Humidity    float64
	Temperature float64
	Underground bool

	// Подсказки плотности; значение <= 0 означает "вычислить по климату"
	TreeDistribution  int
	CloudDistribution int
	PlantDistribution int

	TreeTypes []string
}

func newBiome(def Definition, treeTypes []ArchetypeID) *Biome {
	b := &Biome{
		Type:        def.Type,
		YMin:        def.YMin,
		YMax:        def.YMax,
		Humidity:    def.Humidity,
		Temperature: def.Temperature,
		Underground: def.Underground,
		treeTypes:   treeTypes,
	}
	b.TreeDistance = pick(def.TreeDistribution, b.calcTreeDistribution())
	b.CloudDistance = pick(def.CloudDistribution, b.calcCloudDistribution())
	b.PlantDistance = pick(def.PlantDistribution, b.calcPlantDistribution())
	return b
}

func pick(hint, derived int) int {
	if hint > 0 {
		return hint
	}
	return derived
}

// calcTreeDistribution: в жарком или сухом климате деревья растут реже
func (b *Biome) calcTreeDistribution() int {
	switch {
	case b.Temperature > 0.9 || b.Humidity < 0.1:
		return 30
	case b.Temperature > 0.7 || b.Humidity < 0.2:
		return 20
	default:
		return 12
	}
}

func (b *Biome) calcCloudDistribution() int {
	if b.Humidity > 0.7 {
		return 40
	}
	return 64
}

func (b *Biome) calcPlantDistribution() int {
	if b.Humidity < 0.3 {
		return 12
	}
	return 6
}

// HasTrees: деревья растут только в умеренно тёплом и влажном климате
func (b *Biome) HasTrees() bool {
	return b.Temperature > 0.3 && b.Humidity > 0.3
}

// HasCactus: кактусы - для очень жаркого или очень сухого климата
func (b *Biome) HasCactus() bool {
	return b.Temperature > 0.9 || b.Humidity < 0.1
}

// HasClouds возвращает true для достаточно влажного климата
func (b *Biome) HasClouds() bool {
	return b.Humidity >= 0.5
}

// ContainsHeight проверяет, попадает ли высота y в диапазон биома
func (b *Biome) ContainsHeight(y int) bool {
	return y >= b.YMin && y <= b.YMax
}

// TreeTypes возвращает копию списка архетипов деревьев биома
func (b *Biome) TreeTypes() []ArchetypeID {
	out := make([]ArchetypeID, len(b.treeTypes))
	copy(out, b.treeTypes)
	return out
}
