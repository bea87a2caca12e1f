package biome

import (
	"math"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
)

// ZoneType - вид зоны влияния
type ZoneType int

const (
	ZoneCity ZoneType = iota

	zoneTypeMax
)

func (t ZoneType) String() string {
	if t == ZoneCity {
		return "city"
	}
	return "unknown"
}

// CityTargetHeight - высота, к которой выравнивается рельеф в городе: чуть выше воды
const CityTargetHeight = voxel.MaxWaterHeight + 2

// MinCityHeight - CityTargetHeight в долях максимальной высоты рельефа
const MinCityHeight = float64(voxel.MaxWaterHeight+1) / float64(voxel.MaxTerrainHeight-1)

// Zone - зона влияния (например, город) с центром и радиусом
type Zone struct {
	Pos    vec.Vec3
	Radius float64
	Type   ZoneType
}

// ZoneIndex - неизменяемый список зон. При пересечении зон побеждает первая по порядку добавления.
type ZoneIndex struct {
	zones [zoneTypeMax][]Zone
}

// Len возвращает количество зон заданного вида
func (zi *ZoneIndex) Len(kind ZoneType) int {
	if kind < 0 || kind >= zoneTypeMax {
		return 0
	}
	return len(zi.zones[kind])
}

// Zone возвращает первую зону вида kind, содержащую точку pos (трехмерное расстояние)
func (zi *ZoneIndex) Zone(pos vec.Vec3, kind ZoneType) (Zone, bool) {
	if kind < 0 || kind >= zoneTypeMax {
		return Zone{}, false
	}
	for _, z := range zi.zones[kind] {
		if float64(pos.DistanceSq(z.Pos)) < z.Radius*z.Radius {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneAt возвращает первую зону вида kind, содержащую столбец col (высота не учитывается)
func (zi *ZoneIndex) ZoneAt(col vec.Vec2, kind ZoneType) (Zone, bool) {
	if kind < 0 || kind >= zoneTypeMax {
		return Zone{}, false
	}
	for _, z := range zi.zones[kind] {
		if float64(col.DistanceSq(z.Pos.XZ())) < z.Radius*z.Radius {
			return z, true
		}
	}
	return Zone{}, false
}

// Influence возвращает множитель рельефа для столбца и целевую высоту.
// Вне зон множитель 1.0 и целевой высоты нет. Внутри города множитель
// равен (d/r)^2: 0 в центре, 1 на границе; в самом центре - ровно 0.
func (zi *ZoneIndex) Influence(col vec.Vec2, kind ZoneType) (multiplier float64, targetHeight int, ok bool) {
	zone, found := zi.ZoneAt(col, kind)
	if !found {
		return 1.0, 0, false
	}
	l := col.DistanceTo(zone.Pos.XZ())
	if l < 1e-6 {
		return 0.0, CityTargetHeight, true
	}
	ratio := zone.Radius / l
	return 1.0 / (ratio * ratio), CityTargetHeight, true
}

// CityMultiplier - Influence для городов без целевой высоты
func (zi *ZoneIndex) CityMultiplier(col vec.Vec2) float64 {
	m, _, _ := zi.Influence(col, ZoneCity)
	return m
}

// CityDensity возвращает 1 для плотной застройки рядом с центром города
func (zi *ZoneIndex) CityDensity(col vec.Vec2) int {
	if zi.CityMultiplier(col) < 0.4 {
		return 1
	}
	return 0
}

// HasCity проверяет, лежит ли точка внутри города
func (zi *ZoneIndex) HasCity(pos vec.Vec3) bool {
	_, ok := zi.Zone(pos, ZoneCity)
	return ok
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
