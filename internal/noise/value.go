package noise

import (
	"math"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Константы целочисленного хеша (из libnoise)
const (
	xNoiseGen    = 1619
	yNoiseGen    = 31337
	zNoiseGen    = 6971
	seedNoiseGen = 1013
)

// ValueNoise3D возвращает целочисленный шум без интерполяции в диапазоне [0, 2^31).
// Используется для оценки ячеек Вороного, выбора цвета и вариантов объектов.
func ValueNoise3D(p vec.Vec3, seed int32) int32 {
	n := (xNoiseGen*int32(p.X) + yNoiseGen*int32(p.Y) + zNoiseGen*int32(p.Z) + seedNoiseGen*seed) & 0x7fffffff
	n = (n >> 13) ^ n
	return (n*(n*n*60493+19990303) + 1376312589) & 0x7fffffff
}

// DoubleValueNoise3D возвращает ValueNoise3D, приведенный к диапазону [-1, 1]
func DoubleValueNoise3D(p vec.Vec3, seed int32) float64 {
	return 1.0 - float64(ValueNoise3D(p, seed))/1073741824.0
}

// Voronoi2D находит ближайшую точку-ядро ячейки Вороного для p (в масштабе frequency)
// и возвращает значение ячейки в [-1, 1] и расстояние до ядра.
// Ядро каждой целочисленной ячейки смещено значением ValueNoise3D.
func Voronoi2D(p mgl64.Vec2, frequency float64, seed int32) (value float64, distance float64) {
	x := p[0] * frequency
	z := p[1] * frequency
	xi := int(math.Floor(x))
	zi := int(math.Floor(z))

	best := math.MaxFloat64
	var bestCell vec.Vec3
	for cz := zi - 2; cz <= zi+2; cz++ {
		for cx := xi - 2; cx <= xi+2; cx++ {
			cell := vec.Vec3{X: cx, Z: cz}
			px := float64(cx) + Norm(DoubleValueNoise3D(cell, seed))
			pz := float64(cz) + Norm(DoubleValueNoise3D(cell, seed+1))
			dx := px - x
			dz := pz - z
			d := dx*dx + dz*dz
			if d < best {
				best = d
				bestCell = cell
			}
		}
	}
	return DoubleValueNoise3D(bestCell, seed+2), math.Sqrt(best)
}
