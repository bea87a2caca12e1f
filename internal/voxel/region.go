package voxel

import (
	"fmt"
	"math/rand"

	"github.com/annel0/voxelworld/internal/vec"
)

// Region - прямоугольная область вокселей; обе границы включительно
type Region struct {
	Lower vec.Vec3
	Upper vec.Vec3
}

// NewRegion создаёт регион по двум углам
func NewRegion(lower, upper vec.Vec3) Region {
	return Region{Lower: lower, Upper: upper}
}

// RegionFromBounds создаёт регион по координатам углов
func RegionFromBounds(minX, minY, minZ, maxX, maxY, maxZ int) Region {
	return Region{
		Lower: vec.Vec3{X: minX, Y: minY, Z: minZ},
		Upper: vec.Vec3{X: maxX, Y: maxY, Z: maxZ},
	}
}

// IsValid проверяет, что нижний угол не превышает верхний
func (r Region) IsValid() bool {
	return r.Lower.X <= r.Upper.X && r.Lower.Y <= r.Upper.Y && r.Lower.Z <= r.Upper.Z
}

func (r Region) Width() int  { return r.Upper.X - r.Lower.X + 1 }
func (r Region) Height() int { return r.Upper.Y - r.Lower.Y + 1 }
func (r Region) Depth() int  { return r.Upper.Z - r.Lower.Z + 1 }

// Dimensions возвращает размеры региона в вокселях
func (r Region) Dimensions() vec.Vec3 {
	return vec.Vec3{X: r.Width(), Y: r.Height(), Z: r.Depth()}
}

// Volume возвращает количество вокселей в регионе (0 для некорректного региона)
func (r Region) Volume() int {
	if !r.IsValid() {
		return 0
	}
	return r.Width() * r.Height() * r.Depth()
}

// Centre возвращает центр региона (с округлением вниз)
func (r Region) Centre() vec.Vec3 {
	return vec.Vec3{
		X: r.Lower.X + (r.Upper.X-r.Lower.X)/2,
		Y: r.Lower.Y + (r.Upper.Y-r.Lower.Y)/2,
		Z: r.Lower.Z + (r.Upper.Z-r.Lower.Z)/2,
	}
}

// ContainsPoint проверяет, лежит ли точка внутри региона
func (r Region) ContainsPoint(x, y, z int) bool {
	return x >= r.Lower.X && x <= r.Upper.X &&
		y >= r.Lower.Y && y <= r.Upper.Y &&
		z >= r.Lower.Z && z <= r.Upper.Z
}

// ContainsColumn проверяет, лежит ли столбец (x, z) внутри региона
func (r Region) ContainsColumn(x, z int) bool {
	return x >= r.Lower.X && x <= r.Upper.X && z >= r.Lower.Z && z <= r.Upper.Z
}

// Translate сдвигает регион
func (r Region) Translate(d vec.Vec3) Region {
	return Region{Lower: r.Lower.Add(d), Upper: r.Upper.Add(d)}
}

// Shrink уменьшает регион на n вокселей с каждой горизонтальной стороны.
// Слишком маленький регион схлопывается в свой центр.
func (r Region) Shrink(n int) Region {
	if n <= 0 {
		return r
	}
	out := r
	c := r.Centre()
	out.Lower.X, out.Upper.X = shrinkAxis(r.Lower.X, r.Upper.X, c.X, n)
	out.Lower.Z, out.Upper.Z = shrinkAxis(r.Lower.Z, r.Upper.Z, c.Z, n)
	return out
}

func shrinkAxis(lo, hi, centre, n int) (int, int) {
	if hi-lo < 2*n {
		return centre, centre
	}
	return lo + n, hi - n
}

// RandomPosition возвращает случайную позицию внутри региона
func (r Region) RandomPosition(rnd *rand.Rand) vec.Vec3 {
	return vec.Vec3{
		X: r.Lower.X + rnd.Intn(r.Width()),
		Y: r.Lower.Y + rnd.Intn(r.Height()),
		Z: r.Lower.Z + rnd.Intn(r.Depth()),
	}
}

// Rect возвращает горизонтальный прямоугольник региона [minX, minZ, maxX, maxZ)
// в непрерывных координатах: столбец x покрывает отрезок [x, x+1).
func (r Region) Rect() (minX, minZ, maxX, maxZ float64) {
	return float64(r.Lower.X), float64(r.Lower.Z), float64(r.Upper.X + 1), float64(r.Upper.Z + 1)
}

func (r Region) String() string {
	return fmt.Sprintf("region(%d:%d:%d - %d:%d:%d)",
		r.Lower.X, r.Lower.Y, r.Lower.Z, r.Upper.X, r.Upper.Y, r.Upper.Z)
}
