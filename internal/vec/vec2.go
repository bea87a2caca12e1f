package vec

import "math"

// Vec2 представляет горизонтальную позицию столбца мира (X, Z)
type Vec2 struct {
	X, Z int
}

// ToChunkCoords преобразует мировые координаты в координаты чанка заданного размера.
// Деление округляет вниз, поэтому отрицательные координаты попадают в правильный чанк.
func (v Vec2) ToChunkCoords(size int) Vec2 {
	return Vec2{X: floorDiv(v.X, size), Z: floorDiv(v.Z, size)}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk(size int) Vec2 {
	return Vec2{X: v.X - floorDiv(v.X, size)*size, Z: v.Z - floorDiv(v.Z, size)*size}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	return math.Sqrt(float64(v.DistanceSq(other)))
}

// DistanceSq возвращает квадрат расстояния до другой точки
func (v Vec2) DistanceSq(other Vec2) int {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return dx*dx + dz*dz
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
