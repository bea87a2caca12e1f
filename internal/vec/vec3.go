package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Ось Y направлена вверх.
type Vec3 struct {
	X int
	Y int
	Z int
}

// XZ возвращает горизонтальную проекцию вектора
func (v Vec3) XZ() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

// DistanceSq возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// ToChunkCoords возвращает координаты чанка размером width x height x width
func (v Vec3) ToChunkCoords(width, height int) Vec3 {
	return Vec3{
		X: floorDiv(v.X, width),
		Y: floorDiv(v.Y, height),
		Z: floorDiv(v.Z, width),
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}
