package vec

import "math"

// Vec2Float представляет 2D координаты (X, Z) с плавающей точкой
type Vec2Float struct {
	X, Z float64
}

// ToVec2 преобразует в целочисленные координаты (с округлением вниз)
func (v Vec2Float) ToVec2() Vec2 {
	return Vec2{X: int(math.Floor(v.X)), Z: int(math.Floor(v.Z))}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Z: float64(v.Z)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Z: v.Z + other.Z}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}
