package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
)

// Множители приводят одиночную октаву шума Перлина к диапазону примерно [-1, 1]
const (
	scale2D = math.Sqrt2
	scale3D = 1.1547005383792517 // 2/sqrt(3)
)

// Field - детерминированное поле градиентного шума.
// После создания не изменяется, поэтому безопасно для одновременного
// использования из любого числа горутин.
type Field struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewField создаёт поле шума для заданного сида
func NewField(seed int64) *Field {
	// Одна октава: суммирование октав выполняет FBm, а не библиотека
	return &Field{
		seed:   seed,
		perlin: perlin.NewPerlin(2.0, 2.0, 1, seed),
	}
}

// Seed возвращает сид поля
func (f *Field) Seed() int64 {
	return f.seed
}

// Noise2 возвращает градиентный шум в точке, примерно в диапазоне [-1, 1]
func (f *Field) Noise2(p mgl64.Vec2) float64 {
	return clampSigned(f.perlin.Noise2D(p[0], p[1]) * scale2D)
}

// Noise3 возвращает трехмерный градиентный шум, примерно в диапазоне [-1, 1]
func (f *Field) Noise3(p mgl64.Vec3) float64 {
	return clampSigned(f.perlin.Noise3D(p[0], p[1], p[2]) * scale3D)
}

// Norm переводит значение шума из [-1, 1] в [0, 1]
func Norm(n float64) float64 {
	return mgl64.Clamp((n+1.0)*0.5, 0.0, 1.0)
}

// FBm2 суммирует octaves октав шума (фрактальное броуновское движение).
// На каждой октаве частота умножается на lacunarity, амплитуда - на gain.
// Ноль октав даёт 0.
func (f *Field) FBm2(p mgl64.Vec2, octaves int, lacunarity, gain, frequency float64) float64 {
	sum := 0.0
	freq := frequency
	amp := 0.5
	for i := 0; i < octaves; i++ {
		sum += f.Noise2(p.Mul(freq)) * amp
		freq *= lacunarity
		amp *= gain
	}
	return sum
}

// FBm3 - трехмерный вариант FBm2
func (f *Field) FBm3(p mgl64.Vec3, octaves int, lacunarity, gain, frequency float64) float64 {
	sum := 0.0
	freq := frequency
	amp := 0.5
	for i := 0; i < octaves; i++ {
		sum += f.Noise3(p.Mul(freq)) * amp
		freq *= lacunarity
		amp *= gain
	}
	return sum
}

// RidgedMF2 возвращает гребневой мультифрактал: каждая октава h = (ridgeOffset - |n|)^2
// взвешивается значением предыдущей октавы, что даёт острые хребты.
func (f *Field) RidgedMF2(p mgl64.Vec2, ridgeOffset float64, octaves int, lacunarity, gain float64) float64 {
	sum := 0.0
	freq := 1.0
	amp := 0.5
	prev := 1.0
	for i := 0; i < octaves; i++ {
		h := ridge(f.Noise2(p.Mul(freq)), ridgeOffset)
		sum += h * amp * prev
		prev = h
		freq *= lacunarity
		amp *= gain
	}
	return sum
}

// RidgedMF3 - трехмерный вариант RidgedMF2
func (f *Field) RidgedMF3(p mgl64.Vec3, ridgeOffset float64, octaves int, lacunarity, gain float64) float64 {
	sum := 0.0
	freq := 1.0
	amp := 0.5
	prev := 1.0
	for i := 0; i < octaves; i++ {
		h := ridge(f.Noise3(p.Mul(freq)), ridgeOffset)
		sum += h * amp * prev
		prev = h
		freq *= lacunarity
		amp *= gain
	}
	return sum
}

// Смещения точек выборки для искажения домена (как в модуле Turbulence из libnoise)
var (
	warpX = mgl64.Vec3{12414.0 / 65536.0, 65124.0 / 65536.0, 31337.0 / 65536.0}
	warpY = mgl64.Vec3{26519.0 / 65536.0, 18128.0 / 65536.0, 60493.0 / 65536.0}
	warpZ = mgl64.Vec3{53820.0 / 65536.0, 11213.0 / 65536.0, 44845.0 / 65536.0}
)

// Turbulence3 искажает точку выборки тремя независимыми FBm-полями и возвращает
// шум в искаженной точке. power задаёт силу искажения, frequency - частоту искажающих полей.
func (f *Field) Turbulence3(p mgl64.Vec3, frequency, power float64, octaves int) float64 {
	dx := f.FBm3(p.Add(warpX), octaves, 2.0, 0.5, frequency) * power
	dy := f.FBm3(p.Add(warpY), octaves, 2.0, 0.5, frequency) * power
	dz := f.FBm3(p.Add(warpZ), octaves, 2.0, 0.5, frequency) * power
	return f.Noise3(p.Add(mgl64.Vec3{dx, dy, dz}))
}

func ridge(h, offset float64) float64 {
	h = offset - math.Abs(h)
	return h * h
}

func clampSigned(v float64) float64 {
	return mgl64.Clamp(v, -1.0, 1.0)
}
