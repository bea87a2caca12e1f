package noise

import (
	"sync"
	"testing"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestField_Deterministic(t *testing.T) {
	a := NewField(42)
	b := NewField(42)

	for i := 0; i < 50; i++ {
		p2 := mgl64.Vec2{float64(i) * 0.37, float64(i) * -1.13}
		p3 := mgl64.Vec3{float64(i) * 0.21, float64(i) * 0.77, float64(i) * -0.5}
		assert.Equal(t, a.Noise2(p2), b.Noise2(p2))
		assert.Equal(t, a.Noise3(p3), b.Noise3(p3))
		assert.Equal(t, a.FBm2(p2, 4, 2.0, 0.5, 0.01), b.FBm2(p2, 4, 2.0, 0.5, 0.01))
		assert.Equal(t, a.RidgedMF3(p3, 1.0, 4, 2.0, 0.5), b.RidgedMF3(p3, 1.0, 4, 2.0, 0.5))
	}
}

func TestField_Ranges(t *testing.T) {
	f := NewField(7)
	for i := 0; i < 500; i++ {
		p2 := mgl64.Vec2{float64(i) * 0.173, float64(i%37) * 0.291}
		n := f.Noise2(p2)
		assert.GreaterOrEqual(t, n, -1.0)
		assert.LessOrEqual(t, n, 1.0)

		norm := Norm(f.FBm2(p2, 6, 2.0, 0.5, 1.0))
		assert.GreaterOrEqual(t, norm, 0.0)
		assert.LessOrEqual(t, norm, 1.0)

		p3 := mgl64.Vec3{p2[0], float64(i) * 0.05, p2[1]}
		assert.GreaterOrEqual(t, f.Turbulence3(p3, 0.5, 0.25, 2), -1.0)
		assert.GreaterOrEqual(t, f.RidgedMF2(p2, 1.0, 4, 2.0, 0.5), 0.0, "Гребневой шум неотрицателен")
	}
}

func TestField_ZeroOctaves(t *testing.T) {
	f := NewField(1)
	assert.Equal(t, 0.0, f.FBm2(mgl64.Vec2{1.5, 2.5}, 0, 2.0, 0.5, 1.0))
	assert.Equal(t, 0.0, f.FBm3(mgl64.Vec3{1.5, 2.5, 3.5}, 0, 2.0, 0.5, 1.0))
	assert.Equal(t, 0.0, f.RidgedMF2(mgl64.Vec2{1.5, 2.5}, 1.0, 0, 2.0, 0.5))
}

func TestField_ConcurrentUse(t *testing.T) {
	f := NewField(99)
	p := mgl64.Vec3{10.25, 3.5, -7.75}
	want := f.FBm3(p, 5, 2.0, 0.5, 0.05)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, f.FBm3(p, 5, 2.0, 0.5, 0.05))
			}
		}()
	}
	wg.Wait()
}

func TestNorm(t *testing.T) {
	assert.Equal(t, 0.0, Norm(-1.0))
	assert.Equal(t, 0.5, Norm(0.0))
	assert.Equal(t, 1.0, Norm(1.0))
	assert.Equal(t, 1.0, Norm(3.0), "Значения вне диапазона ограничиваются")
}

func TestValueNoise(t *testing.T) {
	p := vec.Vec3{X: 12, Y: -4, Z: 99}
	assert.Equal(t, ValueNoise3D(p, 5), ValueNoise3D(p, 5))
	assert.NotEqual(t, ValueNoise3D(p, 5), ValueNoise3D(p, 6))

	for x := -50; x < 50; x++ {
		v := ValueNoise3D(vec.Vec3{X: x, Y: x * 3, Z: -x}, 1)
		assert.GreaterOrEqual(t, v, int32(0))

		d := DoubleValueNoise3D(vec.Vec3{X: x, Y: 7, Z: x * 11}, 3)
		assert.GreaterOrEqual(t, d, -1.0)
		assert.LessOrEqual(t, d, 1.0)
	}
}

func TestVoronoi2D(t *testing.T) {
	v1, d1 := Voronoi2D(mgl64.Vec2{10.3, 4.2}, 0.1, 9)
	v2, d2 := Voronoi2D(mgl64.Vec2{10.3, 4.2}, 0.1, 9)
	assert.Equal(t, v1, v2)
	assert.Equal(t, d1, d2)
	assert.GreaterOrEqual(t, v1, -1.0)
	assert.LessOrEqual(t, v1, 1.0)
	assert.GreaterOrEqual(t, d1, 0.0)

	// Соседние точки внутри одной ячейки получают одно значение
	v3, _ := Voronoi2D(mgl64.Vec2{10.3 + 1e-6, 4.2}, 0.1, 9)
	assert.Equal(t, v1, v3)
}
