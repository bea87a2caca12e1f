package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_ChunkCoords(t *testing.T) {
	// Отрицательные координаты должны округляться вниз
	assert.Equal(t, Vec2{X: 0, Z: 0}, Vec2{X: 5, Z: 15}.ToChunkCoords(16))
	assert.Equal(t, Vec2{X: -1, Z: -1}, Vec2{X: -1, Z: -16}.ToChunkCoords(16))
	assert.Equal(t, Vec2{X: -2, Z: 1}, Vec2{X: -17, Z: 16}.ToChunkCoords(16))

	assert.Equal(t, Vec2{X: 15, Z: 0}, Vec2{X: -1, Z: -16}.LocalInChunk(16))
	assert.Equal(t, Vec2{X: 5, Z: 15}, Vec2{X: 5, Z: 15}.LocalInChunk(16))
}

func TestVec3_Distance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	assert.Equal(t, 25, a.DistanceSq(b))
	assert.Equal(t, Vec3{X: 5, Y: 8, Z: 6}, a.Add(b))
	assert.Equal(t, Vec3{X: -3, Y: -4, Z: 0}, a.Sub(b))
	assert.True(t, a.Equals(Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, Vec2{X: 1, Z: 3}, a.XZ())
	assert.InDelta(t, 5.0, Vec2{X: 0, Z: 0}.DistanceTo(Vec2{X: 3, Z: 4}), 1e-9)
}

func TestVec3_ChunkCoords(t *testing.T) {
	assert.Equal(t, Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 31, Y: 255, Z: 0}.ToChunkCoords(32, 256))
	assert.Equal(t, Vec3{X: -1, Y: 1, Z: -2}, Vec3{X: -1, Y: 256, Z: -33}.ToChunkCoords(32, 256))
	assert.Equal(t, "(1, -2, 3)", Vec3{X: 1, Y: -2, Z: 3}.String())
}
