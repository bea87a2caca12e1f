package prefab

import (
	"math"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
)

// painter рисует примитивы в объём префаба. Точки вне объёма отбрасываются.
type painter struct {
	vol *voxel.RawVolume
}

func (p painter) set(pos vec.Vec3, v voxel.Voxel) {
	p.vol.SetVoxel(pos.X, pos.Y, pos.Z, v)
}

// circlePlane заполняет горизонтальный эллипс; radius - квадрат радиуса
func (p painter) circlePlane(center vec.Vec3, width, depth int, radius float64, v voxel.Voxel) {
	xRadius := width / 2
	zRadius := depth / 2
	minRadius := float64(min(xRadius, zRadius))
	if minRadius <= 0 {
		p.set(center, v)
		return
	}
	ratioX := float64(xRadius) / minRadius
	ratioZ := float64(zRadius) / minRadius

	for z := -zRadius; z <= zRadius; z++ {
		for x := -xRadius; x <= xRadius; x++ {
			fx := float64(x) / ratioX
			fz := float64(z) / ratioZ
			if fx*fx+fz*fz > radius {
				continue
			}
			p.set(vec.Vec3{X: center.X + x, Y: center.Y, Z: center.Z + z}, v)
		}
	}
}

func (p painter) cube(center vec.Vec3, width, height, depth int, v voxel.Voxel) {
	w := width / 2
	h := height / 2
	d := depth / 2
	for x := -w; x < width-w; x++ {
		for y := -h; y < height-h; y++ {
			for z := -d; z < depth-d; z++ {
				p.set(vec.Vec3{X: center.X + x, Y: center.Y + y, Z: center.Z + z}, v)
			}
		}
	}
}

func (p painter) ellipse(pos vec.Vec3, width, height, depth int, v voxel.Voxel) {
	heightLow := height / 2
	heightHigh := height - heightLow
	minRadius := float64(min(width, depth)) / 2.0
	heightFactor := float64(heightLow) / minRadius
	if heightFactor <= 0 {
		heightFactor = 1
	}
	for y := -heightLow; y <= heightHigh; y++ {
		percent := math.Abs(float64(y) / heightFactor)
		r := math.Pow(minRadius+0.5, 2) - percent*percent
		p.circlePlane(vec.Vec3{X: pos.X, Y: pos.Y + y, Z: pos.Z}, width, depth, r, v)
	}
}

func (p painter) cone(pos vec.Vec3, width, height, depth int, v voxel.Voxel) {
	heightLow := height / 2
	heightHigh := height - heightLow
	minRadius := float64(min(width, depth)) / 2.0
	for y := -heightLow; y <= heightHigh; y++ {
		percent := 1.0 - float64(y+heightLow)/float64(height)
		r := math.Pow(percent*minRadius, 2)
		p.circlePlane(vec.Vec3{X: pos.X, Y: pos.Y + y, Z: pos.Z}, width, depth, r, v)
	}
}

func (p painter) dome(pos vec.Vec3, width, height, depth int, v voxel.Voxel) {
	heightLow := height / 2
	heightHigh := height - heightLow
	minDimension := float64(min(width, depth))
	if minDimension < 2 {
		minDimension = 2
	}
	minRadius := minDimension / 2.0
	heightFactor := float64(height) / (minDimension - 1.0) / 2.0
	for y := -heightLow; y <= heightHigh; y++ {
		percent := math.Abs(float64(y+heightLow) / heightFactor)
		r := minRadius*minRadius - percent*percent
		p.circlePlane(vec.Vec3{X: pos.X, Y: pos.Y + y, Z: pos.Z}, width, depth, r, v)
	}
}
