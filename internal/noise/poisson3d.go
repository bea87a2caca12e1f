package noise

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Box - параллелепипед [Min, Max)
type Box struct {
	Min, Max mgl64.Vec3
}

// Contains проверяет, лежит ли точка внутри параллелепипеда
func (b Box) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] < b.Max[0] &&
		p[1] >= b.Min[1] && p[1] < b.Max[1] &&
		p[2] >= b.Min[2] && p[2] < b.Max[2]
}

// Center возвращает центр параллелепипеда
func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// PoissonDiskDistribution3D - трехмерный вариант распределения.
// Кандидаты выбираются в сферическом слое [separation, 2*separation) по двум углам.
func PoissonDiskDistribution3D(rnd *rand.Rand, separation float64, bounds Box, initialSet []mgl64.Vec3, candidates int) []mgl64.Vec3 {
	size := bounds.Max.Sub(bounds.Min)
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 || separation <= 0 {
		return nil
	}
	if candidates <= 0 {
		candidates = DefaultCandidates
	}
	grid := newGrid3(bounds, separation/math.Sqrt(3))

	processing := make([]mgl64.Vec3, 0, len(initialSet)+1)
	output := make([]mgl64.Vec3, 0, len(initialSet)+1)
	for _, p := range initialSet {
		processing = append(processing, p)
		output = append(output, p)
		grid.add(p)
	}
	if len(processing) == 0 {
		c := bounds.Center()
		processing = append(processing, c)
		output = append(output, c)
		grid.add(c)
	}

	for len(processing) > 0 {
		i := rnd.Intn(len(processing))
		center := processing[i]
		last := len(processing) - 1
		processing[i] = processing[last]
		processing = processing[:last]

		for j := 0; j < candidates; j++ {
			radius := separation * (1.0 + rnd.Float64())
			azimuth := rnd.Float64() * 2.0 * math.Pi
			polar := math.Acos(2.0*rnd.Float64() - 1.0)
			dir := mgl64.Vec3{
				math.Sin(polar) * math.Cos(azimuth),
				math.Cos(polar),
				math.Sin(polar) * math.Sin(azimuth),
			}
			candidate := center.Add(dir.Mul(radius))
			if !bounds.Contains(candidate) || grid.hasNeighbors(candidate, separation) {
				continue
			}
			processing = append(processing, candidate)
			output = append(output, candidate)
			grid.add(candidate)
		}
	}
	return output
}

type grid3 struct {
	origin     mgl64.Vec3
	cellSize   float64
	nx, ny, nz int
	cells      [][]mgl64.Vec3
}

func newGrid3(bounds Box, cellSize float64) *grid3 {
	size := bounds.Max.Sub(bounds.Min)
	count := func() float64 {
		return math.Ceil(size[0]/cellSize) * math.Ceil(size[1]/cellSize) * math.Ceil(size[2]/cellSize)
	}
	for count() > maxGridCells {
		cellSize *= 2
	}
	nx := int(math.Ceil(size[0] / cellSize))
	ny := int(math.Ceil(size[1] / cellSize))
	nz := int(math.Ceil(size[2] / cellSize))
	return &grid3{
		origin:   bounds.Min,
		cellSize: cellSize,
		nx:       nx,
		ny:       ny,
		nz:       nz,
		cells:    make([][]mgl64.Vec3, nx*ny*nz),
	}
}

func (g *grid3) cellOf(p mgl64.Vec3) (int, int, int) {
	cx := int(math.Floor((p[0] - g.origin[0]) / g.cellSize))
	cy := int(math.Floor((p[1] - g.origin[1]) / g.cellSize))
	cz := int(math.Floor((p[2] - g.origin[2]) / g.cellSize))
	return clampIndex(cx, g.nx), clampIndex(cy, g.ny), clampIndex(cz, g.nz)
}

func (g *grid3) idx(x, y, z int) int {
	return x + g.nx*(y+g.ny*z)
}

func (g *grid3) add(p mgl64.Vec3) {
	x, y, z := g.cellOf(p)
	g.cells[g.idx(x, y, z)] = append(g.cells[g.idx(x, y, z)], p)
}

func (g *grid3) hasNeighbors(p mgl64.Vec3, radius float64) bool {
	sq := radius * radius
	r := mgl64.Vec3{radius, radius, radius}
	x0, y0, z0 := g.cellOf(p.Sub(r))
	x1, y1, z1 := g.cellOf(p.Add(r))
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				for _, q := range g.cells[g.idx(x, y, z)] {
					if p.Sub(q).LenSqr() < sq {
						return true
					}
				}
			}
		}
	}
	return false
}
