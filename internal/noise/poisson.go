package noise

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCandidates - число кандидатов, порождаемых вокруг каждой принятой точки
const DefaultCandidates = 30

// DefaultCellSize - размер ячейки сетки, когда расстояние задано функцией (1 << 3)
const DefaultCellSize = 8.0

// maxGridCells ограничивает память сетки на очень больших областях
const maxGridCells = 1 << 22

// Rect - прямоугольная область [Min, Max)
type Rect struct {
	Min, Max mgl64.Vec2
}

// NewRect создаёт прямоугольник по координатам углов
func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: mgl64.Vec2{minX, minY}, Max: mgl64.Vec2{maxX, maxY}}
}

// Contains проверяет, лежит ли точка внутри прямоугольника
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.Min[0] && p[0] < r.Max[0] && p[1] >= r.Min[1] && p[1] < r.Max[1]
}

// Center возвращает центр прямоугольника
func (r Rect) Center() mgl64.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Size возвращает размеры прямоугольника
func (r Rect) Size() mgl64.Vec2 {
	return r.Max.Sub(r.Min)
}

// PoissonOptions - дополнительные параметры распределения
type PoissonOptions struct {
	// Candidates - число кандидатов на каждую активную точку (0 - DefaultCandidates)
	Candidates int
	// InitialSet - стартовые точки; пустой набор заменяется центром области
	InitialSet []mgl64.Vec2
	// CellSize - размер ячейки сетки; 0 - выбрать по расстоянию
	CellSize float64
	// Accept - дополнительное условие принятия точки (например, непрямоугольная игровая зона)
	Accept func(mgl64.Vec2) bool
}

// PoissonDiskDistribution распределяет точки в bounds так, чтобы любые две точки
// были не ближе separation друг к другу (алгоритм Бридсона).
// Порядок результата - порядок принятия точек.
func PoissonDiskDistribution(rnd *rand.Rand, separation float64, bounds Rect, opts PoissonOptions) []mgl64.Vec2 {
	if opts.CellSize <= 0 && separation > 0 {
		opts.CellSize = separation / math.Sqrt2
	}
	return poissonDisk2D(rnd, func(mgl64.Vec2) float64 { return separation }, bounds, opts)
}

// PoissonDiskDistributionFunc - вариант с расстоянием, зависящим от точки.
// Кандидаты вокруг точки p проверяются с расстоянием distFunc(p).
func PoissonDiskDistributionFunc(rnd *rand.Rand, distFunc func(mgl64.Vec2) float64, bounds Rect, opts PoissonOptions) []mgl64.Vec2 {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	return poissonDisk2D(rnd, distFunc, bounds, opts)
}

func poissonDisk2D(rnd *rand.Rand, distFunc func(mgl64.Vec2) float64, bounds Rect, opts PoissonOptions) []mgl64.Vec2 {
	size := bounds.Size()
	if size[0] <= 0 || size[1] <= 0 {
		return nil
	}
	k := opts.Candidates
	if k <= 0 {
		k = DefaultCandidates
	}
	grid := newGrid2(bounds, opts.CellSize)

	processing := make([]mgl64.Vec2, 0, len(opts.InitialSet)+1)
	output := make([]mgl64.Vec2, 0, len(opts.InitialSet)+1)
	for _, p := range opts.InitialSet {
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

		dist := distFunc(center)
		if dist <= 0 {
			continue
		}
		// k кандидатов в кольце [dist, 2*dist) вокруг точки
		for j := 0; j < k; j++ {
			radius := dist * (1.0 + rnd.Float64())
			angle := rnd.Float64() * 2.0 * math.Pi
			candidate := center.Add(mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(radius))

			if !bounds.Contains(candidate) {
				continue
			}
			if opts.Accept != nil && !opts.Accept(candidate) {
				continue
			}
			if grid.hasNeighbors(candidate, dist) {
				continue
			}
			processing = append(processing, candidate)
			output = append(output, candidate)
			grid.add(candidate)
		}
	}
	return output
}

// grid2 - равномерная сетка для поиска соседей за O(1)
type grid2 struct {
	origin   mgl64.Vec2
	cellSize float64
	nx, ny   int
	cells    [][]mgl64.Vec2
}

func newGrid2(bounds Rect, cellSize float64) *grid2 {
	size := bounds.Size()
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	for math.Ceil(size[0]/cellSize)*math.Ceil(size[1]/cellSize) > maxGridCells {
		cellSize *= 2
	}
	nx := int(math.Ceil(size[0] / cellSize))
	ny := int(math.Ceil(size[1] / cellSize))
	return &grid2{
		origin:   bounds.Min,
		cellSize: cellSize,
		nx:       nx,
		ny:       ny,
		cells:    make([][]mgl64.Vec2, nx*ny),
	}
}

func (g *grid2) cellOf(x, y float64) (int, int) {
	cx := int(math.Floor((x - g.origin[0]) / g.cellSize))
	cy := int(math.Floor((y - g.origin[1]) / g.cellSize))
	return clampIndex(cx, g.nx), clampIndex(cy, g.ny)
}

func (g *grid2) add(p mgl64.Vec2) {
	cx, cy := g.cellOf(p[0], p[1])
	g.cells[cx+g.nx*cy] = append(g.cells[cx+g.nx*cy], p)
}

// hasNeighbors проверяет только ячейки, пересекающие круг радиуса radius вокруг p
func (g *grid2) hasNeighbors(p mgl64.Vec2, radius float64) bool {
	sq := radius * radius
	minX, minY := g.cellOf(p[0]-radius, p[1]-radius)
	maxX, maxY := g.cellOf(p[0]+radius, p[1]+radius)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for _, q := range g.cells[x+g.nx*y] {
				if p.Sub(q).LenSqr() < sq {
					return true
				}
			}
		}
	}
	return false
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
