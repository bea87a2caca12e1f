// Package prefab строит процедурные префабы деревьев и облаков.
// Префаб задаётся парой (архетип, вариант) и строится один раз при первом запросе.
package prefab

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
)

// DefaultVariants - количество вариантов каждого архетипа по умолчанию
const DefaultVariants = 4

// builder строит дерево с параметрами, выбранными генератором rnd
type builder func(p painter, rnd *rand.Rand, selector uint32)

var builders = map[string]builder{
	"ellipsis": buildEllipsisTree,
	"cone":     buildConeTree,
	"pine":     buildPineTree,
	"dome":     buildDomeTree,
	"cube":     buildCubeTree,
	"cactus":   buildCactus,
}

// Archetypes возвращает отсортированный список известных архетипов
func Archetypes() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type key struct {
	archetype string
	variant   int
}

// Library - потокобезопасная библиотека префабов
type Library struct {
	variants int

	mu     sync.RWMutex
	trees  map[key]*voxel.RawVolume
	clouds map[int]*voxel.RawVolume
}

// NewLibrary создаёт библиотеку с заданным числом вариантов на архетип
func NewLibrary(variants int) *Library {
	if variants <= 0 {
		variants = DefaultVariants
	}
	return &Library{
		variants: variants,
		trees:    make(map[key]*voxel.RawVolume),
		clouds:   make(map[int]*voxel.RawVolume),
	}
}

// Variants возвращает число вариантов на архетип
func (l *Library) Variants() int {
	return l.variants
}

// Tree возвращает префаб дерева. Вариант берётся по модулю числа вариантов.
// Для неизвестного архетипа возвращает false.
func (l *Library) Tree(archetype string, variant int) (voxel.VolumeReader, bool) {
	build, ok := builders[archetype]
	if !ok {
		return nil, false
	}
	k := key{archetype: archetype, variant: l.normalize(variant)}

	l.mu.RLock()
	vol, ok := l.trees[k]
	l.mu.RUnlock()
	if ok {
		return vol, true
	}

	vol = newTreeVolume()
	build(painter{vol: vol}, seededRand(k.archetype, k.variant), uint32(k.variant))

	l.mu.Lock()
	defer l.mu.Unlock()
	// Префаб детерминирован, поэтому при гонке достаточно оставить первый
	if existing, ok := l.trees[k]; ok {
		return existing, true
	}
	l.trees[k] = vol
	return vol, true
}

// Cloud возвращает префаб облака
func (l *Library) Cloud(variant int) (voxel.VolumeReader, bool) {
	variant = l.normalize(variant)

	l.mu.RLock()
	vol, ok := l.clouds[variant]
	l.mu.RUnlock()
	if ok {
		return vol, true
	}

	vol = buildCloud(seededRand("cloud", variant), uint32(variant))

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.clouds[variant]; ok {
		return existing, true
	}
	l.clouds[variant] = vol
	return vol, true
}

func (l *Library) normalize(variant int) int {
	variant %= l.variants
	if variant < 0 {
		variant += l.variants
	}
	return variant
}

func seededRand(name string, variant int) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(int64(h.Sum64()) + int64(variant)*7919))
}

// Размеры объёма дерева; основание ствола находится в (0, 0, 0)
const (
	treeHalfWidth = 9
	treeHeight    = 40
)

func newTreeVolume() *voxel.RawVolume {
	return voxel.NewRawVolume(voxel.RegionFromBounds(-treeHalfWidth, 0, -treeHalfWidth, treeHalfWidth, treeHeight-1, treeHalfWidth))
}

type treeParams struct {
	trunkHeight int
	height      int
	size        int
}

func randomTreeParams(rnd *rand.Rand) treeParams {
	return treeParams{
		trunkHeight: 4 + rnd.Intn(4), // 4..7
		height:      6 + rnd.Intn(5), // 6..10
		size:        6 + rnd.Intn(5), // 6..10
	}
}

// trunk рисует ствол высотой до top (не включая); у основания ствол шире
func trunk(p painter, top int, selector uint32) {
	wood := voxel.CreateVoxel(voxel.Wood, selector)
	for y := 0; y < top; y++ {
		p.set(vec.Vec3{Y: y}, wood)
	}
	if top > 1 {
		for _, d := range []vec.Vec3{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}} {
			p.set(d, wood)
		}
	}
}

func buildEllipsisTree(p painter, rnd *rand.Rand, selector uint32) {
	tp := randomTreeParams(rnd)
	trunk(p, tp.trunkHeight, selector)
	leaves := voxel.CreateVoxel(voxel.Leaf, selector)
	p.ellipse(vec.Vec3{Y: tp.trunkHeight + tp.height/2}, tp.size, tp.height, tp.size, leaves)
}

func buildConeTree(p painter, rnd *rand.Rand, selector uint32) {
	tp := randomTreeParams(rnd)
	trunk(p, tp.trunkHeight, selector)
	leaves := voxel.CreateVoxel(voxel.LeafFir, selector)
	p.cone(vec.Vec3{Y: tp.trunkHeight + tp.height/2}, tp.size, tp.height, tp.size, leaves)
}

func buildDomeTree(p painter, rnd *rand.Rand, selector uint32) {
	tp := randomTreeParams(rnd)
	trunk(p, tp.trunkHeight, selector)
	leaves := voxel.CreateVoxel(voxel.Leaf, selector)
	p.dome(vec.Vec3{Y: tp.trunkHeight + tp.height/2}, tp.size, tp.height, tp.size, leaves)
}

func buildCubeTree(p painter, rnd *rand.Rand, selector uint32) {
	tp := randomTreeParams(rnd)
	trunk(p, tp.trunkHeight, selector)
	leaves := voxel.CreateVoxel(voxel.Leaf, selector)
	center := vec.Vec3{Y: tp.trunkHeight + tp.height/2}
	p.cube(center, tp.size, tp.height, tp.size, leaves)
	p.cube(center, tp.size+2, tp.height-2, tp.size-2, leaves)
	p.cube(center, tp.size-2, tp.height+2, tp.size-2, leaves)
	p.cube(center, tp.size-2, tp.height-2, tp.size+2, leaves)
}

// buildPineTree: несколько ярусов куполов, расширяющихся книзу
func buildPineTree(p painter, rnd *rand.Rand, selector uint32) {
	tp := randomTreeParams(rnd)
	top := tp.trunkHeight + tp.height
	trunk(p, top, selector)
	leaves := voxel.CreateVoxel(voxel.LeafPine, selector)

	steps := max(1, tp.height/4)
	stepWidth := tp.size / steps
	width := stepWidth
	for i := 0; i < steps; i++ {
		pos := vec.Vec3{Y: top - i*steps}
		p.dome(pos, width, steps, width, leaves)
		pos.Y--
		p.dome(pos, width+1, steps, width+1, leaves)
		width += stepWidth
	}
}

func buildCactus(p painter, rnd *rand.Rand, selector uint32) {
	cactus := voxel.CreateVoxel(voxel.Cactus, selector)
	height := 3 + rnd.Intn(4)
	for y := 0; y < height; y++ {
		p.set(vec.Vec3{Y: y}, cactus)
	}
	if height < 5 {
		return
	}
	// боковая ветка
	armY := 1 + rnd.Intn(height-3)
	dir := 1
	if rnd.Intn(2) == 0 {
		dir = -1
	}
	p.set(vec.Vec3{X: dir, Y: armY}, cactus)
	p.set(vec.Vec3{X: dir, Y: armY + 1}, cactus)
}

// buildCloud повторяет форму облака из двух сплюснутых эллипсоидов
func buildCloud(rnd *rand.Rand, selector uint32) *voxel.RawVolume {
	vol := voxel.NewRawVolume(voxel.RegionFromBounds(-14, -8, -14, 14, 8, 14))
	p := painter{vol: vol}
	cloud := voxel.CreateVoxel(voxel.Cloud, selector)
	p.ellipse(vec.Vec3{}, 10, 6, 10, cloud)
	shift := 2 + rnd.Intn(4)
	p.ellipse(vec.Vec3{X: -shift, Y: -2, Z: rnd.Intn(5) - 2}, 16, 4, 16, cloud)
	return vol
}
